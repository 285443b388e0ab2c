// Package config provides layered configuration for the shiplog CLI using
// koanf. Values are loaded with priority: environment variables (SHIPLOG_*)
// > project config (.shiplog.yml) > user config (<configdir>/config.yml)
// > defaults. Command-line flags override after loading, at the cmd layer.
//
// Backend credentials (ANTHROPIC_API_KEY, the AWS credential chain, Google
// application-default credentials) are deliberately not part of this file
// format; they are read from the environment when the backend is built.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings holds the resolved configuration for one invocation.
type Settings struct {
	// Model is the generation model id or alias (sonnet, haiku, opus).
	Model string `koanf:"model"`
	// Format selects the changelog output format: markdown, json, or yaml.
	Format string `koanf:"format"`
	// Output is the changelog destination path, or "stdout" to skip the
	// file write and print instead.
	Output string `koanf:"output"`
	// FromTag is the range start (exclusive). Empty means "latest version
	// tag", resolved against the repository at run time.
	FromTag string `koanf:"from_tag"`
	// ToRef is the range end (inclusive).
	ToRef string `koanf:"to_ref"`
	// Repo is the repository path to read history from.
	Repo string `koanf:"repo"`
	// Timeout bounds the whole generation call, as a Go duration string.
	Timeout string `koanf:"timeout"`

	// Bedrock selects the AWS Bedrock backend.
	Bedrock bool `koanf:"bedrock"`
	// BedrockRegion is the AWS region for Bedrock calls.
	BedrockRegion string `koanf:"bedrock_region"`
	// Vertex selects the Google Vertex backend.
	Vertex bool `koanf:"vertex"`
	// VertexProject is the Google Cloud project id, required with Vertex.
	VertexProject string `koanf:"vertex_project"`
	// VertexRegion is the Vertex location.
	VertexRegion string `koanf:"vertex_region"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"model":          "sonnet",
		"format":         "markdown",
		"output":         "CHANGELOG.md",
		"from_tag":       "",
		"to_ref":         "HEAD",
		"repo":           ".",
		"timeout":        "5m",
		"bedrock":        false,
		"bedrock_region": "us-east-1",
		"vertex":         false,
		"vertex_project": "",
		"vertex_region":  "us-central1",
	}
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yml")
}

// ProjectConfigPath returns the project-level config file path, relative to
// the working directory.
func ProjectConfigPath() string {
	return ".shiplog.yml"
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// UserConfigPath overrides the user config path (for tests).
	UserConfigPath string
	// ProjectConfigPath overrides the project config path (for tests).
	ProjectConfigPath string
}

// Load loads configuration from defaults, user config, project config, and
// environment, in increasing priority.
func Load() (*Settings, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions loads configuration with custom file locations.
func LoadWithOptions(opts LoadOptions) (*Settings, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = UserConfigPath()
	}
	if err := loadFile(k, userPath, "user"); err != nil {
		return nil, err
	}

	projectPath := opts.ProjectConfigPath
	if projectPath == "" {
		projectPath = ProjectConfigPath()
	}
	if err := loadFile(k, projectPath, "project"); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("SHIPLOG_", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// loadFile merges one YAML config file into k. Missing files are skipped.
func loadFile(k *koanf.Koanf, path, kind string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", kind, path, err)
	}
	return nil
}

// envTransform converts environment variable names to config keys.
// Example: SHIPLOG_VERTEX_PROJECT -> vertex_project.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "SHIPLOG_"))
}

// Validate checks cross-field constraints that koanf cannot express.
func (s *Settings) Validate() error {
	switch s.Format {
	case "markdown", "json", "yaml":
	default:
		return fmt.Errorf("invalid format %q: must be markdown, json, or yaml", s.Format)
	}

	if s.Bedrock && s.Vertex {
		return fmt.Errorf("bedrock and vertex are mutually exclusive")
	}

	if s.Timeout != "" {
		if _, err := time.ParseDuration(s.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
		}
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, or the 5 minute default when
// unset or unparseable. Validate catches bad values first on the load path.
func (s *Settings) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
