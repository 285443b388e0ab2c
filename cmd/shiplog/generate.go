package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/shiplog/internal/backend"
	"github.com/gorewood/shiplog/internal/changelog"
	"github.com/gorewood/shiplog/internal/config"
	"github.com/gorewood/shiplog/internal/history"
	"github.com/gorewood/shiplog/internal/output"
	"github.com/gorewood/shiplog/internal/prompt"
)

// generateFlags holds all flag values for the generate command.
type generateFlags struct {
	from          string
	to            string
	outputPath    string
	format        string
	model         string
	repo          string
	timeout       string
	bedrock       bool
	bedrockRegion string
	vertex        bool
	vertexProject string
	vertexRegion  string
}

// generateResults are the three values every invocation reports.
type generateResults struct {
	Changelog     string
	ChangelogFile string
	ChangesCount  string
}

// newGenerateCmd creates the generate command.
func newGenerateCmd() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a changelog for a revision range",
		Long: `Generate a changelog for the commits between two refs.

The range defaults to "latest version tag -> HEAD". The result is written
to CHANGELOG.md unless --output points elsewhere; pass --output stdout to
print instead of writing a file.

When GITHUB_OUTPUT is set (GitHub Actions), the changelog, changelog_file
and changes_count outputs are appended for later workflow steps.

Examples:
  # Changes since the latest version tag, written to CHANGELOG.md
  shiplog generate

  # Explicit range, printed to stdout
  shiplog generate --from v1.2.0 --to HEAD --output stdout

  # Structured output for scripting
  shiplog generate --format json --output stdout

  # Anthropic on AWS Bedrock
  shiplog generate --bedrock --bedrock-region us-west-2

  # Anthropic on Google Vertex AI
  shiplog generate --vertex --vertex-project my-project

Environment variables:
  ANTHROPIC_API_KEY  Required for the default Anthropic backend
  SHIPLOG_*          Any config key, e.g. SHIPLOG_MODEL, SHIPLOG_VERTEX_PROJECT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Range start ref, exclusive (default: latest version tag)")
	cmd.Flags().StringVar(&flags.to, "to", "HEAD", "Range end ref, inclusive")
	cmd.Flags().StringVarP(&flags.outputPath, "output", "o", "CHANGELOG.md", "Output file path, or 'stdout'")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "markdown", "Output format: markdown, json, yaml")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "sonnet", "Model id or alias (sonnet, haiku, opus)")
	cmd.Flags().StringVar(&flags.repo, "repo", ".", "Repository path")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "5m", "Generation timeout (Go duration)")
	cmd.Flags().BoolVar(&flags.bedrock, "bedrock", false, "Use AWS Bedrock")
	cmd.Flags().StringVar(&flags.bedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	cmd.Flags().BoolVar(&flags.vertex, "vertex", false, "Use Google Vertex AI")
	cmd.Flags().StringVar(&flags.vertexProject, "vertex-project", "", "Google Cloud project id (required with --vertex)")
	cmd.Flags().StringVar(&flags.vertexRegion, "vertex-region", "us-central1", "Vertex AI region")

	return cmd
}

// runGenerate executes the full pipeline: extract, compile, generate,
// synthesize, write.
func runGenerate(cmd *cobra.Command, flags generateFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())

	settings, err := loadSettings(cmd, flags)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	repo, err := history.Open(settings.Repo)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	fromRef, err := resolveFromRef(repo, settings.FromTag)
	if err != nil {
		printer.Error(err)
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.TimeoutDuration())
	defer cancel()

	cs, err := repo.Extract(ctx, fromRef, settings.ToRef)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	for _, warning := range cs.Warnings {
		printer.Warn("%s", warning)
	}

	// Nothing to summarize is a success, not a failure: report it and
	// skip the backend call and the file write entirely.
	if cs.IsEmpty() {
		return emitResults(printer, generateResults{
			Changelog:    "No changes found",
			ChangesCount: "0",
		})
	}

	gen, err := newBackend(ctx, settings)
	if err != nil {
		printer.Error(err)
		return err
	}

	resp, err := gen.Generate(ctx, backend.Request{Prompt: prompt.Compile(cs)})
	if err != nil {
		sysErr := output.NewSystemErrorWithCause("changelog generation failed", err)
		printer.Error(sysErr)
		return sysErr
	}

	text := changelog.Synthesize(resp.Content, cs, settings.Format)

	results := generateResults{
		Changelog:    text,
		ChangesCount: strconv.Itoa(len(cs.Commits)),
	}
	if settings.Output != "stdout" {
		if err := os.WriteFile(settings.Output, []byte(text), 0o644); err != nil {
			sysErr := output.NewSystemErrorWithCause("writing changelog file", err)
			printer.Error(sysErr)
			return sysErr
		}
		results.ChangelogFile = settings.Output
	}

	return emitResults(printer, results)
}

// loadSettings resolves configuration for this invocation: files and
// environment first, then explicit flags on top.
func loadSettings(cmd *cobra.Command, flags generateFlags) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("from") {
		settings.FromTag = flags.from
	}
	if changed("to") {
		settings.ToRef = flags.to
	}
	if changed("output") {
		settings.Output = flags.outputPath
	}
	if changed("format") {
		settings.Format = flags.format
	}
	if changed("model") {
		settings.Model = flags.model
	}
	if changed("repo") {
		settings.Repo = flags.repo
	}
	if changed("timeout") {
		settings.Timeout = flags.timeout
	}
	if changed("bedrock") {
		settings.Bedrock = flags.bedrock
	}
	if changed("bedrock-region") {
		settings.BedrockRegion = flags.bedrockRegion
	}
	if changed("vertex") {
		settings.Vertex = flags.vertex
	}
	if changed("vertex-project") {
		settings.VertexProject = flags.vertexProject
	}
	if changed("vertex-region") {
		settings.VertexRegion = flags.vertexRegion
	}

	// Flags may introduce violations the file/env load already passed.
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// resolveFromRef defaults the range start to the latest version tag.
func resolveFromRef(repo *history.Repo, fromTag string) (string, error) {
	if fromTag != "" {
		return fromTag, nil
	}
	tag, ok := repo.LatestVersionTag()
	if !ok {
		return "", output.NewUserError("no version tags found; pass --from to set the range start")
	}
	return tag, nil
}

// newBackend builds the generation backend from settings. The API key is
// read here, at the edge, so backend implementations stay free of
// environment access.
func newBackend(ctx context.Context, settings *config.Settings) (backend.Generator, error) {
	return backend.New(ctx, backend.Config{
		Model:         settings.Model,
		APIKey:        os.Getenv("ANTHROPIC_API_KEY"),
		UseBedrock:    settings.Bedrock,
		BedrockRegion: settings.BedrockRegion,
		UseVertex:     settings.Vertex,
		VertexProject: settings.VertexProject,
		VertexRegion:  settings.VertexRegion,
	})
}

// emitResults reports the invocation's outputs on the console and, when
// running inside GitHub Actions, in GITHUB_OUTPUT.
func emitResults(printer *output.Printer, results generateResults) error {
	if err := appendGitHubOutput(results); err != nil {
		// CI metadata only; the changelog itself already succeeded.
		printer.Warn("%s", err)
	}

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"changelog":      results.Changelog,
			"changelog_file": results.ChangelogFile,
			"changes_count":  results.ChangesCount,
		})
	}

	if results.ChangelogFile == "" {
		printer.Print("%s\n", results.Changelog)
		return nil
	}

	printer.Print("Wrote %s (%s changes)\n", printer.Accent(results.ChangelogFile), results.ChangesCount)
	return nil
}

// appendGitHubOutput appends the results to the file named by
// GITHUB_OUTPUT. Multi-line values use the heredoc syntax GitHub Actions
// requires for them.
func appendGitHubOutput(results generateResults) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_OUTPUT: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	writeGitHubValue(&b, "changelog", results.Changelog)
	writeGitHubValue(&b, "changelog_file", results.ChangelogFile)
	writeGitHubValue(&b, "changes_count", results.ChangesCount)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("writing GITHUB_OUTPUT: %w", err)
	}
	return nil
}

// writeGitHubValue emits one workflow output line, switching to a
// heredoc with a collision-free delimiter for multi-line values.
func writeGitHubValue(b *strings.Builder, name, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(b, "%s=%s\n", name, value)
		return
	}

	delimiter := "SHIPLOG_EOF"
	for strings.Contains(value, delimiter) {
		delimiter += "_"
	}
	fmt.Fprintf(b, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
}
