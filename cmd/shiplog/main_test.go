package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRootCommand_Version(t *testing.T) {
	// Set version for testing
	version = "1.2.3"

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "1.2.3") {
		t.Errorf("--version output should contain version: %q", output)
	}
	if !strings.Contains(output, "shiplog") {
		t.Errorf("--version output should contain 'shiplog': %q", output)
	}
}

func TestRootCommand_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()

	// Check for expected help content
	expectations := []string{
		"shiplog",
		"Usage:",
		"--json",
		"generate",
		"preview",
		"status",
	}

	for _, expected := range expectations {
		if !strings.Contains(output, expected) {
			t.Errorf("--help output should contain %q: %q", expected, output)
		}
	}
}

func TestRootCommand_JSONFlag_NoSubcommand(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--json"})

	err := cmd.Execute()
	// Should error because no subcommand is provided
	if err == nil {
		t.Fatal("Expected error when running with --json but no subcommand")
	}

	output := buf.String()

	// Should output JSON error
	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, output)
	}

	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should contain 'error' field: %s", output)
	}
	if _, ok := result["code"]; !ok {
		t.Errorf("JSON output should contain 'code' field: %s", output)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	// Verify --json and --color are persistent and accessible to subcommands
	cmd := newRootCmd()

	if cmd.PersistentFlags().Lookup("json") == nil {
		t.Error("--json flag should be a persistent flag")
	}
	if cmd.PersistentFlags().Lookup("color") == nil {
		t.Error("--color flag should be a persistent flag")
	}
}

func TestRootCommand_CommandGroups(t *testing.T) {
	cmd := newRootCmd()

	groups := map[string]string{
		"generate": "core",
		"preview":  "query",
		"status":   "query",
	}

	for _, sub := range cmd.Commands() {
		want, ok := groups[sub.Name()]
		if !ok {
			continue
		}
		if sub.GroupID != want {
			t.Errorf("command %s in group %q, want %q", sub.Name(), sub.GroupID, want)
		}
		delete(groups, sub.Name())
	}

	for name := range groups {
		t.Errorf("command %s not registered", name)
	}
}

func TestBuildVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{
			name:    "dev build without metadata",
			version: "dev",
			commit:  "none",
			date:    "unknown",
			want:    "dev",
		},
		{
			name:    "release build shortens commit",
			version: "1.0.0",
			commit:  "abc1234567890",
			date:    "2026-01-02",
			want:    "1.0.0 (abc1234, 2026-01-02)",
		},
		{
			name:    "short commit kept as is",
			version: "1.0.0",
			commit:  "abc12",
			date:    "2026-01-02",
			want:    "1.0.0 (abc12, 2026-01-02)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version = tt.version
			commit = tt.commit
			date = tt.date

			if got := buildVersion(); got != tt.want {
				t.Errorf("buildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
