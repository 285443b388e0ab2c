// Package output provides structured output handling for the shiplog CLI.
//
// This package handles both human-readable and JSON output formats, so every
// command works equally well for a developer at a terminal and for CI steps
// that parse the output.
//
// # Printer
//
// The Printer is the primary interface for command output. It automatically
// handles format switching based on the --json flag and TTY detection:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, output.IsTTY(cmd.OutOrStdout()))
//
//	// For success output
//	printer.Success(map[string]any{"changelog_file": path, "changes_count": "12"})
//
//	// For error output
//	printer.Error(err)
//
//	// For raw output
//	printer.Println("Some text")
//	printer.Print("Formatted: %s\n", value)
//
// # JSON Mode
//
// When JSON mode is enabled (via --json flag), all output is structured:
//
//	// Success: {"changelog": "...", "changes_count": "...", ...}
//	// Error: {"error": "message", "code": N}
//
// # Styling
//
// For human-readable output, the package provides lipgloss-based styling
// that automatically disables when output is piped.
//
// # Exit Codes
//
// The package defines standard exit codes and error types:
//
//	output.ExitSuccess     // 0: Success
//	output.ExitUserError   // 1: User error (bad flags, unknown refs)
//	output.ExitSystemError // 2: System error (repository, backend, I/O)
//
// Use the error constructors to create properly-coded errors:
//
//	output.NewUserError("unknown revision: v9.9.9")
//	output.NewSystemErrorWithCause("changelog generation failed", err)
//
// These errors carry exit codes that are used for both JSON error output
// and process exit codes.
package output
