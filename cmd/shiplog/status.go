package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/shiplog/internal/history"
	"github.com/gorewood/shiplog/internal/output"
)

// statusFlags holds flag values for the status command.
type statusFlags struct {
	repo string
}

// statusResult is the JSON shape of the status command output.
type statusResult struct {
	Repo       string `json:"repo"`
	Branch     string `json:"branch"`
	Dirty      bool   `json:"dirty"`
	LatestTag  string `json:"latest_tag,omitempty"`
	Commits    int    `json:"pending_commits"`
	Files      int    `json:"pending_files"`
	Insertions int    `json:"pending_insertions"`
	Deletions  int    `json:"pending_deletions"`
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	var flags statusFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the repository's pending changelog range",
		Long: `Show the current branch, the latest version tag, and the size of the
range a generate run would cover (commits, files, and line counts since
the tag, or the whole history when no version tag exists).

Examples:
  # Status of the current repository
  shiplog status

  # Status of another checkout, as JSON
  shiplog status --repo ../service --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.repo, "repo", ".", "Repository path")

	return cmd
}

// runStatus reports the repository snapshot.
func runStatus(cmd *cobra.Command, flags statusFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())

	repo, err := history.Open(flags.repo)
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}

	result := statusResult{
		Repo:   flags.repo,
		Branch: repo.CurrentBranch(),
		Dirty:  repo.IsDirty(),
	}
	if abs, err := filepath.Abs(flags.repo); err == nil {
		result.Repo = abs
	}

	fromRef := ""
	if tag, ok := repo.LatestVersionTag(); ok {
		result.LatestTag = tag
		fromRef = tag
	}

	cs, err := repo.Extract(cmd.Context(), fromRef, "HEAD")
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}
	for _, warning := range cs.Warnings {
		printer.Warn("%s", warning)
	}

	result.Commits = len(cs.Commits)
	result.Files = len(cs.Files)
	result.Insertions = cs.TotalInsertions
	result.Deletions = cs.TotalDeletions

	if printer.IsJSON() {
		return printer.WriteJSON(result)
	}

	printer.Section("Repository")
	printer.KeyValue("Path", result.Repo)
	printer.KeyValue("Branch", result.Branch)
	worktree := "clean"
	if result.Dirty {
		worktree = "uncommitted changes"
	}
	printer.KeyValue("Worktree", worktree)
	tagDisplay := result.LatestTag
	if tagDisplay == "" {
		tagDisplay = printer.Dim("(none)")
	}
	printer.KeyValue("Latest tag", tagDisplay)

	printer.Section("Pending changes")
	printer.KeyValue("Commits", strconv.Itoa(result.Commits))
	printer.KeyValue("Files", strconv.Itoa(result.Files))
	printer.KeyValue("Lines", fmt.Sprintf("+%d -%d", result.Insertions, result.Deletions))

	return nil
}
