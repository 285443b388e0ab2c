package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gorewood/shiplog/internal/config"
	"github.com/gorewood/shiplog/internal/history"
	"github.com/gorewood/shiplog/internal/output"
	"github.com/gorewood/shiplog/internal/prompt"
)

// previewFlags holds flag values for the preview command.
type previewFlags struct {
	from string
	to   string
	repo string
}

// newPreviewCmd creates the preview command.
func newPreviewCmd() *cobra.Command {
	var flags previewFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the compiled prompt without calling a backend",
		Long: `Compile the generation prompt for a revision range and print it.

No backend is contacted and no credentials are needed. Use this to inspect
exactly what the model would be asked before spending tokens on it.

Examples:
  # Prompt for everything since the latest version tag
  shiplog preview

  # Prompt for an explicit range
  shiplog preview --from v1.2.0 --to HEAD`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.from, "from", "", "Range start ref, exclusive (default: latest version tag)")
	cmd.Flags().StringVar(&flags.to, "to", "HEAD", "Range end ref, inclusive")
	cmd.Flags().StringVar(&flags.repo, "repo", ".", "Repository path")

	return cmd
}

// runPreview runs the extract and compile stages and prints the result.
func runPreview(cmd *cobra.Command, flags previewFlags) error {
	printer := output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), useColor(cmd)).WithStderr(cmd.ErrOrStderr())

	settings, err := config.Load()
	if err != nil {
		userErr := output.NewUserError(err.Error())
		printer.Error(userErr)
		return userErr
	}
	changed := cmd.Flags().Changed
	if changed("from") {
		settings.FromTag = flags.from
	}
	if changed("to") {
		settings.ToRef = flags.to
	}
	if changed("repo") {
		settings.Repo = flags.repo
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

	if cs.IsEmpty() {
		if printer.IsJSON() {
			return printer.Success(map[string]any{
				"prompt":        "",
				"changes_count": "0",
			})
		}
		printer.Println("No changes found")
		return nil
	}

	text := prompt.Compile(cs)

	if printer.IsJSON() {
		return printer.Success(map[string]any{
			"prompt":        text,
			"changes_count": strconv.Itoa(len(cs.Commits)),
		})
	}

	printer.Print("%s", text)
	return nil
}
