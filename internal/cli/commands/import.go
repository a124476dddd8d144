package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command
func NewImportCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import books from a CSV file (admin only)",
		Long: `Import books from a CSV file (admin only).

The file needs a header row with at least title and author columns.
Optional columns: year, genres, description, coverUrl.`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireLogin(deps)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), deps, args[0])
		},
	}
}

func runImport(ctx context.Context, deps *Deps, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	result, err := deps.Client.ImportBooks(ctx, filepath.Base(path), file)
	if err != nil {
		return explain(err)
	}

	if !isTable(deps) {
		return render(deps, result, nil)
	}
	fmt.Fprintf(deps.Out, "✓ Imported %d books\n", result.Imported)
	return nil
}
