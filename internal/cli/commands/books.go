package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/client"
	"github.com/bookreview-dev/bookreview/internal/cli/userconfig"
)

// NewBooksCmd creates the books command
func NewBooksCmd(deps *Deps) *cobra.Command {
	var filter client.BookFilter

	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"ls", "search"},
		Short:   "Browse and search the catalog",
		Example: `  $ bookreview books
  $ bookreview books --genre fantasy --page 1
  $ bookreview books --author herbert --year 1965`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("size") {
				if cfg, err := userconfig.Load(); err == nil && cfg.PageSize > 0 {
					filter.Size = cfg.PageSize
				}
			}
			return runBooks(cmd.Context(), deps, filter)
		},
	}

	cmd.Flags().StringVar(&filter.Title, "title", "", "Filter by title")
	cmd.Flags().StringVar(&filter.Author, "author", "", "Filter by author")
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "Filter by genre")
	cmd.Flags().IntVar(&filter.Year, "year", 0, "Filter by publication year")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number (zero-based)")
	cmd.Flags().IntVar(&filter.Size, "size", client.DefaultPageSize, "Page size (1-100, default from user config page_size)")

	return cmd
}

func runBooks(ctx context.Context, deps *Deps, filter client.BookFilter) error {
	page, err := deps.Client.SearchBooks(ctx, filter)
	if err != nil {
		return explain(err)
	}

	if len(page.Content) == 0 && isTable(deps) {
		fmt.Fprintln(deps.Out, "No books found.")
		return nil
	}

	err = render(deps, page, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tYEAR\tRATING\tREVIEWS")
		fmt.Fprintln(w, "──\t─────\t──────\t────\t──────\t───────")
		for _, book := range page.Content {
			year := ""
			if book.Year > 0 {
				year = fmt.Sprint(book.Year)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
				book.ID,
				truncate(book.Title, 40),
				truncate(book.Author, 24),
				year,
				stars(book.AvgRating),
				book.ReviewCount,
			)
		}
	})
	if err != nil {
		return err
	}

	if isTable(deps) {
		fmt.Fprintf(deps.Out, "\nPage %d of %d (%d books)\n", page.Number+1, page.TotalPages, page.TotalElements)
		if page.HasNext() {
			fmt.Fprintf(deps.Out, "Next page: bookreview books %s--page %d\n", filterArgs(filter), page.Number+1)
		}
	}
	return nil
}

// filterArgs rebuilds the filter flags for the "next page" hint
func filterArgs(f client.BookFilter) string {
	var b strings.Builder
	if f.Title != "" {
		fmt.Fprintf(&b, "--title %q ", f.Title)
	}
	if f.Author != "" {
		fmt.Fprintf(&b, "--author %q ", f.Author)
	}
	if f.Genre != "" {
		fmt.Fprintf(&b, "--genre %q ", f.Genre)
	}
	if f.Year > 0 {
		fmt.Fprintf(&b, "--year %d ", f.Year)
	}
	if f.Size > 0 && f.Size != client.DefaultPageSize {
		fmt.Fprintf(&b, "--size %d ", f.Size)
	}
	return b.String()
}
