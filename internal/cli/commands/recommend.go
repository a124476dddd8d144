package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewRecommendCmd creates the recommend command group
func NewRecommendCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Book recommendations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "top",
		Short: "Top rated books",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommendTop(cmd.Context(), deps)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ai",
		Short: "Personal suggestions based on your favourites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommendAI(cmd.Context(), deps)
		},
	})

	return cmd
}

func runRecommendTop(ctx context.Context, deps *Deps) error {
	books, err := deps.Client.TopRated(ctx)
	if err != nil {
		return explain(err)
	}

	if len(books) == 0 && isTable(deps) {
		fmt.Fprintln(deps.Out, "No rated books yet.")
		return nil
	}

	return render(deps, books, func(w io.Writer) {
		fmt.Fprintln(w, "#\tID\tTITLE\tAUTHOR\tRATING")
		fmt.Fprintln(w, "─\t──\t─────\t──────\t──────")
		for i, book := range books {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s %.1f\n", i+1, book.ID, truncate(book.Title, 40), truncate(book.Author, 24), stars(book.AvgRating), book.AvgRating)
		}
	})
}

func runRecommendAI(ctx context.Context, deps *Deps) error {
	recs, err := deps.Client.AIRecommendations(ctx)
	if err != nil {
		return explain(err)
	}

	if len(recs) == 0 && isTable(deps) {
		fmt.Fprintln(deps.Out, "No suggestions yet. Add some favourites first.")
		return nil
	}

	return render(deps, recs, func(w io.Writer) {
		fmt.Fprintln(w, "TITLE\tAUTHOR")
		fmt.Fprintln(w, "─────\t──────")
		for _, rec := range recs {
			fmt.Fprintf(w, "%s\t%s\n", rec.Title, rec.Author)
		}
	})
}
