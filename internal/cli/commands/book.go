package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/client"
	"github.com/bookreview-dev/bookreview/internal/cli/session"
)

// bookView adds the per-user favourite flag to the loaded details
type bookView struct {
	Book      *client.Book    `json:"book" yaml:"book"`
	Reviews   []client.Review `json:"reviews" yaml:"reviews"`
	MyReview  *client.Review  `json:"myReview,omitempty" yaml:"myReview,omitempty"`
	Favourite *bool           `json:"favourite,omitempty" yaml:"favourite,omitempty"`
}

// NewBookCmd creates the book command
func NewBookCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>",
		Short: "Show a book with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			return runBook(cmd.Context(), deps, id)
		},
	}
}

func runBook(ctx context.Context, deps *Deps, id int64) error {
	details, err := deps.Client.LoadBookDetails(ctx, id)
	if err != nil {
		if client.IsNotFound(err) {
			fmt.Fprintln(deps.Out, "Book not found")
			return nil
		}
		return explain(err)
	}

	view := bookView{Book: details.Book, Reviews: details.Reviews, MyReview: details.MyReview}
	if deps.Session.IsAuthenticated() {
		fav, err := deps.Client.IsFavourite(ctx, id)
		switch {
		case errors.Is(err, session.ErrAuthentication):
			return explain(err)
		case err != nil:
			deps.Logger.Warn().Err(err).Int64("book_id", id).Msg("Failed to load favourite state")
		default:
			view.Favourite = &fav
		}
	}

	return render(deps, view, func(w io.Writer) {
		printBook(w, view)
	})
}

func printBook(w io.Writer, view bookView) {
	book := view.Book
	fmt.Fprintf(w, "%s\n", book.Title)
	fmt.Fprintf(w, "by %s\n\n", book.Author)
	if book.Year > 0 {
		fmt.Fprintf(w, "Year:\t%d\n", book.Year)
	}
	if book.Genres != "" {
		fmt.Fprintf(w, "Genres:\t%s\n", book.Genres)
	}
	fmt.Fprintf(w, "Rating:\t%s (%.1f, %d reviews)\n", stars(book.AvgRating), book.AvgRating, book.ReviewCount)
	if view.Favourite != nil {
		fav := "no"
		if *view.Favourite {
			fav = "yes"
		}
		fmt.Fprintf(w, "Favourite:\t%s\n", fav)
	}
	if book.Description != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(book.Description))
	}

	if view.MyReview != nil {
		fmt.Fprintf(w, "\nYour review:\t%s %s\n", stars(view.MyReview.Rating), view.MyReview.Text)
	}

	fmt.Fprintf(w, "\nReviews (%d):\n", len(view.Reviews))
	if len(view.Reviews) == 0 {
		fmt.Fprintln(w, "  No reviews yet.")
		return
	}
	for _, review := range view.Reviews {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			stars(review.Rating),
			review.UserName,
			review.CreatedAt,
			truncate(review.Text, 60),
		)
	}
}
