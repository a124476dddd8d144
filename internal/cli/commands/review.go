package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/bookreview-dev/bookreview/internal/cli/client"
)

// NewReviewCmd creates the review command group
func NewReviewCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Write, delete and list your reviews",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return requireLogin(deps)
		},
	}

	cmd.AddCommand(newReviewSetCmd(deps))
	cmd.AddCommand(newReviewRmCmd(deps))
	cmd.AddCommand(newReviewMineCmd(deps))

	return cmd
}

func newReviewSetCmd(deps *Deps) *cobra.Command {
	var input client.ReviewInput

	cmd := &cobra.Command{
		Use:     "set <book-id>",
		Short:   "Create or replace your review of a book",
		Example: `  $ bookreview review set 42 --rating 5 --text "Loved it"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			return runReviewSet(cmd.Context(), deps, id, input)
		},
	}

	cmd.Flags().IntVar(&input.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&input.Text, "text", "", "Review text")
	cmd.MarkFlagRequired("rating")

	return cmd
}

func runReviewSet(ctx context.Context, deps *Deps, bookID int64, input client.ReviewInput) error {
	review, err := deps.Client.SaveReview(ctx, bookID, input)
	if err != nil {
		if client.IsNotFound(err) {
			return fmt.Errorf("book %d not found", bookID)
		}
		return explain(err)
	}

	if !isTable(deps) {
		return render(deps, review, nil)
	}
	fmt.Fprintf(deps.Out, "✓ Review saved for book %d: %s\n", bookID, stars(review.Rating))
	return nil
}

func newReviewRmCmd(deps *Deps) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <book-id>",
		Aliases: []string{"delete"},
		Short:   "Delete your review of a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			confirm := confirmPrompt
			if yes {
				confirm = func(string) bool { return true }
			}
			return runReviewRm(cmd.Context(), deps, id, confirm)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func runReviewRm(ctx context.Context, deps *Deps, bookID int64, confirm func(string) bool) error {
	review, err := deps.Client.MyReviewForBook(ctx, bookID)
	if err != nil {
		return explain(err)
	}
	if review == nil {
		fmt.Fprintf(deps.Out, "You have not reviewed book %d.\n", bookID)
		return nil
	}

	if !confirm(fmt.Sprintf("Delete your review of book %d", bookID)) {
		fmt.Fprintln(deps.Out, "Cancelled.")
		return nil
	}

	if err := deps.Client.DeleteReview(ctx, review.ID); err != nil {
		return explain(err)
	}

	fmt.Fprintln(deps.Out, "✓ Review deleted")
	return nil
}

func confirmPrompt(label string) bool {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

func newReviewMineCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewMine(cmd.Context(), deps)
		},
	}
}

func runReviewMine(ctx context.Context, deps *Deps) error {
	reviews, err := deps.Client.MyReviews(ctx)
	if err != nil {
		return explain(err)
	}

	if len(reviews) == 0 && isTable(deps) {
		fmt.Fprintln(deps.Out, "You have not written any reviews yet.")
		fmt.Fprintln(deps.Out, "\nWrite one with: bookreview review set <book-id> --rating 5")
		return nil
	}

	return render(deps, reviews, func(w io.Writer) {
		fmt.Fprintln(w, "BOOK\tTITLE\tRATING\tDATE\tTEXT")
		fmt.Fprintln(w, "────\t─────\t──────\t────\t────")
		for _, review := range reviews {
			var id int64
			title := ""
			if review.Book != nil {
				id = review.Book.ID
				title = truncate(review.Book.Title, 30)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", id, title, stars(review.Rating), review.CreatedAt, truncate(review.Text, 50))
		}
	})
}
