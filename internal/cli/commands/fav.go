package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewFavCmd creates the fav command group
func NewFavCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favourites"},
		Short:   "Manage your favourite books",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return requireLogin(deps)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List your favourites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavList(cmd.Context(), deps)
		},
	})
	cmd.AddCommand(newFavBookCmd(deps, "add", "Add a book to your favourites", runFavAdd))
	cmd.AddCommand(newFavBookCmd(deps, "rm", "Remove a book from your favourites", runFavRemove))
	cmd.AddCommand(newFavBookCmd(deps, "toggle", "Flip the favourite state of a book", runFavToggle))
	cmd.AddCommand(newFavBookCmd(deps, "check", "Tell whether a book is a favourite", runFavCheck))

	return cmd
}

func newFavBookCmd(deps *Deps, name, short string, run func(context.Context, *Deps, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <book-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			return run(cmd.Context(), deps, id)
		},
	}
}

func runFavList(ctx context.Context, deps *Deps) error {
	favourites, err := deps.Client.MyFavourites(ctx)
	if err != nil {
		return explain(err)
	}

	if len(favourites) == 0 && isTable(deps) {
		fmt.Fprintln(deps.Out, "No favourites yet.")
		fmt.Fprintln(deps.Out, "\nAdd one with: bookreview fav add <book-id>")
		return nil
	}

	return render(deps, favourites, func(w io.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tADDED")
		fmt.Fprintln(w, "──\t─────\t──────\t─────")
		for _, fav := range favourites {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", fav.Book.ID, truncate(fav.Book.Title, 40), truncate(fav.Book.Author, 24), fav.CreatedAt)
		}
	})
}

func runFavAdd(ctx context.Context, deps *Deps, bookID int64) error {
	if _, err := deps.Client.AddFavourite(ctx, bookID); err != nil {
		return explain(err)
	}
	fmt.Fprintf(deps.Out, "✓ Book %d added to favourites\n", bookID)
	return nil
}

func runFavRemove(ctx context.Context, deps *Deps, bookID int64) error {
	if err := deps.Client.RemoveFavourite(ctx, bookID); err != nil {
		return explain(err)
	}
	fmt.Fprintf(deps.Out, "✓ Book %d removed from favourites\n", bookID)
	return nil
}

func runFavToggle(ctx context.Context, deps *Deps, bookID int64) error {
	if err := deps.Client.ToggleFavourite(ctx, bookID); err != nil {
		return explain(err)
	}
	return runFavCheck(ctx, deps, bookID)
}

func runFavCheck(ctx context.Context, deps *Deps, bookID int64) error {
	fav, err := deps.Client.IsFavourite(ctx, bookID)
	if err != nil {
		return explain(err)
	}

	view := struct {
		BookID    int64 `json:"bookId" yaml:"bookId"`
		Favourite bool  `json:"favourite" yaml:"favourite"`
	}{bookID, fav}

	return render(deps, view, func(w io.Writer) {
		if fav {
			fmt.Fprintf(w, "Book %d is a favourite\n", bookID)
		} else {
			fmt.Fprintf(w, "Book %d is not a favourite\n", bookID)
		}
	})
}
