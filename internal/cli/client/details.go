package client

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/bookreview-dev/bookreview/internal/cli/session"
)

// BookDetails is everything the book page shows
type BookDetails struct {
	Book     *Book    `json:"book" yaml:"book"`
	Reviews  []Review `json:"reviews" yaml:"reviews"`
	MyReview *Review  `json:"myReview,omitempty" yaml:"myReview,omitempty"`
}

// LoadBookDetails fetches a book and its reviews in parallel; either may
// finish first. The user's own review is fetched only with a session.
//
// Only the book itself is required: a missing book returns *NotFoundError,
// while review failures are logged and leave the lists empty. A 401 from any
// of the calls is returned.
func (c *Client) LoadBookDetails(ctx context.Context, id int64) (*BookDetails, error) {
	var details BookDetails
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		book, err := c.GetBook(gctx, id)
		if err != nil {
			return err
		}
		details.Book = book
		return nil
	})

	g.Go(func() error {
		reviews, err := c.BookReviews(gctx, id)
		if err != nil {
			if errors.Is(err, session.ErrAuthentication) {
				return err
			}
			if gctx.Err() != nil {
				// the book fetch failed and already decided the outcome
				return nil
			}
			c.logger.Warn().Err(err).Int64("book_id", id).Msg("Failed to load reviews")
			reviews = []Review{}
		}
		details.Reviews = reviews

		if !c.requester.IsAuthenticated() {
			return nil
		}

		mine, err := c.MyReviewForBook(gctx, id)
		if err != nil {
			if errors.Is(err, session.ErrAuthentication) {
				return err
			}
			if gctx.Err() != nil {
				return nil
			}
			c.logger.Warn().Err(err).Int64("book_id", id).Msg("Failed to load your review")
			mine = nil
		}
		details.MyReview = mine
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &details, nil
}
