package client

import (
	"context"
	"fmt"
	"net/http"
)

// BookReviews lists a book's reviews. An unknown book has no reviews.
func (c *Client) BookReviews(ctx context.Context, bookID int64) ([]Review, error) {
	var reviews []Review
	err := c.call(ctx, "fetch reviews", "reviews", http.MethodGet, fmt.Sprintf("/reviews/book/%d", bookID), nil, nil, &reviews)
	if IsNotFound(err) {
		return []Review{}, nil
	}
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, nil
}

// MyReviewForBook returns the current user's review of a book, or nil if
// they haven't written one.
func (c *Client) MyReviewForBook(ctx context.Context, bookID int64) (*Review, error) {
	var review Review
	err := c.call(ctx, "fetch your review", "review", http.MethodGet, fmt.Sprintf("/reviews/book/%d/my", bookID), nil, nil, &review)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// SaveReview creates the user's review of a book or replaces the existing one
func (c *Client) SaveReview(ctx context.Context, bookID int64, input ReviewInput) (*Review, error) {
	if err := c.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid review: %w", err)
	}

	var review Review
	if err := c.call(ctx, "save review", "book", http.MethodPost, fmt.Sprintf("/reviews/book/%d", bookID), nil, input, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview deletes a review by ID
func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.call(ctx, "delete review", "review", http.MethodDelete, fmt.Sprintf("/reviews/%d", reviewID), nil, nil, nil)
}

// MyReviews lists every review the current user has written
func (c *Client) MyReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	if err := c.call(ctx, "fetch your reviews", "reviews", http.MethodGet, "/reviews/my", nil, nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
