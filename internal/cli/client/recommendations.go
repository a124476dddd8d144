package client

import (
	"context"
	"net/http"
)

// TopRated returns the best-rated books in the catalog
func (c *Client) TopRated(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.call(ctx, "load top rated", "recommendations", http.MethodGet, "/recommendations/top-rated", nil, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// AIRecommendations returns suggestions based on the user's favourite
// genres. Without a session it fails fast with ErrNotAuthenticated.
func (c *Client) AIRecommendations(ctx context.Context) ([]AIRecommendation, error) {
	if !c.requester.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	var recs []AIRecommendation
	if err := c.call(ctx, "load AI recommendations", "recommendations", http.MethodGet, "/recommendations/ai", nil, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
