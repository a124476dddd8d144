package client

import (
	"context"
	"fmt"
	"net/http"
)

func favouritePath(bookID int64) string {
	return fmt.Sprintf("/favourites/book/%d", bookID)
}

// IsFavourite reports whether the current user has favourited a book
func (c *Client) IsFavourite(ctx context.Context, bookID int64) (bool, error) {
	var fav bool
	if err := c.call(ctx, "check favourite", "book", http.MethodGet, favouritePath(bookID)+"/check", nil, nil, &fav); err != nil {
		return false, err
	}
	return fav, nil
}

// ToggleFavourite flips the favourite flag of a book
func (c *Client) ToggleFavourite(ctx context.Context, bookID int64) error {
	return c.call(ctx, "toggle favourite", "book", http.MethodPut, favouritePath(bookID)+"/toggle", nil, nil, nil)
}

// AddFavourite favourites a book
func (c *Client) AddFavourite(ctx context.Context, bookID int64) (*Favourite, error) {
	var fav Favourite
	if err := c.call(ctx, "add favourite", "book", http.MethodPost, favouritePath(bookID), nil, nil, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

// RemoveFavourite removes a book from the user's favourites
func (c *Client) RemoveFavourite(ctx context.Context, bookID int64) error {
	return c.call(ctx, "remove favourite", "favourite", http.MethodDelete, favouritePath(bookID), nil, nil, nil)
}

// MyFavourites lists the current user's favourites
func (c *Client) MyFavourites(ctx context.Context) ([]Favourite, error) {
	var favs []Favourite
	if err := c.call(ctx, "fetch favourites", "favourites", http.MethodGet, "/favourites/my", nil, nil, &favs); err != nil {
		return nil, err
	}
	return favs, nil
}
