package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Query encodes the filter as /books query parameters
func (f BookFilter) Query() url.Values {
	q := url.Values{}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if f.Author != "" {
		q.Set("author", f.Author)
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Year != 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("size", strconv.Itoa(f.Size))
	return q
}

// SearchBooks returns one page of the catalog matching filter
func (c *Client) SearchBooks(ctx context.Context, filter BookFilter) (*BookPage, error) {
	if filter.Size == 0 {
		filter.Size = DefaultPageSize
	}
	if err := c.validate.Struct(filter); err != nil {
		return nil, fmt.Errorf("invalid search: %w", err)
	}

	var page BookPage
	if err := c.call(ctx, "list books", "books", http.MethodGet, "/books", filter.Query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBook returns a single book; a missing book is a *NotFoundError
func (c *Client) GetBook(ctx context.Context, id int64) (*Book, error) {
	var book Book
	if err := c.call(ctx, "load book", "book", http.MethodGet, fmt.Sprintf("/books/%d", id), nil, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
