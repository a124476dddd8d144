package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/bookreview-dev/bookreview/internal/cli/session"
)

// Requester is the authenticated request surface of the session manager
type Requester interface {
	Request(ctx context.Context, path string, opts session.RequestOptions) (*http.Response, error)
	IsAuthenticated() bool
}

// Client represents a typed client for the book-review API
type Client struct {
	requester Requester
	validate  *validator.Validate
	logger    zerolog.Logger
}

// New creates a new API client that sends everything through r
func New(r Requester) *Client {
	return &Client{
		requester: r,
		validate:  validator.New(),
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used for degraded (non-fatal) failures
func (c *Client) SetLogger(l zerolog.Logger) {
	c.logger = l
}

// call performs a request and decodes a 2xx JSON body into out (if non-nil)
func (c *Client) call(ctx context.Context, op, resource, method, path string, query url.Values, payload, out any) error {
	opts := session.RequestOptions{Method: method, Query: query}

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		opts.Body = bytes.NewReader(jsonData)
	}

	resp, err := c.requester.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, op, resource); err != nil {
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
