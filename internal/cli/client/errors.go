package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned, without contacting the server, by calls
// that only make sense for a logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'bookreview login' first")

// NotFoundError means the resource doesn't exist. Callers usually render it
// as an empty state rather than a failure.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError is a 4xx answer carrying a message meant for the user
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusError is any other unexpected status
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to %s (status %d): %s", e.Op, e.Status, e.Body)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// checkResponse turns a non-2xx response into a typed error.
// It reads the body on failure but never closes it.
func checkResponse(resp *http.Response, op, resource string) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode == http.StatusNotFound {
		return &NotFoundError{Resource: resource}
	}

	if resp.StatusCode >= 400 && resp.StatusCode <= 499 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
			return &ValidationError{Status: resp.StatusCode, Message: e.Error}
		}
	}

	return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
