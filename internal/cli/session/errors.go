package session

import (
	"errors"
	"fmt"
)

// ErrAuthentication is returned by Request when the server answers 401.
// By the time the caller sees it the session has already been invalidated.
var ErrAuthentication = errors.New("authentication failed")

// NetworkError is a transport-level failure (DNS, refused connection, timeout).
// Nothing in this package retries; that is the caller's call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Result codes
const (
	CodeAuthFailed   = "AUTH_FAILED"
	CodeNetworkError = "NETWORK_ERROR"
)

// Result is the outcome of Login and Signup. Error is safe to show to users.
type Result struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Err converts a failed result into an error, nil on success
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	if r.Code == CodeAuthFailed {
		return ErrAuthentication
	}
	return errors.New(r.Error)
}

func failure(code, msg string) Result {
	return Result{Success: false, Code: code, Error: msg}
}

// networkFailure reports a transport failure as "<msg>: <cause>"
func networkFailure(msg string, err error) Result {
	cause := err
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		cause = netErr.Err
	}
	return failure(CodeNetworkError, fmt.Sprintf("%s: %v", msg, cause))
}
