package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oklog/ulid/v2"
)

// RequestOptions describes an outbound API call
type RequestOptions struct {
	Method string      // defaults to GET
	Header http.Header // merged over the default Content-Type
	Query  url.Values
	Body   io.Reader
}

// Request performs an API call carrying the current bearer token.
//
// The token is read from the store on every call. A 401 invalidates the
// session and returns ErrAuthentication; every other response, including
// 4xx and 5xx, is returned untouched and the caller must close its body.
// Transport failures come back as *NetworkError and are not retried.
func (m *Manager) Request(ctx context.Context, path string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	token, err := m.currentToken()
	if err != nil {
		return nil, err
	}

	req, err := m.newRequest(ctx, method, path, opts.Query, opts.Body)
	if err != nil {
		return nil, err
	}
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := m.do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		m.invalidate(token)
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrAuthentication)
	}

	return resp, nil
}

// newRequest builds a request with the default JSON content type and a
// request ID. It does not attach credentials.
func (m *Manager) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := m.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	return req, nil
}

func (m *Manager) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := m.httpClient.Do(req)
	event := m.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("API request failed")
		return nil, &NetworkError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	event.Int("status", resp.StatusCode).Msg("API request")
	return resp, nil
}
