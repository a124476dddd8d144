package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Fixed user-facing messages. Server text is never shown for a 401 so error
// strings can't be used to probe which accounts exist.
const (
	msgAuthFailed   = "Authentication failed"
	msgLoginFailed  = "Login failed"
	msgSignupFailed = "Signup failed"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string `json:"token"`
}

// SignupRequest represents the registration request body
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorBody struct {
	Error string `json:"error"`
}

// serverMessage returns the "error" field of a JSON error body, or fallback
func serverMessage(body []byte, fallback string) string {
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return fallback
	}
	return e.Error
}

// postJSON sends an unauthenticated JSON POST and returns status and body
func (m *Manager) postJSON(ctx context.Context, path string, payload any) (int, []byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := m.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(jsonData))
	if err != nil {
		return 0, nil, err
	}

	resp, err := m.do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Login exchanges credentials for a token. On success the token is persisted
// and the session becomes authenticated with email. Failures never touch the
// current session.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	status, body, err := m.postJSON(ctx, "/auth/login", LoginRequest{Email: email, Password: password})
	if err != nil {
		m.logger.Warn().Err(err).Msg("Login request failed")
		return networkFailure(msgLoginFailed, err)
	}

	if status == http.StatusUnauthorized {
		return failure(CodeAuthFailed, msgAuthFailed)
	}
	if status < 200 || status > 299 {
		return failure("", serverMessage(body, msgLoginFailed))
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to decode login response")
		return failure("", msgLoginFailed)
	}
	if loginResp.Token == "" {
		// A 2xx without a token is not a login.
		m.logger.Warn().Int("status", status).Msg("Login response carried no token")
		return failure("", msgLoginFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(loginResp.Token); err != nil {
		m.logger.Error().Err(err).Msg("Failed to persist token")
		return failure("", fmt.Sprintf("%s: could not save credentials", msgLoginFailed))
	}
	m.session = Session{Token: loginResp.Token, Authenticated: true, Email: email}
	m.logger.Info().Str("email", email).Msg("Logged in")

	return Result{Success: true}
}

// Signup registers an account. It never logs the user in; callers send the
// user to login afterwards.
func (m *Manager) Signup(ctx context.Context, name, email, password string) Result {
	status, body, err := m.postJSON(ctx, "/auth/signup", SignupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		m.logger.Warn().Err(err).Msg("Signup request failed")
		return networkFailure(msgSignupFailed, err)
	}

	if status < 200 || status > 299 {
		return failure("", serverMessage(body, msgSignupFailed))
	}

	return Result{Success: true}
}

// Logout is best-effort towards the server: transport errors and non-2xx
// answers are logged and ignored. The local token and session are always
// cleared; only a failure to clear the store is returned.
func (m *Manager) Logout(ctx context.Context) error {
	token, err := m.currentToken()
	if err != nil {
		m.logger.Warn().Err(err).Msg("Failed to read token before logout")
	}

	req, err := m.newRequest(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err == nil {
		if token != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		}
		resp, err := m.do(req)
		if err != nil {
			m.logger.Warn().Err(err).Msg("Logout request failed")
		} else {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				m.logger.Warn().Int("status", resp.StatusCode).Msg("Logout request rejected")
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = Session{}
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	m.logger.Info().Msg("Logged out")
	return nil
}
