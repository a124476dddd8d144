package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// failingStore is a TokenStore whose every operation fails
type failingStore struct{}

func (failingStore) Get() (string, error) { return "", errors.New("keychain locked") }
func (failingStore) Set(string) error     { return errors.New("keychain locked") }
func (failingStore) Clear() error         { return errors.New("keychain locked") }

func newTestManager(t *testing.T, handler http.HandlerFunc, store auth.TokenStore, opts ...Option) (*Manager, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL), WithHTTPClient(server.Client())}, opts...)
	return New(store, opts...), server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestInitialize_RestoresPersistedToken(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("persisted-token"))

	var calls atomic.Int32
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}, store)

	assert.True(t, m.LoadingInitial())
	require.NoError(t, m.Initialize())

	assert.False(t, m.LoadingInitial())
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "", m.User().Email, "email is unknown until the next login")
	assert.Equal(t, int32(0), calls.Load(), "initialize must not contact the server")
}

func TestInitialize_NoToken(t *testing.T) {
	m := New(auth.NewMemoryStore())

	require.NoError(t, m.Initialize())
	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.LoadingInitial())
}

func TestInitialize_RunsOnce(t *testing.T) {
	store := auth.NewMemoryStore()
	m := New(store)
	require.NoError(t, m.Initialize())

	require.NoError(t, store.Set("late-token"))
	require.NoError(t, m.Initialize())

	assert.False(t, m.IsAuthenticated())
}

func TestInitialize_StoreError(t *testing.T) {
	m := New(failingStore{})

	err := m.Initialize()
	assert.Error(t, err)
	assert.False(t, m.IsAuthenticated())
	assert.False(t, m.LoadingInitial())
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("abc123"))

	var gotAuth, gotContentType, gotCustom, gotRequestID string
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Custom")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}, store)
	require.NoError(t, m.Initialize())

	resp, err := m.Request(context.Background(), "/books", RequestOptions{
		Header: http.Header{"X-Custom": []string{"yes"}},
	})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "yes", gotCustom)
	assert.Len(t, gotRequestID, 26)
}

func TestRequest_NoTokenNoAuthorizationHeader(t *testing.T) {
	var hadAuth bool
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}, auth.NewMemoryStore())

	resp, err := m.Request(context.Background(), "/books", RequestOptions{})
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, hadAuth)
}

func TestRequest_HeaderCannotOverrideAuthorization(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("real"))

	var gotAuth, gotContentType string
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
	}, store)

	resp, err := m.Request(context.Background(), "/admin/books/import", RequestOptions{
		Method: http.MethodPost,
		Header: http.Header{
			"Authorization": []string{"Bearer forged"},
			"Content-Type":  []string{"multipart/form-data; boundary=x"},
		},
	})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer real", gotAuth)
	assert.Equal(t, "multipart/form-data; boundary=x", gotContentType)
}

func TestRequest_ReadsTokenOnEveryCall(t *testing.T) {
	store := auth.NewMemoryStore()

	var seen []string
	var mu sync.Mutex
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
	}, store)

	for _, token := range []string{"first", "second"} {
		require.NoError(t, store.Set(token))
		resp, err := m.Request(context.Background(), "/reviews/my", RequestOptions{})
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestRequest_ReturnsNonAuthErrorsUntouched(t *testing.T) {
	statuses := []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			store := auth.NewMemoryStore()
			require.NoError(t, store.Set("tok"))

			m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, map[string]string{"error": "nope"})
			}, store)
			require.NoError(t, m.Initialize())

			resp, err := m.Request(context.Background(), "/books/999", RequestOptions{})
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, status, resp.StatusCode)
			assert.True(t, m.IsAuthenticated())
		})
	}
}

func TestRequest_401InvalidatesSession(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("expired"))

	var hookCalls atomic.Int32
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, store, WithInvalidationHook(func() { hookCalls.Add(1) }))
	require.NoError(t, m.Initialize())
	require.True(t, m.IsAuthenticated())

	resp, err := m.Request(context.Background(), "/favourites/my", RequestOptions{})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrAuthentication)

	assert.False(t, m.IsAuthenticated())
	_, err = store.Get()
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
	assert.Equal(t, int32(1), hookCalls.Load())

	// A second 401 has nothing left to invalidate
	_, err = m.Request(context.Background(), "/favourites/my", RequestOptions{})
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(1), hookCalls.Load())
}

func TestRequest_Concurrent401InvalidatesOnce(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("expired"))

	release := make(chan struct{})
	var arrived sync.WaitGroup
	const inFlight = 8
	arrived.Add(inFlight)

	var hookCalls atomic.Int32
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		arrived.Done()
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}, store, WithInvalidationHook(func() { hookCalls.Add(1) }))
	require.NoError(t, m.Initialize())

	var wg sync.WaitGroup
	errs := make([]error, inFlight)
	for i := 0; i < inFlight; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Request(context.Background(), "/reviews/my", RequestOptions{})
		}(i)
	}

	arrived.Wait()
	close(release)
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, ErrAuthentication)
	}
	assert.Equal(t, int32(1), hookCalls.Load())
	assert.False(t, m.IsAuthenticated())
}

func TestRequest_Stale401KeepsNewerToken(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("old-token"))

	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "new-token"})
	}, store)
	require.NoError(t, m.Initialize())

	// The user logs in again while a request made with old-token is in
	// flight; that request's 401 then arrives.
	require.True(t, m.Login(context.Background(), "reader@example.com", "pw").Success)
	m.invalidate("old-token")

	assert.True(t, m.IsAuthenticated())
	token, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
}

func TestRequest_401WithReplacedTokenResetsSession(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("first-token"))

	var hookCalls int
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer second-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, store, WithInvalidationHook(func() { hookCalls++ }))
	require.NoError(t, m.Initialize())

	// Another process stores a different token after startup
	require.NoError(t, store.Set("second-token"))

	_, err := m.Request(context.Background(), "/reviews/my", RequestOptions{})
	assert.ErrorIs(t, err, ErrAuthentication)

	_, err = store.Get()
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
	assert.False(t, m.IsAuthenticated())
	assert.Equal(t, 1, hookCalls)
}

func TestRequest_401WithEmptiedStoreResetsSession(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("first-token"))

	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, store)
	require.NoError(t, m.Initialize())

	// Another process removes the token after startup
	require.NoError(t, store.Clear())

	_, err := m.Request(context.Background(), "/reviews/my", RequestOptions{})
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.False(t, m.IsAuthenticated())
}

func TestRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("tok"))
	m := New(store, WithBaseURL(url))
	require.NoError(t, m.Initialize())

	_, err := m.Request(context.Background(), "/books", RequestOptions{})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "GET /books", netErr.Op)
	assert.True(t, m.IsAuthenticated(), "network failures don't touch the session")
}

func TestRequest_StoreReadError(t *testing.T) {
	m := New(failingStore{})

	_, err := m.Request(context.Background(), "/books", RequestOptions{})
	assert.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	store := auth.NewMemoryStore()

	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user@example.com", req.Email)
		assert.Equal(t, "secret", req.Password)

		writeJSON(w, http.StatusOK, map[string]string{"token": "fresh-token"})
	}, store)
	require.NoError(t, m.Initialize())

	result := m.Login(context.Background(), "user@example.com", "secret")

	assert.Equal(t, Result{Success: true}, result)
	assert.NoError(t, result.Err())
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, "user@example.com", m.User().Email)

	token, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestLogin_401UsesFixedMessage(t *testing.T) {
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no account for user@example.com"})
	}, auth.NewMemoryStore())

	result := m.Login(context.Background(), "user@example.com", "wrong")

	assert.Equal(t, Result{Success: false, Code: CodeAuthFailed, Error: "Authentication failed"}, result)
	assert.ErrorIs(t, result.Err(), ErrAuthentication)
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{
			name:    "server message surfaced",
			status:  http.StatusBadRequest,
			body:    `{"error":"Email is required"}`,
			wantErr: "Email is required",
		},
		{
			name:    "unparseable error body",
			status:  http.StatusInternalServerError,
			body:    `<html>oops</html>`,
			wantErr: "Login failed",
		},
		{
			name:    "ok without token",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: "Login failed",
		},
		{
			name:    "ok with garbage body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: "Login failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := auth.NewMemoryStore()
			m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, store)

			result := m.Login(context.Background(), "user@example.com", "pw")

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantErr, result.Error)
			assert.Empty(t, result.Code)
			assert.False(t, m.IsAuthenticated())
			_, err := store.Get()
			assert.ErrorIs(t, err, auth.ErrTokenNotFound)
		})
	}
}

func TestLogin_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m := New(auth.NewMemoryStore(), WithBaseURL(url))
	result := m.Login(context.Background(), "user@example.com", "pw")

	assert.False(t, result.Success)
	assert.Equal(t, CodeNetworkError, result.Code)
	assert.True(t, strings.HasPrefix(result.Error, "Login failed: "), result.Error)
	assert.NotContains(t, result.Error, "network error")
	assert.False(t, m.IsAuthenticated())
}

func TestSignup_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m := New(auth.NewMemoryStore(), WithBaseURL(url))
	result := m.Signup(context.Background(), "Ada", "user@example.com", "pw")

	assert.False(t, result.Success)
	assert.Equal(t, CodeNetworkError, result.Code)
	assert.True(t, strings.HasPrefix(result.Error, "Signup failed: "), result.Error)
}

func TestLogin_PersistFailure(t *testing.T) {
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"token": "t"})
	}, failingStore{})

	result := m.Login(context.Background(), "user@example.com", "pw")

	assert.False(t, result.Success)
	assert.False(t, m.IsAuthenticated())
}

func TestSignup_DoesNotLogIn(t *testing.T) {
	store := auth.NewMemoryStore()

	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/signup", r.URL.Path)

		var req SignupRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ada", req.Name)

		// Even if the server hands back a token, signup must not use it
		writeJSON(w, http.StatusOK, map[string]string{"token": "unexpected"})
	}, store)
	require.NoError(t, m.Initialize())

	result := m.Signup(context.Background(), "Ada", "ada@example.com", "pw")

	assert.True(t, result.Success)
	assert.False(t, m.IsAuthenticated())
	_, err := store.Get()
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestSignup_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"duplicate email", http.StatusConflict, `{"error":"Email already registered"}`, "Email already registered"},
		{"no message", http.StatusBadRequest, ``, "Signup failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, auth.NewMemoryStore())

			result := m.Signup(context.Background(), "Ada", "ada@example.com", "pw")
			assert.Equal(t, Result{Success: false, Error: tt.wantErr}, result)
		})
	}
}

func TestLogout_ClearsEvenWhenServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("tok"))
	m := New(store, WithBaseURL(url))
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Logout(context.Background()))

	assert.False(t, m.IsAuthenticated())
	_, err := store.Get()
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestLogout_ClearsWhenServerTimesOut(t *testing.T) {
	done := make(chan struct{})
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("tok"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(done)

	client := server.Client()
	client.Timeout = 50 * time.Millisecond
	m := New(store, WithBaseURL(server.URL), WithHTTPClient(client))
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Logout(context.Background()))

	assert.False(t, m.IsAuthenticated())
	_, err := store.Get()
	assert.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestLogout_SendsTokenAndIgnoresRejection(t *testing.T) {
	store := auth.NewMemoryStore()
	require.NoError(t, store.Set("tok"))

	var gotAuth string
	m, _ := newTestManager(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusInternalServerError)
	}, store)
	require.NoError(t, m.Initialize())

	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.False(t, m.IsAuthenticated())
}

func TestLoginThenReload_RestoresSession(t *testing.T) {
	store := auth.NewMemoryStore()

	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"token": "persisted"})
	}
	m, server := newTestManager(t, handler, store)
	require.NoError(t, m.Initialize())
	require.True(t, m.Login(context.Background(), "user@example.com", "pw").Success)
	require.Equal(t, int32(1), calls.Load())

	// A fresh manager over the same store stands in for a process restart
	reloaded := New(store, WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, reloaded.Initialize())

	assert.True(t, reloaded.IsAuthenticated())
	assert.Equal(t, "persisted", reloaded.User().Token)
	assert.Equal(t, int32(1), calls.Load())
}
