package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
	"github.com/bookreview-dev/bookreview/internal/cli/client"
	"github.com/bookreview-dev/bookreview/internal/cli/fakeapi"
	"github.com/bookreview-dev/bookreview/internal/cli/session"
)

const testPassword = "password1"

// testSetup wires the commands to a fake backend and an in-memory token store
type testSetup struct {
	deps   *Deps
	out    *bytes.Buffer
	api    *fakeapi.Server
	store  *auth.MemoryStore
	server *httptest.Server
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	api := fakeapi.New()
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	store := auth.NewMemoryStore()
	manager := session.New(store,
		session.WithBaseURL(server.URL),
		session.WithHTTPClient(server.Client()),
	)
	if err := manager.Initialize(); err != nil {
		t.Fatalf("failed to initialize session: %v", err)
	}

	var out bytes.Buffer
	deps := &Deps{
		Out:     &out,
		Session: manager,
		Client:  client.New(manager),
		Output:  outputTable,
		Logger:  zerolog.Nop(),
	}

	return &testSetup{deps: deps, out: &out, api: api, store: store, server: server}
}

// login registers email on the fake backend and logs in through the session
func (s *testSetup) login(t *testing.T, email string, admin bool) {
	t.Helper()

	s.api.AddUser("Reader", email, testPassword, admin)
	if result := s.deps.Session.Login(context.Background(), email, testPassword); !result.Success {
		t.Fatalf("login failed: %s", result.Error)
	}
}
