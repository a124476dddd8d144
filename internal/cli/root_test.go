package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bookreview-dev/bookreview/internal/cli/auth"
)

func TestVersionCommand_SkipsSession(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOOKREVIEW_TOKEN_STORE", "bogus")

	var out bytes.Buffer
	deps.Out = &out
	t.Cleanup(func() { deps.Session = nil })

	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !strings.Contains(out.String(), "bookreview version dev") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if deps.Session != nil {
		t.Error("version must not build a session")
	}
}

func TestStatusCommand_UnknownTokenStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOOKREVIEW_TOKEN_STORE", "bogus")

	rootCmd.SetArgs([]string{"status"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to open token store") {
		t.Fatalf("expected token store error, got: %v", err)
	}
}

func TestStatusCommand_MemoryStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BOOKREVIEW_TOKEN_STORE", "memory")
	t.Setenv("BOOKREVIEW_API_URL", "http://127.0.0.1:1")

	var out bytes.Buffer
	deps.Out = &out

	rootCmd.SetArgs([]string{"status", "--output", "json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if !strings.Contains(out.String(), `"server": "http://127.0.0.1:1"`) {
		t.Errorf("unexpected output: %s", out.String())
	}
	if !strings.Contains(out.String(), `"authenticated": false`) {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestExecute_ClosesStoreWhenCommandFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	t.Setenv("BOOKREVIEW_TOKEN_STORE", "bolt")
	t.Setenv("BOOKREVIEW_DATA_DIR", dataDir)
	t.Setenv("BOOKREVIEW_API_URL", "http://127.0.0.1:1")

	rootCmd.SetArgs([]string{"book", "not-a-number"})
	if err := Execute(); err == nil {
		t.Fatal("expected error for invalid book id, got nil")
	}

	if tokenStore != nil {
		t.Error("expected token store to be released")
	}

	// bolt holds an exclusive file lock while open
	store, err := auth.NewBoltStore(dataDir, "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("bolt file still locked after failed command: %v", err)
	}
	store.Close()
}
