package userconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &UserConfig{}, cfg)
}

func TestSetSelectedServer(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SetSelectedServer(Server{URL: "https://a.example.com", Alias: "prod"}))
	require.NoError(t, SetSelectedServer(Server{URL: "http://localhost:8080"}))
	// reselecting a known server keeps its alias
	require.NoError(t, SetSelectedServer(Server{URL: "https://a.example.com"}))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://a.example.com", cfg.SelectedServerURL)
	assert.Len(t, cfg.Servers, 2)

	server, ok := cfg.FindServer("prod")
	require.True(t, ok)
	assert.Equal(t, "https://a.example.com", server.URL)

	selected, err := GetSelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://a.example.com", selected)
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := GetConfigPath()
	require.NoError(t, err)
	require.NoError(t, Save(&UserConfig{PageSize: 24}))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err = Load()
	assert.Error(t, err)
}
