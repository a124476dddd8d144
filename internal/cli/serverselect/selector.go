package serverselect

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/bookreview-dev/bookreview/internal/cli/userconfig"
)

// ResolveServer determines which backend URL to use based on the following priority:
// 1. If serverFlag is provided (URL or known alias), use that server
// 2. If user has a selected server in their local config, use that
// 3. Otherwise use fallback (the environment default)
func ResolveServer(serverFlag, fallback string) (string, error) {
	cfg, err := userconfig.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load user config: %w", err)
	}

	// Priority 1: explicit flag
	if serverFlag != "" {
		if server, ok := cfg.FindServer(serverFlag); ok {
			return server.URL, nil
		}
		return NormalizeURL(serverFlag)
	}

	// Priority 2: selected server from user config
	if cfg.SelectedServerURL != "" {
		return cfg.SelectedServerURL, nil
	}

	// Priority 3: environment default
	return NormalizeURL(fallback)
}

// NormalizeURL adds a scheme to bare hosts and drops trailing slashes
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("server URL is empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		// Assume HTTPS by default
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/"), nil
}

// PromptServerSelection shows an interactive prompt for the user to select a known server
func PromptServerSelection(cfg *userconfig.UserConfig) (*userconfig.Server, error) {
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no servers known yet. Use 'bookreview server <url>' first")
	}

	// Create display labels for each server
	type serverOption struct {
		Label  string
		Server *userconfig.Server
	}

	options := make([]serverOption, len(cfg.Servers))
	for i := range cfg.Servers {
		server := &cfg.Servers[i]
		label := server.URL
		if server.Alias != "" {
			label = fmt.Sprintf("%s (%s)", server.Alias, server.URL)
		}
		if server.URL == cfg.SelectedServerURL {
			label += " *"
		}
		options[i] = serverOption{
			Label:  label,
			Server: server,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a server",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}

	return options[index].Server, nil
}
