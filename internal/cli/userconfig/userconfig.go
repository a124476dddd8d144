package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "bookreview"
	configFileName = "config.json"
)

// Server is a backend the user has talked to
type Server struct {
	URL   string `json:"url"`
	Alias string `json:"alias,omitempty"`
}

// UserConfig represents the user's local configuration stored in ~/.config/bookreview/config.json
type UserConfig struct {
	SelectedServerURL string   `json:"selected_server_url,omitempty"`
	Servers           []Server `json:"servers,omitempty"`
	PageSize          int      `json:"page_size,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// FindServer returns a known server by URL or alias
func (c *UserConfig) FindServer(urlOrAlias string) (*Server, bool) {
	for i := range c.Servers {
		if c.Servers[i].URL == urlOrAlias || (c.Servers[i].Alias != "" && c.Servers[i].Alias == urlOrAlias) {
			return &c.Servers[i], true
		}
	}
	return nil, false
}

// SetSelectedServer records server as known and selected, then saves
func SetSelectedServer(server Server) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if existing, ok := cfg.FindServer(server.URL); ok {
		if server.Alias != "" {
			existing.Alias = server.Alias
		}
	} else {
		cfg.Servers = append(cfg.Servers, server)
	}
	cfg.SelectedServerURL = server.URL
	return Save(cfg)
}

// GetSelectedServer returns the selected server URL, or empty string if not set
func GetSelectedServer() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedServerURL, nil
}
