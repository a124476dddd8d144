package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const credentialsFileName = "credentials.json"

// FileStore keeps tokens in a 0600 JSON file, one entry per server
type FileStore struct {
	path string
	key  string
}

// NewFileStore returns a store backed by <dir>/credentials.json
func NewFileStore(dir, serverURL string) *FileStore {
	return &FileStore{
		path: filepath.Join(dir, credentialsFileName),
		key:  scopedKey(serverURL),
	}
}

func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return entries, nil
}

func (f *FileStore) save(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (f *FileStore) Get() (string, error) {
	entries, err := f.load()
	if err != nil {
		return "", err
	}
	token, ok := entries[f.key]
	if !ok {
		return "", ErrTokenNotFound
	}
	return token, nil
}

func (f *FileStore) Set(token string) error {
	entries, err := f.load()
	if err != nil {
		return err
	}
	entries[f.key] = token
	return f.save(entries)
}

func (f *FileStore) Clear() error {
	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[f.key]; !ok {
		return nil
	}
	delete(entries, f.key)
	return f.save(entries)
}
