package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "bookreview-cli"
)

// KeyringStore persists the token in the OS keychain/credential manager.
// Tokens are scoped per server so switching servers doesn't leak credentials.
type KeyringStore struct {
	serverURL string
}

// NewKeyringStore returns a keyring-backed store for the given server
func NewKeyringStore(serverURL string) *KeyringStore {
	return &KeyringStore{serverURL: serverURL}
}

// getKeyringKey returns a unique key for storing tokens per server
func (k *KeyringStore) getKeyringKey() string {
	return scopedKey(k.serverURL)
}

// Set persists the token securely in the OS keychain/credential manager
func (k *KeyringStore) Set(token string) error {
	if err := keyring.Set(service, k.getKeyringKey(), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Get retrieves the token from the OS keychain/credential manager
func (k *KeyringStore) Get() (string, error) {
	token, err := keyring.Get(service, k.getKeyringKey())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Clear removes the token from the OS keychain/credential manager
func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(service, k.getKeyringKey()); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
