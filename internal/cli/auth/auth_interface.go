package auth

import (
	"errors"
	"fmt"
)

// TokenKey is the fixed name the bearer token is stored under
const TokenKey = "jwt-token"

// ErrTokenNotFound is returned by TokenStore.Get when no token is persisted
var ErrTokenNotFound = errors.New("no token stored")

// TokenStore defines the interface for token storage operations
// This allows us to swap the keyring for a file or a fake in tests
type TokenStore interface {
	Get() (string, error)
	Set(token string) error
	Clear() error
}

// scopedKey returns the storage key for a server's token
func scopedKey(serverURL string) string {
	if serverURL == "" {
		return TokenKey
	}
	return fmt.Sprintf("%s@%s", TokenKey, serverURL)
}
