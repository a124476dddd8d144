package auth

import (
	"fmt"
	"io"
)

// Open returns the token store of the given kind for a server
func Open(kind, dataDir, serverURL string) (TokenStore, error) {
	switch kind {
	case "", "keyring":
		return NewKeyringStore(serverURL), nil
	case "file":
		return NewFileStore(dataDir, serverURL), nil
	case "bolt":
		return NewBoltStore(dataDir, serverURL)
	case "sqlite":
		return NewSQLiteStore(dataDir, serverURL)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store %q (want keyring, file, bolt, sqlite or memory)", kind)
	}
}

// Close closes the store if it holds resources
func Close(store TokenStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
