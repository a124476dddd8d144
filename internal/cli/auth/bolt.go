package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

const (
	boltFileName   = "bookreview.db"
	credentialsBkt = "Credentials"
)

// BoltStore keeps the token in a bolt database under the Credentials bucket
type BoltStore struct {
	db  *bolt.DB
	key []byte
}

// NewBoltStore opens (or creates) <dir>/bookreview.db
func NewBoltStore(dir, serverURL string) (*BoltStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dir, boltFileName), 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(credentialsBkt))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create credentials bucket: %w", err)
	}

	return &BoltStore{db: db, key: []byte(scopedKey(serverURL))}, nil
}

func (b *BoltStore) Get() (string, error) {
	var token string
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(credentialsBkt)).Get(b.key)
		if value == nil {
			return ErrTokenNotFound
		}
		// value is only valid for the life of the transaction
		token = string(value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (b *BoltStore) Set(token string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(credentialsBkt)).Put(b.key, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (b *BoltStore) Clear() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(credentialsBkt)).Delete(b.key)
	})
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close releases the database file lock
func (b *BoltStore) Close() error {
	return b.db.Close()
}
