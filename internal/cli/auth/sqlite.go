package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteFileName = "bookreview.sqlite"

// Credential is a single named secret row
type Credential struct {
	Name      string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// SQLiteStore keeps the token in a local SQLite database
type SQLiteStore struct {
	db  *gorm.DB
	key string
}

// NewSQLiteStore opens (or creates) <dir>/bookreview.sqlite and migrates the schema
func NewSQLiteStore(dir, serverURL string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, sqliteFileName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}

	if err := db.AutoMigrate(&Credential{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate token database: %w", err)
	}

	return &SQLiteStore{db: db, key: scopedKey(serverURL)}, nil
}

func (s *SQLiteStore) Get() (string, error) {
	var cred Credential
	if err := s.db.Where("name = ?", s.key).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return cred.Value, nil
}

func (s *SQLiteStore) Set(token string) error {
	cred := Credential{Name: s.key, Value: token}
	if err := s.db.Save(&cred).Error; err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if err := s.db.Where("name = ?", s.key).Delete(&Credential{}).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
