// Package sqlite is the SQLite-backed implementation of the storage
// contracts. One database per deployment holds stories, nodes, choices,
// player progress, missions, and characters.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/oleandergames/tradecraft/internal/platform/storage/sqlitemigrate"
	"github.com/oleandergames/tradecraft/internal/story/storage/sqlite/migrations"
)

// Store is a SQLite-backed store implementing storage.Store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the database at path, applying embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database. Nil-safe so callers can defer
// it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// encodeJSON marshals a value for a TEXT column, never returning an
// error to the caller. The domain types involved cannot fail to
// marshal; a fallback keeps the column valid JSON regardless.
func encodeJSON(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("encode json column: %v", err)
		return "{}"
	}
	return string(raw)
}

// decodeJSON unmarshals a TEXT column into target. Malformed rows are
// logged and left at the zero value so reads degrade instead of fail.
func decodeJSON(raw string, target any) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		log.Printf("decode json column: %v", err)
	}
}
