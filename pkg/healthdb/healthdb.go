package healthdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidUser  = errors.New("user id must be positive")
)

type Config struct {
	Path    string        `envconfig:"PATH" split_words:"true" default:"health_assistant.db"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"5s"`
}

// DB wraps a bun handle over the SQLite file backing all tool side effects.
type DB struct {
	bun *bun.DB
}

func Open(cfg Config) (*DB, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("database path is required")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?cache=shared", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time; the session is single-threaded
	// anyway, so a single connection avoids lock contention entirely.
	sqldb.SetMaxOpenConns(1)

	return &DB{bun: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

// OpenInMemory returns a throwaway database, used by tests and dry runs.
func OpenInMemory() (*DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	sqldb.SetMaxOpenConns(1)

	return &DB{bun: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func (db *DB) Close() error {
	return db.bun.Close()
}

// CreateSchema creates the four collections if they do not exist yet.
func (db *DB) CreateSchema(ctx context.Context) error {
	models := []any{
		(*User)(nil),
		(*GlucoseReading)(nil),
		(*WellbeingLog)(nil),
		(*ConversationLog)(nil),
	}
	for _, model := range models {
		if _, err := db.bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}
