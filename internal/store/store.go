// Package store is the SQLite-backed persistence layer: boosts, sent
// boosts, settings, triggers, numerology, webhooks, node info and the JWT
// signing secret all live in one file, opened once per process.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// Config is the store's connection configuration, populated from
// HelipadConfig.Store by copier at startup.
type Config struct {
	Path string
}

// Store wraps the single *sql.DB handle used by every repository method in
// this package. SQLite only tolerates one writer at a time; callers rely
// on database/sql's connection pool plus SQLite's own locking rather than
// an application-level mutex.
type Store struct {
	db   *sql.DB
	path string
}

var (
	ErrNotFound = errors.New("store: not found")
)

// Open opens (creating if necessary) the SQLite database file at cfg.Path,
// runs the additive schema migrations, and returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store: empty database path")
	}

	_, existed := os.Stat(cfg.Path)
	firstOpen := errors.Is(existed, os.ErrNotExist)

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	// SQLite allows exactly one writer; a single connection avoids
	// "database is locked" errors under database/sql's pool.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("store: ping %s: %w", cfg.Path, err)
	}

	if firstOpen {
		if err := os.Chmod(cfg.Path, 0o666); err != nil {
			logger.Warn("could not relax database file permissions", zap.Error(err))
		}
	}
	logger.Info("using database file", zap.String("path", cfg.Path))

	s := &Store{db: db, path: cfg.Path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
