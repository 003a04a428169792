package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"
)

const jwtSecretLength = 40

const jwtSecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GetOrCreateJWTSecret returns the persisted JWT signing secret, generating
// and persisting a new random one on first use.
func (s *Store) GetOrCreateJWTSecret(ctx context.Context) (string, error) {
	var secret string
	err := s.db.QueryRowContext(ctx, `SELECT secret FROM jwt_secret WHERE idx = 1`).Scan(&secret)
	if err == nil {
		return secret, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("store: load jwt secret: %w", err)
	}

	secret, err = randomAlphanumeric(jwtSecretLength)
	if err != nil {
		return "", fmt.Errorf("store: generate jwt secret: %w", err)
	}

	if err := s.SetJWTSecret(ctx, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// SetJWTSecret overwrites the persisted JWT signing secret.
func (s *Store) SetJWTSecret(ctx context.Context, secret string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jwt_secret (idx, secret, created_at) VALUES (1, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET secret = excluded.secret, created_at = excluded.created_at`,
		secret, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store: set jwt secret: %w", err)
	}
	return nil
}

func randomAlphanumeric(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = jwtSecretAlphabet[int(b)%len(jwtSecretAlphabet)]
	}
	return string(out), nil
}
