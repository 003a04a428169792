package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Numerology mirrors one row of the numerology table: an amount predicate
// paired with a display emoji/description shown alongside matching boosts.
type Numerology struct {
	Index       uint64
	Position    uint64
	Amount      uint64
	Equality    string
	Emoji       *string
	Description *string
}

const numerologyColumns = `idx, position, amount, equality, emoji, description`

func scanNumerologyRow(row interface{ Scan(...any) error }) (*Numerology, error) {
	var n Numerology
	if err := row.Scan(&n.Index, &n.Position, &n.Amount, &n.Equality, &n.Emoji, &n.Description); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNumerology returns every row ordered by position.
func (s *Store) ListNumerology(ctx context.Context) ([]*Numerology, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM numerology ORDER BY position`, numerologyColumns))
	if err != nil {
		return nil, fmt.Errorf("store: list numerology: %w", err)
	}
	defer rows.Close()

	var out []*Numerology
	for rows.Next() {
		n, err := scanNumerologyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNumerology loads a single row by index.
func (s *Store) GetNumerology(ctx context.Context, index uint64) (*Numerology, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM numerology WHERE idx = ?`, numerologyColumns), index)
	n, err := scanNumerologyRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get numerology %d: %w", index, err)
	}
	return n, nil
}

// SaveNumerology inserts (Index == 0) or replaces a row, renumbering
// positions the same way SaveTrigger does.
func (s *Store) SaveNumerology(ctx context.Context, n *Numerology) (uint64, error) {
	if err := s.setNumerologyPosition(ctx, n.Index, n.Position); err != nil {
		return 0, err
	}

	var index any
	if n.Index > 0 {
		index = n.Index
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO numerology (idx, position, amount, equality, emoji, description)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			position = excluded.position, amount = excluded.amount, equality = excluded.equality,
			emoji = excluded.emoji, description = excluded.description
		RETURNING idx`,
		index, n.Position, n.Amount, n.Equality, n.Emoji, n.Description,
	)

	var idx uint64
	if err := row.Scan(&idx); err != nil {
		return 0, fmt.Errorf("store: save numerology: %w", err)
	}

	if err := s.renumberNumerologyPositions(ctx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (s *Store) setNumerologyPosition(ctx context.Context, index, position uint64) error {
	if index > 0 {
		current, err := s.GetNumerology(ctx, index)
		if err != nil {
			return err
		}
		switch {
		case position < current.Position:
			_, err = s.db.ExecContext(ctx,
				`UPDATE numerology SET position = position + 1 WHERE position >= ? AND position <= ? AND idx <> ?`,
				position, current.Position, index)
		case position > current.Position:
			_, err = s.db.ExecContext(ctx,
				`UPDATE numerology SET position = position - 1 WHERE position <= ? AND position >= ? AND idx <> ?`,
				position, current.Position, index)
		}
		return err
	}

	_, err := s.db.ExecContext(ctx, `UPDATE numerology SET position = position + 1 WHERE position >= ?`, position)
	return err
}

func (s *Store) renumberNumerologyPositions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE numerology SET position = (SELECT COUNT(*) FROM numerology b WHERE b.position < numerology.position) + 1`)
	return err
}

// DeleteNumerology removes a row and renumbers the remaining positions.
func (s *Store) DeleteNumerology(ctx context.Context, index uint64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM numerology WHERE idx = ?`, index); err != nil {
		return fmt.Errorf("store: delete numerology %d: %w", index, err)
	}
	return s.renumberNumerologyPositions(ctx)
}

// ResetNumerology replaces every row with the built-in default list.
func (s *Store) ResetNumerology(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM numerology`); err != nil {
		return fmt.Errorf("store: reset numerology: %w", err)
	}
	return s.insertDefaultNumerology(ctx)
}
