package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Webhook is a legacy single-URL notification rule, superseded by the
// richer Trigger webhook effect but kept for installs that still have rows
// in this table (see DESIGN.md for why both persist).
type Webhook struct {
	Index               uint64
	URL                 string
	Token                string
	OnBoost, OnStream, OnAuto, OnSent, OnInvoice bool
	Equality             string
	Amount               uint64
	Enabled              bool
	RequestSuccessful    *bool
	RequestTimestamp     *int64
}

const webhookColumns = `idx, url, token, on_boost, on_stream, on_auto, on_sent, on_invoice,
	equality, amount, enabled, request_successful, request_timestamp`

func scanWebhookRow(row interface{ Scan(...any) error }) (*Webhook, error) {
	var w Webhook
	if err := row.Scan(
		&w.Index, &w.URL, &w.Token, &w.OnBoost, &w.OnStream, &w.OnAuto, &w.OnSent, &w.OnInvoice,
		&w.Equality, &w.Amount, &w.Enabled, &w.RequestSuccessful, &w.RequestTimestamp,
	); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWebhooks returns webhooks, optionally filtered by enabled state.
// enabled == nil returns every row.
func (s *Store) ListWebhooks(ctx context.Context, enabled *bool) ([]*Webhook, error) {
	query := fmt.Sprintf(`SELECT %s FROM webhooks`, webhookColumns)
	var args []any
	if enabled != nil {
		query += ` WHERE enabled = ?`
		args = append(args, *enabled)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list webhooks: %w", err)
	}
	defer rows.Close()

	var out []*Webhook
	for rows.Next() {
		w, err := scanWebhookRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWebhook loads a single row by index.
func (s *Store) GetWebhook(ctx context.Context, index uint64) (*Webhook, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM webhooks WHERE idx = ?`, webhookColumns), index)
	w, err := scanWebhookRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get webhook %d: %w", index, err)
	}
	return w, nil
}

// SaveWebhook inserts (Index == 0) or replaces a row.
func (s *Store) SaveWebhook(ctx context.Context, w *Webhook) (uint64, error) {
	var index any
	if w.Index > 0 {
		index = w.Index
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO webhooks (idx, url, token, on_boost, on_stream, on_auto, on_sent, on_invoice, equality, amount, enabled, request_successful, request_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			url = excluded.url, token = excluded.token, on_boost = excluded.on_boost, on_stream = excluded.on_stream,
			on_auto = excluded.on_auto, on_sent = excluded.on_sent, on_invoice = excluded.on_invoice,
			equality = excluded.equality, amount = excluded.amount, enabled = excluded.enabled
		RETURNING idx`,
		index, w.URL, w.Token, w.OnBoost, w.OnStream, w.OnAuto, w.OnSent, w.OnInvoice,
		w.Equality, w.Amount, w.Enabled, w.RequestSuccessful, w.RequestTimestamp,
	)

	var idx uint64
	if err := row.Scan(&idx); err != nil {
		return 0, fmt.Errorf("store: save webhook: %w", err)
	}
	return idx, nil
}

// SetWebhookResult records the outcome of the most recent request this
// webhook made.
func (s *Store) SetWebhookResult(ctx context.Context, index uint64, successful bool, timestamp int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE webhooks SET request_successful = ?, request_timestamp = ? WHERE idx = ?`, successful, timestamp, index)
	return err
}

// DeleteWebhook removes a row.
func (s *Store) DeleteWebhook(ctx context.Context, index uint64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM webhooks WHERE idx = ?`, index)
	return err
}
