package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
)

// ListFilter narrows AddInvoices/ListBoosts/ListStreams/ListPayments; the
// zero value applies no filtering beyond the built-in action-code split.
type ListFilter struct {
	Podcast   string
	StartDate int64
	EndDate   int64
	Actions   []boost.ActionType
}

// AddInvoice persists one received-invoice boost record.
func (s *Store) AddInvoice(ctx context.Context, rec *boost.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO boosts
			(idx, time, value_msat, value_msat_total, action, sender, app, message, podcast, episode, tlv,
			 remote_podcast, remote_episode, reply_sent, custom_key, custom_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Index, rec.Time, rec.ValueMsat, rec.ValueMsatTotal, uint8(rec.Action),
		rec.Sender, rec.App, rec.Message, rec.Podcast, rec.Episode, rec.TLV,
		rec.RemotePodcast, rec.RemoteEpisode, rec.ReplySent, rec.CustomKey, rec.CustomValue,
	)
	if err != nil {
		return fmt.Errorf("store: add invoice %d: %w", rec.Index, err)
	}
	return nil
}

// UpdateInvoice overwrites every mutable field of a previously-stored
// invoice, keyed by rec.Index (used when metadata enrichment or remote GUID
// resolution completes after the initial insert).
func (s *Store) UpdateInvoice(ctx context.Context, rec *boost.Record) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE boosts SET
			value_msat = ?, value_msat_total = ?, action = ?, sender = ?, app = ?, message = ?,
			podcast = ?, episode = ?, tlv = ?, remote_podcast = ?, remote_episode = ?,
			custom_key = ?, custom_value = ?
		WHERE idx = ?`,
		rec.ValueMsat, rec.ValueMsatTotal, uint8(rec.Action), rec.Sender, rec.App, rec.Message,
		rec.Podcast, rec.Episode, rec.TLV, rec.RemotePodcast, rec.RemoteEpisode,
		rec.CustomKey, rec.CustomValue, rec.Index,
	)
	if err != nil {
		return fmt.Errorf("store: update invoice %d: %w", rec.Index, err)
	}
	return nil
}

// MarkReplied flags a received boost as having had an auto-reply boost
// sent back to its sender.
func (s *Store) MarkReplied(ctx context.Context, index uint64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE boosts SET reply_sent = 1 WHERE idx = ?`, index)
	if err != nil {
		return fmt.Errorf("store: mark replied %d: %w", index, err)
	}
	return nil
}

const boostColumns = `idx, time, value_msat, value_msat_total, action, sender, app, message, podcast, episode, tlv,
	remote_podcast, remote_episode, reply_sent, custom_key, custom_value`

func scanBoostRow(row interface{ Scan(...any) error }) (*boost.Record, error) {
	var rec boost.Record
	var action uint8
	var remotePodcast, remoteEpisode, customValue sql.NullString
	var replySent, customKey sql.NullInt64

	if err := row.Scan(
		&rec.Index, &rec.Time, &rec.ValueMsat, &rec.ValueMsatTotal, &action,
		&rec.Sender, &rec.App, &rec.Message, &rec.Podcast, &rec.Episode, &rec.TLV,
		&remotePodcast, &remoteEpisode, &replySent, &customKey, &customValue,
	); err != nil {
		return nil, err
	}
	rec.Action = boost.ActionType(action)
	rec.ReplySent = replySent.Valid && replySent.Int64 != 0
	if remotePodcast.Valid {
		rec.RemotePodcast = &remotePodcast.String
	}
	if remoteEpisode.Valid {
		rec.RemoteEpisode = &remoteEpisode.String
	}
	if customKey.Valid {
		k := uint64(customKey.Int64)
		rec.CustomKey = &k
	}
	if customValue.Valid {
		rec.CustomValue = &customValue.String
	}
	return &rec, nil
}

// listInvoices is the shared implementation behind ListBoosts and
// ListStreams: invtype narrows to the boost action codes (2,4,5) or their
// complement; index/max/forward page through the result by idx.
func (s *Store) listInvoices(ctx context.Context, invtype string, index, max uint64, forward bool, filter ListFilter) ([]*boost.Record, error) {
	var conds []string
	var args []any

	if forward {
		conds = append(conds, "idx >= ?")
	} else {
		conds = append(conds, "idx <= ?")
	}
	args = append(args, index)

	switch invtype {
	case "boost":
		conds = append(conds, "action IN (2, 4, 5)")
	case "stream":
		conds = append(conds, "action NOT IN (2, 4, 5)")
	}

	if len(filter.Actions) > 0 {
		placeholders := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			placeholders[i] = "?"
			args = append(args, uint8(a))
		}
		conds = append(conds, fmt.Sprintf("action IN (%s)", strings.Join(placeholders, ", ")))
	}

	if filter.Podcast != "" {
		conds = append(conds, "podcast = ?")
		args = append(args, filter.Podcast)
	}
	if filter.StartDate > 0 {
		conds = append(conds, "time >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate > 0 {
		conds = append(conds, "time <= ?")
		args = append(args, filter.EndDate)
	}

	query := fmt.Sprintf(`SELECT %s FROM boosts WHERE %s ORDER BY idx DESC`, boostColumns, strings.Join(conds, " AND "))
	if max > 0 {
		query += " LIMIT ?"
		args = append(args, max)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list %s invoices: %w", invtype, err)
	}
	defer rows.Close()

	var out []*boost.Record
	for rows.Next() {
		rec, err := scanBoostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan invoice: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListBoosts returns boost-classified invoices (action in {boost, auto,
// invoice}) in the given paging direction.
func (s *Store) ListBoosts(ctx context.Context, index, max uint64, forward bool, filter ListFilter) ([]*boost.Record, error) {
	return s.listInvoices(ctx, "boost", index, max, forward, filter)
}

// ListStreams returns stream-classified invoices (everything not a boost).
func (s *Store) ListStreams(ctx context.Context, index, max uint64, forward bool, filter ListFilter) ([]*boost.Record, error) {
	return s.listInvoices(ctx, "stream", index, max, forward, filter)
}

// GetBoost returns a single received invoice by index, or ErrNotFound.
func (s *Store) GetBoost(ctx context.Context, index uint64) (*boost.Record, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM boosts WHERE idx = ?`, boostColumns), index)
	rec, err := scanBoostRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get boost %d: %w", index, err)
	}
	return rec, nil
}

// LastBoostIndex returns the highest idx in the boosts table, or 0 if empty.
func (s *Store) LastBoostIndex(ctx context.Context) (uint64, error) {
	var idx sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(idx) FROM boosts`).Scan(&idx)
	if err != nil {
		return 0, fmt.Errorf("store: last boost index: %w", err)
	}
	return uint64(idx.Int64), nil
}

// Podcasts returns the distinct, non-empty podcast names that have
// received a boost, for populating the listing filter UI.
func (s *Store) Podcasts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT podcast FROM boosts WHERE podcast <> '' ORDER BY podcast`)
	if err != nil {
		return nil, fmt.Errorf("store: list podcasts: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
