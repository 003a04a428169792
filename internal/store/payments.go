package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
)

const paymentColumns = `idx, time, value_msat, value_msat_total, action, sender, app, message, podcast, episode, tlv,
	remote_podcast, remote_episode, payment_hash, payment_pubkey, payment_custom_key, payment_custom_value,
	payment_fee_msat, reply_to_idx`

// AddPayment persists one sent-boost record. When rec.PaymentInfo.ReplyToIdx
// is set, the referenced received boost is marked replied in the same call
// (matching the reference implementation's auto-reply bookkeeping).
func (s *Store) AddPayment(ctx context.Context, rec *boost.Record) error {
	if rec.PaymentInfo == nil {
		return fmt.Errorf("store: add payment %d: missing payment info", rec.Index)
	}
	pi := rec.PaymentInfo

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sent_boosts
			(idx, time, value_msat, value_msat_total, action, sender, app, message, podcast, episode, tlv,
			 remote_podcast, remote_episode, payment_hash, payment_pubkey, payment_custom_key, payment_custom_value,
			 payment_fee_msat, reply_to_idx)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			reply_to_idx = COALESCE(reply_to_idx, excluded.reply_to_idx)`,
		rec.Index, rec.Time, rec.ValueMsat, rec.ValueMsatTotal, uint8(rec.Action),
		rec.Sender, rec.App, rec.Message, rec.Podcast, rec.Episode, rec.TLV,
		rec.RemotePodcast, rec.RemoteEpisode, pi.PaymentHash, pi.Pubkey,
		pi.CustomKey, pi.CustomValue, pi.FeeMsat, pi.ReplyToIdx,
	)
	if err != nil {
		return fmt.Errorf("store: add payment %d: %w", rec.Index, err)
	}

	if pi.ReplyToIdx != nil {
		if err := s.MarkReplied(ctx, *pi.ReplyToIdx); err != nil {
			return err
		}
	}
	return nil
}

func scanPaymentRow(row interface{ Scan(...any) error }) (*boost.Record, error) {
	var rec boost.Record
	var action uint8
	var remotePodcast, remoteEpisode sql.NullString
	var replyToIdx sql.NullInt64
	pi := &boost.PaymentInfo{}

	if err := row.Scan(
		&rec.Index, &rec.Time, &rec.ValueMsat, &rec.ValueMsatTotal, &action,
		&rec.Sender, &rec.App, &rec.Message, &rec.Podcast, &rec.Episode, &rec.TLV,
		&remotePodcast, &remoteEpisode, &pi.PaymentHash, &pi.Pubkey, &pi.CustomKey, &pi.CustomValue,
		&pi.FeeMsat, &replyToIdx,
	); err != nil {
		return nil, err
	}
	rec.Action = boost.ActionType(action)
	if remotePodcast.Valid {
		rec.RemotePodcast = &remotePodcast.String
	}
	if remoteEpisode.Valid {
		rec.RemoteEpisode = &remoteEpisode.String
	}
	if replyToIdx.Valid {
		v := uint64(replyToIdx.Int64)
		pi.ReplyToIdx = &v
	}
	rec.PaymentInfo = pi
	return &rec, nil
}

// ListPayments returns sent boosts in the given paging direction.
func (s *Store) ListPayments(ctx context.Context, index, max uint64, forward bool, filter ListFilter) ([]*boost.Record, error) {
	var conds []string
	var args []any

	if forward {
		conds = append(conds, "idx >= ?")
	} else {
		conds = append(conds, "idx <= ?")
	}
	args = append(args, index)

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

	query := fmt.Sprintf(`SELECT %s FROM sent_boosts WHERE %s ORDER BY idx DESC`, paymentColumns, strings.Join(conds, " AND "))
	if max > 0 {
		query += " LIMIT ?"
		args = append(args, max)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list payments: %w", err)
	}
	defer rows.Close()

	var out []*boost.Record
	for rows.Next() {
		rec, err := scanPaymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan payment: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// LastPaymentIndex returns the highest idx in sent_boosts, or 0 if empty.
func (s *Store) LastPaymentIndex(ctx context.Context) (uint64, error) {
	var idx sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(idx) FROM sent_boosts`).Scan(&idx)
	if err != nil {
		return 0, fmt.Errorf("store: last payment index: %w", err)
	}
	return uint64(idx.Int64), nil
}

// SentPodcasts returns the distinct, non-empty podcast names this node has
// sent boosts to.
func (s *Store) SentPodcasts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT podcast FROM sent_boosts WHERE podcast <> '' ORDER BY podcast`)
	if err != nil {
		return nil, fmt.Errorf("store: list sent podcasts: %w", err)
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
