package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Trigger mirrors one row of the triggers table: a predicate set plus the
// effects to run when a boost/stream/payment event matches it.
type Trigger struct {
	Index    uint64
	Position uint64
	Enabled  bool

	OnBoost   bool
	OnStream  bool
	OnAuto    bool
	OnSent    bool
	OnInvoice bool

	Amount         *uint64
	AmountEquality *string
	Sender         *string
	SenderEquality *string
	App            *string
	AppEquality    *string
	Podcast        *string
	PodcastEquality *string

	SoundFile *string
	SoundName *string

	WebhookURL       *string
	WebhookToken     *string
	WebhookSuccessful *bool
	WebhookTimestamp *int64

	OSCAddress    *string
	OSCPort       *uint16
	OSCPath       *string
	OSCArgs       *string
	OSCSuccessful *bool
	OSCTimestamp  *int64

	MIDINote     *uint8
	MIDIVelocity *uint8
	MIDIChannel  *uint8
	MIDIDuration *uint16
}

const triggerColumns = `idx, position, enabled, on_boost, on_stream, on_auto, on_sent, on_invoice,
	amount, amount_equality, sender, sender_equality, app, app_equality, podcast, podcast_equality,
	sound_file, sound_name, webhook_url, webhook_token, webhook_successful, webhook_timestamp,
	osc_address, osc_port, osc_path, osc_args, osc_successful, osc_timestamp,
	midi_note, midi_velocity, midi_channel, midi_duration`

func scanTriggerRow(row interface{ Scan(...any) error }) (*Trigger, error) {
	var t Trigger
	if err := row.Scan(
		&t.Index, &t.Position, &t.Enabled, &t.OnBoost, &t.OnStream, &t.OnAuto, &t.OnSent, &t.OnInvoice,
		&t.Amount, &t.AmountEquality, &t.Sender, &t.SenderEquality, &t.App, &t.AppEquality,
		&t.Podcast, &t.PodcastEquality, &t.SoundFile, &t.SoundName,
		&t.WebhookURL, &t.WebhookToken, &t.WebhookSuccessful, &t.WebhookTimestamp,
		&t.OSCAddress, &t.OSCPort, &t.OSCPath, &t.OSCArgs, &t.OSCSuccessful, &t.OSCTimestamp,
		&t.MIDINote, &t.MIDIVelocity, &t.MIDIChannel, &t.MIDIDuration,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTriggers returns every trigger ordered by position.
func (s *Store) ListTriggers(ctx context.Context) ([]*Trigger, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM triggers ORDER BY position`, triggerColumns))
	if err != nil {
		return nil, fmt.Errorf("store: list triggers: %w", err)
	}
	defer rows.Close()

	var out []*Trigger
	for rows.Next() {
		t, err := scanTriggerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTrigger loads a single trigger by index.
func (s *Store) GetTrigger(ctx context.Context, index uint64) (*Trigger, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM triggers WHERE idx = ?`, triggerColumns), index)
	t, err := scanTriggerRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get trigger %d: %w", index, err)
	}
	return t, nil
}

// SaveTrigger inserts a new trigger (Index == 0) or replaces an existing
// one, making room at the requested position and renumbering every
// trigger's position to a dense 1..N sequence afterwards. Returns the
// trigger's index.
func (s *Store) SaveTrigger(ctx context.Context, t *Trigger) (uint64, error) {
	if err := s.setTriggerPosition(ctx, t.Index, t.Position); err != nil {
		return 0, err
	}

	var index any
	if t.Index > 0 {
		index = t.Index
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO triggers (
			idx, position, enabled, on_boost, on_stream, on_auto, on_sent, on_invoice,
			amount, amount_equality, sender, sender_equality, app, app_equality, podcast, podcast_equality,
			sound_file, sound_name, webhook_url, webhook_token, webhook_successful, webhook_timestamp,
			osc_address, osc_port, osc_path, osc_args, osc_successful, osc_timestamp,
			midi_note, midi_velocity, midi_channel, midi_duration
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			position = excluded.position, enabled = excluded.enabled, on_boost = excluded.on_boost,
			on_stream = excluded.on_stream, on_auto = excluded.on_auto, on_sent = excluded.on_sent,
			on_invoice = excluded.on_invoice, amount = excluded.amount, amount_equality = excluded.amount_equality,
			sender = excluded.sender, sender_equality = excluded.sender_equality, app = excluded.app,
			app_equality = excluded.app_equality, podcast = excluded.podcast, podcast_equality = excluded.podcast_equality,
			sound_file = excluded.sound_file, sound_name = excluded.sound_name, webhook_url = excluded.webhook_url,
			webhook_token = excluded.webhook_token, webhook_successful = excluded.webhook_successful,
			webhook_timestamp = excluded.webhook_timestamp, osc_address = excluded.osc_address,
			osc_port = excluded.osc_port, osc_path = excluded.osc_path, osc_args = excluded.osc_args,
			osc_successful = excluded.osc_successful, osc_timestamp = excluded.osc_timestamp,
			midi_note = excluded.midi_note, midi_velocity = excluded.midi_velocity,
			midi_channel = excluded.midi_channel, midi_duration = excluded.midi_duration
		RETURNING idx`,
		index, t.Position, t.Enabled, t.OnBoost, t.OnStream, t.OnAuto, t.OnSent, t.OnInvoice,
		t.Amount, t.AmountEquality, t.Sender, t.SenderEquality, t.App, t.AppEquality,
		t.Podcast, t.PodcastEquality, t.SoundFile, t.SoundName,
		t.WebhookURL, t.WebhookToken, t.WebhookSuccessful, t.WebhookTimestamp,
		t.OSCAddress, t.OSCPort, t.OSCPath, t.OSCArgs, t.OSCSuccessful, t.OSCTimestamp,
		t.MIDINote, t.MIDIVelocity, t.MIDIChannel, t.MIDIDuration,
	)

	var idx uint64
	if err := row.Scan(&idx); err != nil {
		return 0, fmt.Errorf("store: save trigger: %w", err)
	}

	if err := s.renumberTriggerPositions(ctx); err != nil {
		return 0, err
	}
	return idx, nil
}

// setTriggerPosition shifts the position of every other trigger out of the
// way of index's move to position (or, for a brand new trigger, makes room
// at position by shifting everything at or after it down by one).
func (s *Store) setTriggerPosition(ctx context.Context, index, position uint64) error {
	if index > 0 {
		current, err := s.GetTrigger(ctx, index)
		if err != nil {
			return err
		}
		switch {
		case position < current.Position:
			_, err = s.db.ExecContext(ctx,
				`UPDATE triggers SET position = position + 1 WHERE position >= ? AND position <= ? AND idx <> ?`,
				position, current.Position, index)
		case position > current.Position:
			_, err = s.db.ExecContext(ctx,
				`UPDATE triggers SET position = position - 1 WHERE position <= ? AND position >= ? AND idx <> ?`,
				position, current.Position, index)
		}
		return err
	}

	_, err := s.db.ExecContext(ctx, `UPDATE triggers SET position = position + 1 WHERE position >= ?`, position)
	return err
}

func (s *Store) renumberTriggerPositions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET position = (SELECT COUNT(*) FROM triggers b WHERE b.position < triggers.position) + 1`)
	return err
}

// DeleteTrigger removes a trigger and renumbers the remaining positions.
func (s *Store) DeleteTrigger(ctx context.Context, index uint64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM triggers WHERE idx = ?`, index); err != nil {
		return fmt.Errorf("store: delete trigger %d: %w", index, err)
	}
	return s.renumberTriggerPositions(ctx)
}

// SetTriggerWebhookResult records the outcome of the most recent webhook
// POST this trigger fired.
func (s *Store) SetTriggerWebhookResult(ctx context.Context, index uint64, successful bool, timestamp int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET webhook_successful = ?, webhook_timestamp = ? WHERE idx = ?`, successful, timestamp, index)
	return err
}

// SetTriggerOSCResult records the outcome of the most recent OSC datagram
// this trigger sent.
func (s *Store) SetTriggerOSCResult(ctx context.Context, index uint64, successful bool, timestamp int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE triggers SET osc_successful = ?, osc_timestamp = ? WHERE idx = ?`, successful, timestamp, index)
	return err
}
