package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

// migrate bootstraps every table with CREATE TABLE IF NOT EXISTS, then
// applies additive ALTER TABLE ADD COLUMN statements for columns introduced
// after a table's first release. A column that already exists makes the
// ALTER fail, which is expected and silently ignored: there is no
// migration version table, the schema converges by re-running every
// statement on every startup.
func (s *Store) migrate(ctx context.Context) error {
	creates := []string{
		`CREATE TABLE IF NOT EXISTS boosts (
			idx integer primary key,
			time integer,
			value_msat integer,
			value_msat_total integer,
			action integer,
			sender text,
			app text,
			message text,
			podcast text,
			episode text,
			tlv text
		)`,
		`CREATE TABLE IF NOT EXISTS sent_boosts (
			idx integer primary key,
			time integer,
			value_msat integer,
			value_msat_total integer,
			action integer,
			sender text,
			app text,
			message text,
			podcast text,
			episode text,
			tlv text,
			remote_podcast text,
			remote_episode text,
			payment_hash text,
			payment_pubkey text,
			payment_custom_key integer,
			payment_custom_value text,
			payment_fee_msat integer,
			reply_to_idx integer
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			idx integer primary key autoincrement,
			show_received_sats integer not null default 0,
			show_split_percentage integer not null default 0,
			hide_boosts integer not null default 0,
			hide_boosts_below integer,
			play_pew integer not null default 1,
			custom_pew_file text
		)`,
		`CREATE TABLE IF NOT EXISTS triggers (
			idx integer primary key,
			position integer not null,
			enabled integer not null,
			on_boost integer not null,
			on_stream integer not null,
			on_auto integer not null,
			on_sent integer not null,
			on_invoice integer not null,
			amount integer,
			amount_equality text,
			sender text,
			sender_equality text,
			app text,
			app_equality text,
			podcast text,
			podcast_equality text,
			sound_file text,
			sound_name text,
			webhook_url text,
			webhook_token text,
			webhook_successful integer,
			webhook_timestamp integer,
			osc_address text,
			osc_port integer,
			osc_path text,
			osc_args text,
			osc_successful integer,
			osc_timestamp integer,
			midi_note integer,
			midi_velocity integer,
			midi_channel integer,
			midi_duration integer
		)`,
		`CREATE TABLE IF NOT EXISTS numerology (
			idx integer primary key,
			position integer,
			equality text not null,
			amount integer not null,
			emoji text,
			description text
		)`,
		`CREATE TABLE IF NOT EXISTS webhooks (
			idx integer primary key autoincrement,
			url text,
			token text,
			on_boost integer,
			on_stream integer,
			on_sent integer,
			enabled integer,
			request_successful integer,
			request_timestamp integer
		)`,
		`CREATE TABLE IF NOT EXISTS node_info (
			idx integer primary key,
			time integer,
			lnd_alias text,
			node_pubkey text,
			node_version text,
			wallet_balance integer,
			node_type text
		)`,
		`CREATE TABLE IF NOT EXISTS jwt_secret (
			idx integer primary key,
			secret text not null,
			created_at integer not null
		)`,
	}

	for _, stmt := range creates {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	logger.Info("schema tables are ready")

	numerologyExisted, err := s.tableHadRows(ctx, "numerology")
	if err != nil {
		return err
	}

	alters := []string{
		"ALTER TABLE boosts ADD COLUMN remote_podcast text",
		"ALTER TABLE boosts ADD COLUMN remote_episode text",
		"ALTER TABLE boosts ADD COLUMN reply_sent integer",
		"ALTER TABLE boosts ADD COLUMN custom_key integer",
		"ALTER TABLE boosts ADD COLUMN custom_value text",

		"ALTER TABLE settings ADD COLUMN resolve_nostr_refs integer DEFAULT 0",
		"ALTER TABLE settings ADD COLUMN show_hosted_wallet_ids integer DEFAULT 0",
		"ALTER TABLE settings ADD COLUMN show_lightning_invoices integer DEFAULT 1",
		"ALTER TABLE settings ADD COLUMN fetch_metadata integer DEFAULT 1",
		// metadata_whitelist is a space-separated hostname allowlist for
		// comment-based metadata enrichment; not present upstream.
		"ALTER TABLE settings ADD COLUMN metadata_whitelist text DEFAULT ''",

		"ALTER TABLE webhooks ADD COLUMN equality text DEFAULT ''",
		"ALTER TABLE webhooks ADD COLUMN amount integer DEFAULT 0",
		"ALTER TABLE webhooks ADD COLUMN on_auto integer DEFAULT 0",
		"ALTER TABLE webhooks ADD COLUMN on_invoice integer DEFAULT 0",
	}
	for _, stmt := range alters {
		if _, err := s.db.ExecContext(ctx, stmt); err == nil {
			logger.Debug("applied additive migration", zap.String("stmt", stmt))
		} else if !isNoSuchColumnConflict(err) {
			logger.Debug("migration column already present", zap.String("stmt", stmt))
		}
	}

	// Backward-compat: webhooks predating on_auto treated on_boost as
	// covering automated boosts too.
	s.db.ExecContext(ctx, "UPDATE webhooks SET on_auto = 1 WHERE on_boost = 1 AND on_auto = 0")

	if !numerologyExisted {
		if err := s.insertDefaultNumerology(ctx); err != nil {
			return fmt.Errorf("seed numerology: %w", err)
		}
		logger.Info("default numerology added")
	}

	return nil
}

// isNoSuchColumnConflict reports whether err is the "duplicate column
// name" error SQLite raises on a re-applied ADD COLUMN, which is the
// expected steady-state outcome of this migration strategy.
func isNoSuchColumnConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

func (s *Store) tableHadRows(ctx context.Context, table string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		if isNoSuchTable(err) {
			return false, nil
		}
		return false, err
	}
	return count > 0, nil
}

func isNoSuchTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
