package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Settings mirrors the single-row settings table (idx = 1 always).
type Settings struct {
	ShowReceivedSats     bool
	ShowSplitPercentage  bool
	HideBoosts           bool
	HideBoostsBelow      *uint64
	PlayPew              bool
	CustomPewFile        *string
	ResolveNostrRefs     bool
	ShowHostedWalletIDs  bool
	ShowLightningInvoices bool
	FetchMetadata        bool
	// MetadataWhitelist is the set of hostnames the metadata enricher is
	// allowed to contact for comment-based enrichment; empty means
	// unrestricted.
	MetadataWhitelist []string
}

func defaultSettings() Settings {
	return Settings{
		PlayPew:               true,
		ShowLightningInvoices: true,
		FetchMetadata:         true,
	}
}

// LoadSettings returns the persisted settings row, or the reference
// defaults if no row has ever been saved.
func (s *Store) LoadSettings(ctx context.Context) (Settings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		show_received_sats, show_split_percentage, hide_boosts, hide_boosts_below, play_pew, custom_pew_file,
		resolve_nostr_refs, show_hosted_wallet_ids, show_lightning_invoices, fetch_metadata, metadata_whitelist
	FROM settings WHERE idx = 1`)

	var out Settings
	var hideBoostsBelow sql.NullInt64
	var customPewFile, whitelist sql.NullString

	err := row.Scan(
		&out.ShowReceivedSats, &out.ShowSplitPercentage, &out.HideBoosts, &hideBoostsBelow,
		&out.PlayPew, &customPewFile, &out.ResolveNostrRefs, &out.ShowHostedWalletIDs,
		&out.ShowLightningInvoices, &out.FetchMetadata, &whitelist,
	)
	if err == sql.ErrNoRows {
		return defaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("store: load settings: %w", err)
	}

	if hideBoostsBelow.Valid {
		v := uint64(hideBoostsBelow.Int64)
		out.HideBoostsBelow = &v
	}
	if customPewFile.Valid {
		out.CustomPewFile = &customPewFile.String
	}
	if whitelist.Valid && whitelist.String != "" {
		out.MetadataWhitelist = strings.Fields(whitelist.String)
	}
	return out, nil
}

// SaveSettings upserts the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (
			idx, show_received_sats, show_split_percentage, hide_boosts, hide_boosts_below, play_pew,
			custom_pew_file, resolve_nostr_refs, show_hosted_wallet_ids, show_lightning_invoices,
			fetch_metadata, metadata_whitelist
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			show_received_sats = excluded.show_received_sats,
			show_split_percentage = excluded.show_split_percentage,
			hide_boosts = excluded.hide_boosts,
			hide_boosts_below = excluded.hide_boosts_below,
			play_pew = excluded.play_pew,
			custom_pew_file = excluded.custom_pew_file,
			resolve_nostr_refs = excluded.resolve_nostr_refs,
			show_hosted_wallet_ids = excluded.show_hosted_wallet_ids,
			show_lightning_invoices = excluded.show_lightning_invoices,
			fetch_metadata = excluded.fetch_metadata,
			metadata_whitelist = excluded.metadata_whitelist`,
		settings.ShowReceivedSats, settings.ShowSplitPercentage, settings.HideBoosts, settings.HideBoostsBelow,
		settings.PlayPew, settings.CustomPewFile, settings.ResolveNostrRefs, settings.ShowHostedWalletIDs,
		settings.ShowLightningInvoices, settings.FetchMetadata, strings.Join(settings.MetadataWhitelist, " "),
	)
	if err != nil {
		return fmt.Errorf("store: save settings: %w", err)
	}
	return nil
}
