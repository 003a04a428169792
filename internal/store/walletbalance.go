package store

import (
	"context"
	"fmt"
)

// AddWalletBalance updates the node's last-known wallet balance, leaving
// the rest of the node-info row untouched. Kept separate from
// SaveNodeInfo because the poller refreshes balance far more often than
// node identity.
func (s *Store) AddWalletBalance(ctx context.Context, sats int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE node_info SET wallet_balance = ? WHERE idx = 1`, sats)
	if err != nil {
		return fmt.Errorf("store: add wallet balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_, err := s.db.ExecContext(ctx, `INSERT INTO node_info (idx, wallet_balance) VALUES (1, ?)`, sats)
		if err != nil {
			return fmt.Errorf("store: add wallet balance: %w", err)
		}
	}
	return nil
}

// GetWalletBalance returns the last-known wallet balance, or 0 if none has
// been recorded.
func (s *Store) GetWalletBalance(ctx context.Context) (int64, error) {
	info, err := s.LoadNodeInfo(ctx)
	if err != nil {
		return 0, err
	}
	return info.WalletBalance, nil
}
