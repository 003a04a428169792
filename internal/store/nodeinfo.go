package store

import (
	"context"
	"database/sql"
	"fmt"
)

// NodeInfo is the last-observed identity and liveness snapshot of the
// connected Lightning node. Unlike the reference implementation's table,
// this drops the onchain-wallet and channel-liquidity columns: this build
// only ever talks to a node over its Lightning RPC, never its chain
// backend (see DESIGN.md).
type NodeInfo struct {
	Time          int64
	Alias         string
	Pubkey        string
	Version       string
	WalletBalance int64
	NodeType      string
}

// SaveNodeInfo replaces the single persisted node-info row.
func (s *Store) SaveNodeInfo(ctx context.Context, info NodeInfo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO node_info (idx, time, lnd_alias, node_pubkey, node_version, wallet_balance, node_type)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(idx) DO UPDATE SET
			time = excluded.time, lnd_alias = excluded.lnd_alias, node_pubkey = excluded.node_pubkey,
			node_version = excluded.node_version, wallet_balance = excluded.wallet_balance, node_type = excluded.node_type`,
		info.Time, info.Alias, info.Pubkey, info.Version, info.WalletBalance, info.NodeType,
	)
	if err != nil {
		return fmt.Errorf("store: save node info: %w", err)
	}
	return nil
}

// LoadNodeInfo returns the persisted node-info row, or the zero value if
// none has ever been saved.
func (s *Store) LoadNodeInfo(ctx context.Context) (NodeInfo, error) {
	var info NodeInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT time, lnd_alias, node_pubkey, node_version, wallet_balance, node_type FROM node_info WHERE idx = 1`,
	).Scan(&info.Time, &info.Alias, &info.Pubkey, &info.Version, &info.WalletBalance, &info.NodeType)
	if err == sql.ErrNoRows {
		return NodeInfo{}, nil
	}
	if err != nil {
		return NodeInfo{}, fmt.Errorf("store: load node info: %w", err)
	}
	return info, nil
}
