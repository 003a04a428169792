package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNodeInfoEmptyReturnsZeroValue(t *testing.T) {
	s := newTestStore(t)
	info, err := s.LoadNodeInfo(context.Background())
	require.NoError(t, err)
	assert.Zero(t, info)
}

func TestSaveAndLoadNodeInfo(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	info := NodeInfo{Time: 1700000000, Alias: "myNode", Pubkey: "03deadbeef", Version: "0.18", WalletBalance: 50000, NodeType: "LND"}
	require.NoError(t, s.SaveNodeInfo(ctx, info))

	got, err := s.LoadNodeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestSaveNodeInfoOverwritesExistingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveNodeInfo(ctx, NodeInfo{Alias: "first"}))
	require.NoError(t, s.SaveNodeInfo(ctx, NodeInfo{Alias: "second"}))

	got, err := s.LoadNodeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Alias)
}
