package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetNumerology(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	emoji := "\U0001F680"
	desc := "Rocket boost"
	idx, err := s.SaveNumerology(ctx, &Numerology{Position: 1, Amount: 1000, Equality: "eq", Emoji: &emoji, Description: &desc})
	require.NoError(t, err)

	got, err := s.GetNumerology(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.Amount)
	require.NotNil(t, got.Emoji)
	assert.Equal(t, emoji, *got.Emoji)
}

func TestGetNumerologyNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetNumerology(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNumerologyRenumbersPositions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	idx1, err := s.SaveNumerology(ctx, &Numerology{Position: 1, Amount: 100, Equality: "eq"})
	require.NoError(t, err)
	idx2, err := s.SaveNumerology(ctx, &Numerology{Position: 2, Amount: 200, Equality: "eq"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteNumerology(ctx, idx1))

	list, err := s.ListNumerology(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, idx2, list[0].Index)
	assert.Equal(t, uint64(1), list[0].Position)
}

func TestResetNumerologyReplacesRowsWithDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveNumerology(ctx, &Numerology{Position: 1, Amount: 999999, Equality: "eq"})
	require.NoError(t, err)

	require.NoError(t, s.ResetNumerology(ctx))

	list, err := s.ListNumerology(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for _, n := range list {
		assert.NotEqual(t, uint64(999999), n.Amount)
	}
}

func TestNumerologySeededOnFirstMigration(t *testing.T) {
	s := newTestStore(t)
	list, err := s.ListNumerology(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
