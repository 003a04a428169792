package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateJWTSecretGeneratesOnFirstUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secret, err := s.GetOrCreateJWTSecret(ctx)
	require.NoError(t, err)
	assert.Len(t, secret, jwtSecretLength)
}

func TestGetOrCreateJWTSecretIsStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrCreateJWTSecret(ctx)
	require.NoError(t, err)
	second, err := s.GetOrCreateJWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSetJWTSecretOverridesGeneratedOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetOrCreateJWTSecret(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetJWTSecret(ctx, "my-fixed-secret"))

	got, err := s.GetOrCreateJWTSecret(ctx)
	require.NoError(t, err)
	assert.Equal(t, "my-fixed-secret", got)
}
