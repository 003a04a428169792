package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndGetWebhook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	idx, err := s.SaveWebhook(ctx, &Webhook{URL: "https://example.com/hook", OnBoost: true, Enabled: true})
	require.NoError(t, err)

	got, err := s.GetWebhook(ctx, idx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", got.URL)
	assert.True(t, got.Enabled)
}

func TestGetWebhookNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetWebhook(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListWebhooksFiltersByEnabled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveWebhook(ctx, &Webhook{URL: "https://a", Enabled: true})
	require.NoError(t, err)
	_, err = s.SaveWebhook(ctx, &Webhook{URL: "https://b", Enabled: false})
	require.NoError(t, err)

	enabled := true
	list, err := s.ListWebhooks(ctx, &enabled)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://a", list[0].URL)

	all, err := s.ListWebhooks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSetWebhookResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx, err := s.SaveWebhook(ctx, &Webhook{URL: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, s.SetWebhookResult(ctx, idx, true, 1700000000))

	got, err := s.GetWebhook(ctx, idx)
	require.NoError(t, err)
	require.NotNil(t, got.RequestSuccessful)
	assert.True(t, *got.RequestSuccessful)
}

func TestDeleteWebhook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	idx, err := s.SaveWebhook(ctx, &Webhook{URL: "https://example.com"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteWebhook(ctx, idx))

	_, err = s.GetWebhook(ctx, idx)
	assert.ErrorIs(t, err, ErrNotFound)
}
