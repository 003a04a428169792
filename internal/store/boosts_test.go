package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
)

func boostFixture(index uint64) *boost.Record {
	return &boost.Record{
		Index:          index,
		Time:           1700000000,
		ValueMsat:      1000000,
		ValueMsatTotal: 1000000,
		Action:         boost.ActionBoost,
		Sender:         "alice",
		App:            "Fountain",
		Message:        "nice episode",
		Podcast:        "Podcasting 2.0",
	}
}

func TestAddAndGetBoost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := boostFixture(1)
	require.NoError(t, s.AddInvoice(ctx, rec))

	got, err := s.GetBoost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Sender)
	assert.Equal(t, boost.ActionBoost, got.Action)
	assert.Equal(t, int64(1000000), got.ValueMsatTotal)
}

func TestGetBoostNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetBoost(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateInvoiceOverwritesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec := boostFixture(1)
	require.NoError(t, s.AddInvoice(ctx, rec))

	rec.Sender = "bob"
	rec.ValueMsatTotal = 2000000
	require.NoError(t, s.UpdateInvoice(ctx, rec))

	got, err := s.GetBoost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Sender)
	assert.Equal(t, int64(2000000), got.ValueMsatTotal)
}

func TestMarkReplied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddInvoice(ctx, boostFixture(1)))
	require.NoError(t, s.MarkReplied(ctx, 1))

	got, err := s.GetBoost(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.ReplySent)
}

func TestListBoostsFiltersToBoostActions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boostRec := boostFixture(1)
	streamRec := boostFixture(2)
	streamRec.Action = boost.ActionStream
	require.NoError(t, s.AddInvoice(ctx, boostRec))
	require.NoError(t, s.AddInvoice(ctx, streamRec))

	boosts, err := s.ListBoosts(ctx, 0, 100, true, ListFilter{})
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, uint64(1), boosts[0].Index)

	streams, err := s.ListStreams(ctx, 0, 100, true, ListFilter{})
	require.NoError(t, err)
	require.Len(t, streams, 1)
	assert.Equal(t, uint64(2), streams[0].Index)
}

func TestListBoostsOrdersDescendingByDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, s.AddInvoice(ctx, boostFixture(i)))
	}

	boosts, err := s.ListBoosts(ctx, 100, 0, false, ListFilter{})
	require.NoError(t, err)
	require.Len(t, boosts, 3)
	assert.Equal(t, uint64(3), boosts[0].Index)
	assert.Equal(t, uint64(1), boosts[2].Index)
}

func TestListBoostsRespectsMaxLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, s.AddInvoice(ctx, boostFixture(i)))
	}

	boosts, err := s.ListBoosts(ctx, 100, 2, false, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, boosts, 2)
}

func TestListBoostsFiltersByPodcastAndDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec1 := boostFixture(1)
	rec1.Podcast = "Show A"
	rec1.Time = 100
	rec2 := boostFixture(2)
	rec2.Podcast = "Show B"
	rec2.Time = 200
	require.NoError(t, s.AddInvoice(ctx, rec1))
	require.NoError(t, s.AddInvoice(ctx, rec2))

	boosts, err := s.ListBoosts(ctx, 100, 0, false, ListFilter{Podcast: "Show A"})
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, uint64(1), boosts[0].Index)

	boosts, err = s.ListBoosts(ctx, 100, 0, false, ListFilter{StartDate: 150})
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, uint64(2), boosts[0].Index)

	boosts, err = s.ListBoosts(ctx, 100, 0, false, ListFilter{EndDate: 150})
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, uint64(1), boosts[0].Index)
}

func TestListBoostsFiltersByExplicitActions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	autoRec := boostFixture(1)
	autoRec.Action = boost.ActionAuto
	invoiceRec := boostFixture(2)
	invoiceRec.Action = boost.ActionInvoice
	require.NoError(t, s.AddInvoice(ctx, autoRec))
	require.NoError(t, s.AddInvoice(ctx, invoiceRec))

	boosts, err := s.ListBoosts(ctx, 100, 0, false, ListFilter{Actions: []boost.ActionType{boost.ActionInvoice}})
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, uint64(2), boosts[0].Index)
}

func TestLastBoostIndexEmptyTableReturnsZero(t *testing.T) {
	s := newTestStore(t)
	idx, err := s.LastBoostIndex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, idx)
}

func TestLastBoostIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.AddInvoice(ctx, boostFixture(1)))
	require.NoError(t, s.AddInvoice(ctx, boostFixture(5)))

	idx, err := s.LastBoostIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), idx)
}

func TestPodcastsReturnsDistinctNonEmptyNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec1 := boostFixture(1)
	rec1.Podcast = "Show A"
	rec2 := boostFixture(2)
	rec2.Podcast = "Show A"
	rec3 := boostFixture(3)
	rec3.Podcast = ""
	require.NoError(t, s.AddInvoice(ctx, rec1))
	require.NoError(t, s.AddInvoice(ctx, rec2))
	require.NoError(t, s.AddInvoice(ctx, rec3))

	podcasts, err := s.Podcasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Show A"}, podcasts)
}

func TestAddInvoicePreservesRemoteGuidsAndCustomKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	podcast, episode := "Remote Show", "Remote Ep"
	key := uint64(696969)
	val := "deadbeef"
	rec := boostFixture(1)
	rec.RemotePodcast, rec.RemoteEpisode = &podcast, &episode
	rec.CustomKey, rec.CustomValue = &key, &val
	require.NoError(t, s.AddInvoice(ctx, rec))

	got, err := s.GetBoost(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got.RemotePodcast)
	assert.Equal(t, "Remote Show", *got.RemotePodcast)
	require.NotNil(t, got.CustomKey)
	assert.Equal(t, key, *got.CustomKey)
}
