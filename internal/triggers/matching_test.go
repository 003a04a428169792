package triggers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
)

func strp(s string) *string { return &s }
func u64p(v uint64) *uint64 { return &v }

func TestMatchesOnCondition(t *testing.T) {
	boostTrigger := &store.Trigger{OnBoost: true}
	sentTrigger := &store.Trigger{OnBoost: true, OnSent: true}

	boostRec := &boost.Record{Action: boost.ActionBoost}
	sentRec := &boost.Record{Action: boost.ActionBoost, PaymentInfo: &boost.PaymentInfo{PaymentHash: "abc"}}

	assert.True(t, matchesOnCondition(boostTrigger, boostRec))
	assert.False(t, matchesOnCondition(boostTrigger, sentRec), "a sent payment never matches a trigger without OnSent")
	assert.True(t, matchesOnCondition(sentTrigger, sentRec))

	streamTrigger := &store.Trigger{OnStream: true}
	assert.False(t, matchesOnCondition(streamTrigger, boostRec))
}

func TestMatchesNumeric(t *testing.T) {
	cases := []struct {
		name     string
		equality *string
		filter   *uint64
		actual   uint64
		want     bool
	}{
		{"nil equality passes", nil, u64p(5), 1, true},
		{"nil filter passes", strp(">="), nil, 1, true},
		{"gte true", strp(">="), u64p(100), 150, true},
		{"gte false", strp(">="), u64p(100), 50, false},
		{"lt true", strp("<"), u64p(100), 50, true},
		{"eq true", strp("="), u64p(100), 100, true},
		{"neq true", strp("!="), u64p(100), 50, true},
		{"contains", strp("=~"), u64p(23), 1234, true},
		{"prefix", strp("^="), u64p(12), 1234, true},
		{"suffix", strp("$="), u64p(34), 1234, true},
		{"unknown operator", strp("??"), u64p(1), 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchesNumeric(tc.equality, tc.filter, tc.actual))
		})
	}
}

func TestMatchesString(t *testing.T) {
	assert.True(t, matchesString(nil, strp("x"), "anything"))
	assert.True(t, matchesString(strp("="), strp("Alice"), "Alice"))
	assert.False(t, matchesString(strp("="), strp("Alice"), "Bob"))
	assert.True(t, matchesString(strp("=~"), strp("lic"), "Alice"))
	assert.True(t, matchesString(strp("^="), strp("Ali"), "Alice"))
	assert.True(t, matchesString(strp("$="), strp("ice"), "Alice"))
	assert.False(t, matchesString(strp("bogus"), strp("x"), "x"))
}

func TestMatchesFilters(t *testing.T) {
	trigger := &store.Trigger{
		Amount:         u64p(1000),
		AmountEquality: strp(">="),
		Sender:         strp("Alice"),
		SenderEquality: strp("="),
	}
	rec := &boost.Record{ValueMsatTotal: 2_000_000, Sender: "Alice"}
	assert.True(t, matchesFilters(trigger, rec))

	rec2 := &boost.Record{ValueMsatTotal: 2_000_000, Sender: "Bob"}
	assert.False(t, matchesFilters(trigger, rec2))
}

func TestClientEffect(t *testing.T) {
	t.Run("nil when unconfigured", func(t *testing.T) {
		assert.Nil(t, clientEffect(&store.Trigger{}))
	})

	t.Run("midi defaults", func(t *testing.T) {
		note := uint8(60)
		ce := clientEffect(&store.Trigger{MIDINote: &note})
		require.NotNil(t, ce)
		require.NotNil(t, ce.MIDI)
		assert.Equal(t, uint8(60), ce.MIDI.Note)
		assert.Equal(t, uint8(100), ce.MIDI.Velocity)
		assert.Equal(t, uint8(1), ce.MIDI.Channel)
		assert.Equal(t, uint16(500), ce.MIDI.Duration)
	})

	t.Run("sound prefixed", func(t *testing.T) {
		ce := clientEffect(&store.Trigger{SoundFile: strp("boop.mp3")})
		require.NotNil(t, ce)
		require.NotNil(t, ce.Sound)
		assert.Equal(t, "sound/boop.mp3", ce.Sound.SoundFile)
		assert.Equal(t, "boop.mp3", ce.Sound.SoundName)
	})
}

func TestServerEffect(t *testing.T) {
	assert.Nil(t, serverEffect(&store.Trigger{}))

	se := serverEffect(&store.Trigger{WebhookURL: strp("https://example.com/hook")})
	require.NotNil(t, se)
	require.NotNil(t, se.Webhook)
	assert.Equal(t, "https://example.com/hook", se.Webhook.URL)
	assert.Nil(t, se.OSC)

	port := uint16(9000)
	se2 := serverEffect(&store.Trigger{
		OSCAddress: strp("127.0.0.1"),
		OSCPort:    &port,
		OSCPath:    strp("/boost"),
	})
	require.NotNil(t, se2)
	require.NotNil(t, se2.OSC)
	assert.Equal(t, uint16(9000), se2.OSC.Port)

	// Missing two of the three required OSC fields (and no webhook) means
	// no server effect at all.
	assert.Nil(t, serverEffect(&store.Trigger{OSCAddress: strp("127.0.0.1")}))
}
