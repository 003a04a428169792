package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(Event{Kind: "boost", Payload: 42})

	select {
	case evt := <-ch:
		assert.Equal(t, "boost", evt.Kind)
		assert.Equal(t, 42, evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublishFansOutToMultipleSubscribers(t *testing.T) {
	b := New()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(Event{Kind: "balance"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			assert.Equal(t, "balance", evt.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	b := New()
	done := make(chan struct{})
	go func() {
		b.Publish(Event{Kind: "stream"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestPublishDropsEventsWhenSubscriberBufferIsFull(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	// Fill the subscriber's buffer (capacity 32) without draining it, then
	// publish one more: Publish must not block even though the buffer is full.
	for i := 0; i < 40; i++ {
		b.Publish(Event{Kind: "boost", Payload: i})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			assert.Equal(t, 32, drained)
			return
		}
	}
}

func TestUnsubscribeClosesChannelAndStopsDelivery(t *testing.T) {
	b := New()
	ch, unsubscribe := b.Subscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	// Publishing after unsubscribe must not panic (no send on closed channel).
	assert.NotPanics(t, func() { b.Publish(Event{Kind: "boost"}) })
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := New()
	_, unsubscribe := b.Subscribe()
	unsubscribe()
	assert.NotPanics(t, unsubscribe)
}

func TestSubscribeConcurrentAccess(t *testing.T) {
	b := New()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			_, unsubscribe := b.Subscribe()
			defer unsubscribe()
			b.Publish(Event{Kind: "concurrent"})
		}()
	}
	go func() { close(done) }()
	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}
