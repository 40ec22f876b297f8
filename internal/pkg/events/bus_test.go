package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesPublished(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicOrderSynced)
	defer unsubscribe()

	bus.Publish(Event{Topic: TopicOrderSynced, LocalID: "abc", ServerID: 42})

	select {
	case ev := <-ch:
		assert.Equal(t, "abc", ev.LocalID)
		assert.Equal(t, uint(42), ev.ServerID)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicOrderStatusChanged)
	defer unsubscribe()

	bus.Publish(Event{Topic: TopicOrderSynced, LocalID: "abc"})

	select {
	case <-ch:
		t.Fatal("event leaked across topics")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(TopicOrderSynced)
	unsubscribe()

	_, open := <-ch
	require.False(t, open)

	// Publishing after teardown must not panic
	bus.Publish(Event{Topic: TopicOrderSynced})
	// Unsubscribing twice must not panic either
	unsubscribe()
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus()
	_, unsubscribe := bus.Subscribe(TopicOrderSynced)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(Event{Topic: TopicOrderSynced})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}
