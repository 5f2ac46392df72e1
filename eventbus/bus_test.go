package eventbus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/cogstream/types"
)

func testEvent(topic string, seq int) types.Event {
	return types.Event{
		Topic:     topic,
		Payload:   map[string]any{"seq": seq},
		Timestamp: time.Now(),
	}
}

func seqOf(t *testing.T, ev types.Event) int {
	t.Helper()
	seq, ok := ev.Payload["seq"].(int)
	require.True(t, ok)
	return seq
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub, err := bus.Subscribe("test.topic")
	require.NoError(t, err)

	report := bus.Publish(testEvent("test.topic", 1))
	assert.Equal(t, 1, report.Subscribers)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, 0, report.Dropped)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := sub.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test.topic", ev.Topic)
	assert.Equal(t, 1, seqOf(t, ev))
}

func TestPublishNoSubscribers(t *testing.T) {
	bus := New()
	defer bus.Close()

	report := bus.Publish(testEvent("nobody.listening", 1))
	assert.Equal(t, 0, report.Subscribers)
	assert.Equal(t, 0, report.Delivered)
}

func TestTopicIsolation(t *testing.T) {
	bus := New()
	defer bus.Close()

	subA, err := bus.Subscribe("topic.a")
	require.NoError(t, err)
	subB, err := bus.Subscribe("topic.b")
	require.NoError(t, err)

	bus.Publish(testEvent("topic.a", 1))

	assert.Equal(t, 1, subA.Pending())
	assert.Equal(t, 0, subB.Pending())
}

func TestLatestPolicyKeepsLastN(t *testing.T) {
	bus := New()
	defer bus.Close()

	const capacity = 5
	sub, err := bus.Subscribe("overflow.test",
		WithQueueSize(capacity), WithPolicy(PolicyLatest))
	require.NoError(t, err)

	// Publish N+k without draining: the queue holds exactly the last N
	// events in publish order.
	for i := 1; i <= capacity+3; i++ {
		bus.Publish(testEvent("overflow.test", i))
	}

	assert.Equal(t, capacity, sub.Pending())
	for want := 4; want <= 8; want++ {
		ev, ok := sub.TryNext()
		require.True(t, ok)
		assert.Equal(t, want, seqOf(t, ev))
	}
	_, ok := sub.TryNext()
	assert.False(t, ok)
}

func TestRejectNewPolicyKeepsFirstN(t *testing.T) {
	bus := New()
	defer bus.Close()

	const capacity = 5
	sub, err := bus.Subscribe("overflow.test",
		WithQueueSize(capacity), WithPolicy(PolicyRejectNew))
	require.NoError(t, err)

	var rejected int
	for i := 1; i <= capacity+3; i++ {
		report := bus.Publish(testEvent("overflow.test", i))
		rejected += report.Dropped
	}

	assert.Equal(t, 3, rejected, "each overflowing publish reports non-delivery")
	assert.Equal(t, capacity, sub.Pending())
	for want := 1; want <= capacity; want++ {
		ev, ok := sub.TryNext()
		require.True(t, ok)
		assert.Equal(t, want, seqOf(t, ev))
	}
}

func TestIndependentSubscriberQueues(t *testing.T) {
	bus := New()
	defer bus.Close()

	slow, err := bus.Subscribe("shared", WithQueueSize(2), WithPolicy(PolicyRejectNew))
	require.NoError(t, err)
	fast, err := bus.Subscribe("shared", WithQueueSize(10), WithPolicy(PolicyLatest))
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		bus.Publish(testEvent("shared", i))
	}

	// The slow subscriber's overflow does not affect the fast one.
	assert.Equal(t, 2, slow.Pending())
	assert.Equal(t, 5, fast.Pending())
}

func TestNextBlocksUntilPublish(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub, err := bus.Subscribe("blocking.test")
	require.NoError(t, err)

	got := make(chan types.Event, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ev, err := sub.Next(ctx)
		if err == nil {
			got <- ev
		}
	}()

	time.Sleep(20 * time.Millisecond)
	bus.Publish(testEvent("blocking.test", 42))

	select {
	case ev := <-got:
		assert.Equal(t, 42, seqOf(t, ev))
	case <-time.After(time.Second):
		t.Fatal("consumer never received the event")
	}
}

func TestNextHonorsContextCancellation(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub, err := bus.Subscribe("cancel.test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sub.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnsubscribeDiscardsBacklog(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub, err := bus.Subscribe("bye.topic")
	require.NoError(t, err)
	bus.Publish(testEvent("bye.topic", 1))
	bus.Publish(testEvent("bye.topic", 2))

	sub.Unsubscribe()
	assert.Equal(t, 0, bus.SubscriberCount("bye.topic"))
	assert.Equal(t, 0, sub.Pending())

	// Publishes after unsubscribe reach nobody.
	report := bus.Publish(testEvent("bye.topic", 3))
	assert.Equal(t, 0, report.Subscribers)
}

func TestNextAfterCloseReturnsError(t *testing.T) {
	bus := New()
	sub, err := bus.Subscribe("close.test")
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = sub.Next(ctx)
	assert.Error(t, err)
}

func TestSubscribeAfterCloseFails(t *testing.T) {
	bus := New()
	require.NoError(t, bus.Close())

	_, err := bus.Subscribe("late.topic")
	assert.Error(t, err)
}

func TestSubscribeRejectsInvalidConfig(t *testing.T) {
	bus := New()
	defer bus.Close()

	_, err := bus.Subscribe("bad", WithQueueSize(0))
	assert.Error(t, err)

	_, err = bus.Subscribe("bad", WithPolicy(OverflowPolicy("block-forever")))
	assert.Error(t, err)
}

func TestPublishOrderPreserved(t *testing.T) {
	bus := New()
	defer bus.Close()

	sub, err := bus.Subscribe("ordered", WithQueueSize(100))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		bus.Publish(testEvent("ordered", i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 50; i++ {
		ev, err := sub.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, seqOf(t, ev))
	}
}

func TestConcurrentPublishersNeverBlock(t *testing.T) {
	bus := New()
	defer bus.Close()

	// Tiny queue with no consumer: publishers still complete immediately.
	sub, err := bus.Subscribe("pressure", WithQueueSize(1), WithPolicy(PolicyLatest))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				bus.Publish(testEvent("pressure", p*1000+i))
			}
		}(p)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishers blocked under backpressure")
	}

	assert.Equal(t, 1, sub.Pending())
	assert.Greater(t, sub.Dropped(), int64(0))
}

func TestTopics(t *testing.T) {
	bus := New()
	defer bus.Close()

	for i := 0; i < 3; i++ {
		_, err := bus.Subscribe(fmt.Sprintf("topic.%d", i))
		require.NoError(t, err)
	}

	assert.Len(t, bus.Topics(), 3)
}
