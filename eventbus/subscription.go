package eventbus

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/cogstream/errors"
	"github.com/c360/cogstream/pkg/buffer"
	"github.com/c360/cogstream/types"
)

// Subscription is one subscriber's handle on a topic. Events queue into a
// bounded ring buffer governed by the subscription's overflow policy; the
// consumer drains them at its own pace with Next or TryNext. A
// subscription has exactly one consumer.
type Subscription struct {
	id     uuid.UUID
	topic  string
	policy OverflowPolicy
	queue  *buffer.Ring[types.Event]
	notify chan struct{}
	bus    *Bus

	closeOnce sync.Once
	done      chan struct{}
}

// ID returns the subscription identifier.
func (s *Subscription) ID() uuid.UUID { return s.id }

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// Policy returns the subscription's overflow policy.
func (s *Subscription) Policy() OverflowPolicy { return s.policy }

// Pending returns the number of queued events awaiting the consumer.
func (s *Subscription) Pending() int { return s.queue.Size() }

// Dropped returns the number of events lost to the overflow policy over
// the subscription's lifetime.
func (s *Subscription) Dropped() int64 {
	return s.queue.Stats().Snapshot().Drops
}

// deliver enqueues an event per the overflow policy. Returns whether the
// new event was admitted and whether any event (new or evicted) was
// dropped. Never blocks.
func (s *Subscription) deliver(event types.Event) (admitted, dropped bool) {
	wasFull := s.queue.IsFull()
	ok, err := s.queue.Write(event)
	if err != nil {
		// Closed subscription still registered during teardown.
		return false, true
	}
	select {
	case s.notify <- struct{}{}:
	default:
	}
	return ok, wasFull
}

// Next blocks until an event is available, the context is canceled, or
// the subscription is closed. Events arrive in publish order.
func (s *Subscription) Next(ctx context.Context) (types.Event, error) {
	for {
		if event, ok := s.queue.Read(); ok {
			return event, nil
		}
		select {
		case <-s.notify:
		case <-s.doneCh():
			// Drain anything enqueued before close.
			if event, ok := s.queue.Read(); ok {
				return event, nil
			}
			return types.Event{}, errors.Wrap(errors.ErrSubscriberGone, "Subscription", "Next",
				"subscription closed")
		case <-ctx.Done():
			return types.Event{}, ctx.Err()
		}
	}
}

// TryNext returns the next queued event without blocking.
func (s *Subscription) TryNext() (types.Event, bool) {
	return s.queue.Read()
}

// Unsubscribe removes the subscription from the bus. Queued events not
// yet consumed are discarded.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s)
	s.shutdown()
}

func (s *Subscription) shutdown() {
	s.closeOnce.Do(func() {
		_ = s.queue.Close()
		s.queue.Clear()
		close(s.done)
	})
}

func (s *Subscription) doneCh() <-chan struct{} {
	return s.done
}
