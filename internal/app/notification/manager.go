// Package notification provides ordered fan-out of events to independent subscribers.
package notification

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultBufferSize is the per-subscriber channel capacity used when none is configured.
const DefaultBufferSize = 64

// Subscription is a single subscriber's view of the event stream.
// Events arrive on C in publish order. C is closed on Unsubscribe or Close.
type Subscription[T any] struct {
	ID string
	C  <-chan T

	ch      chan T
	dropped atomic.Uint64
}

// Dropped returns the number of events dropped because the subscriber was too slow.
func (s *Subscription[T]) Dropped() uint64 {
	return s.dropped.Load()
}

// Manager manages subscriptions and publishing.
type Manager[T any] struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription[T]
	order         []string // subscription IDs in subscribe order
	bufferSize    int
	closed        bool
}

// NewManager creates a new notification manager.
// bufferSize <= 0 selects DefaultBufferSize.
func NewManager[T any](bufferSize int) *Manager[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Manager[T]{
		subscriptions: make(map[string]*Subscription[T]),
		bufferSize:    bufferSize,
	}
}

// Subscribe adds a new subscription.
// Subscribing to a closed manager returns a subscription whose channel is already closed.
func (m *Manager[T]) Subscribe() *Subscription[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan T, m.bufferSize)
	sub := &Subscription[T]{
		ID: uuid.New().String(),
		C:  ch,
		ch: ch,
	}
	if m.closed {
		close(ch)
		return sub
	}

	m.subscriptions[sub.ID] = sub
	m.order = append(m.order, sub.ID)
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager[T]) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return
	}
	delete(m.subscriptions, subscriptionID)
	for i, id := range m.order {
		if id == subscriptionID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	close(sub.ch)
}

// Publish delivers an event to every subscriber without blocking.
// Callers must serialize Publish calls to keep a single order across subscribers.
// A subscriber whose buffer is full misses the event.
func (m *Manager[T]) Publish(event T) {
	m.publish(event, 0)
}

// PublishWait delivers an event like Publish but waits up to timeout, shared by all
// subscribers, for room in a full buffer before the event is dropped.
func (m *Manager[T]) PublishWait(event T, timeout time.Duration) {
	m.publish(event, timeout)
}

func (m *Manager[T]) publish(event T, timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		deadline <-chan time.Time
		expired  = timeout <= 0
	)
	for _, id := range m.order {
		sub := m.subscriptions[id]
		select {
		case sub.ch <- event:
			continue
		default:
		}

		if !expired {
			if deadline == nil {
				timer := time.NewTimer(timeout)
				defer timer.Stop()
				deadline = timer.C
			}
			select {
			case sub.ch <- event:
				continue
			case <-deadline:
				expired = true
			}
		}

		dropped := sub.dropped.Add(1)
		zlog.Warn().Msgf("notification: subscriber buffer full, event dropped: subscription=%s dropped=%d", sub.ID, dropped)
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager[T]) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes every subscription. Later Publish calls are no-ops.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, id := range m.order {
		close(m.subscriptions[id].ch)
	}
	m.subscriptions = make(map[string]*Subscription[T])
	m.order = nil
}
