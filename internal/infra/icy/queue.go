package icy

import (
	"sync"

	"github.com/osa030/radiotray/internal/domain/media"
)

// eventQueue delivers events in push order without ever blocking the producer.
type eventQueue struct {
	mu     sync.Mutex
	items  []media.Event
	notify chan struct{}

	out    chan media.Event
	closed chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		notify: make(chan struct{}, 1),
		out:    make(chan media.Event),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go q.forward()
	return q
}

func (q *eventQueue) push(ev media.Event) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// close stops delivery and closes the output channel. Undelivered events are dropped.
func (q *eventQueue) close() {
	q.once.Do(func() {
		close(q.closed)
		<-q.done
	})
}

func (q *eventQueue) forward() {
	defer close(q.done)
	defer close(q.out)

	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.notify:
				continue
			case <-q.closed:
				return
			}
		}
		ev := q.items[0]
		q.items[0] = media.Event{}
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- ev:
		case <-q.closed:
			return
		}
	}
}
