package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/metrics"
	"github.com/oshokin/hifi-grabber/internal/model"
)

// DefaultBuffer is the subscription buffer used when none is requested.
const DefaultBuffer = 64

// EventType is the kind of a job event.
type EventType string

const (
	// EventJobChanged is sent whenever an active job's state changes.
	EventJobChanged EventType = "job-changed"
	// EventJobRemoved is sent when a job leaves the active set.
	EventJobRemoved EventType = "job-removed"
)

// Event is a single job state change.
type Event struct {
	Type      EventType  `json:"type"`
	JobID     string     `json:"jobId"`
	Job       *model.Job `json:"job,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Publisher accepts job events.
type Publisher interface {
	Publish(event Event)
}

// Subscription receives events on C until it is unsubscribed or the hub is closed.
type Subscription struct {
	// C delivers events. It is closed when the subscription ends.
	C <-chan Event

	ch   chan Event
	once sync.Once
}

// Hub owns the set of listeners.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscription]struct{}
	closed      bool
	metrics     *metrics.Metrics
}

// NewHub creates an empty hub. m may be nil.
func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		subscribers: make(map[*Subscription]struct{}),
		metrics:     m,
	}
}

// Subscribe registers a listener with the given buffer size.
// Subscribing to a closed hub returns an already closed subscription.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		sub.close()

		return sub
	}

	h.subscribers[sub] = struct{}{}

	return sub
}

// Unsubscribe removes the listener and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()

	sub.close()
}

// Publish delivers the event to every listener without blocking.
// A listener whose buffer is full misses the event.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers {
		select {
		case sub.ch <- event:
		default:
			h.metrics.EventDropped()
			logger.Debugf(context.Background(), "Listener buffer is full, %s event for job %s dropped", event.Type, event.JobID)
		}
	}
}

// Len returns the number of listeners.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers)
}

// Close unsubscribes every listener. Later publishes are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		sub.close()
	}
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.ch)
	})
}
