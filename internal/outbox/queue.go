package outbox

import (
	"context"
	"sync"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// MemoryQueue is an in-process Outbox used by engine tests, recording every
// published event in a mutex-guarded slice for assertion instead of putting
// it on the wire.
type MemoryQueue struct {
	mu        sync.Mutex
	published []nostrevent.OutgoingEvent
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Publish(ctx context.Context, ev nostrevent.OutgoingEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, ev)
	return nil
}

// Events returns a snapshot of every event published so far, in order.
func (q *MemoryQueue) Events() []nostrevent.OutgoingEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]nostrevent.OutgoingEvent, len(q.published))
	copy(out, q.published)
	return out
}
