package bus

import (
	"context"
	"sync"

	"github.com/toeiclab/toeic-backend/internal/realtime"
)

// MemoryBus keeps published events in process. Tests read them back with
// Events.
type MemoryBus struct {
	mu     sync.Mutex
	events []realtime.Event
	closed bool
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(ctx context.Context, ev realtime.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *MemoryBus) Events() []realtime.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]realtime.Event, len(b.events))
	copy(out, b.events)
	return out
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
