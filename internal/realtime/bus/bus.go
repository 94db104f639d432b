package bus

import (
	"context"

	"github.com/toeiclab/toeic-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when no broker is configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(ctx context.Context, ev realtime.Event) error { return nil }
func (noopBus) Close() error                                         { return nil }
