package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
)

// publish is best effort: the write it reports on has already committed.
func publish(ctx context.Context, log *logger.Logger, b bus.Bus, typ realtime.EventType, userID uuid.UUID, at time.Time, data any) {
	ev, err := realtime.NewEvent(typ, userID, at, data)
	if err != nil {
		log.Warn("encode event failed", "event", string(typ), "error", err)
		return
	}
	if err := b.Publish(ctx, ev); err != nil {
		observability.Current().IncEventPublishFailure(string(typ))
		log.Warn("publish event failed", "event", string(typ), "user_id", userID.String(), "error", err)
	}
}
