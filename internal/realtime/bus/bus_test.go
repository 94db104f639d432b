package bus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime"
)

func TestMemoryBusConcurrentPublish(t *testing.T) {
	b := NewMemoryBus()
	user := uuid.New()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev, err := realtime.NewEvent(realtime.EventAttemptGraded, user, at, map[string]int{"seq": i})
			if err != nil {
				t.Errorf("NewEvent: %v", err)
				return
			}
			if err := b.Publish(context.Background(), ev); err != nil {
				t.Errorf("Publish: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := len(b.Events()); got != 20 {
		t.Fatalf("events: want=20 got=%d", got)
	}

	_ = b.Close()
	ev, _ := realtime.NewEvent(realtime.EventAttemptGraded, user, at, nil)
	_ = b.Publish(context.Background(), ev)
	if got := len(b.Events()); got != 20 {
		t.Fatalf("publish after close should be dropped, got=%d", got)
	}
}

func TestEventEnvelope(t *testing.T) {
	user := uuid.New()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	ev, err := realtime.NewEvent(realtime.EventRecommendationUpdated, user, at, map[string]int{"attempts": 3})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["type"] != "recommendation.updated" || m["userId"] != user.String() {
		t.Fatalf("envelope: %s", raw)
	}
	if m["at"] != "2024-01-02T02:04:05Z" {
		t.Fatalf("at should be UTC, got %v", m["at"])
	}
	if d, ok := m["data"].(map[string]any); !ok || d["attempts"] != float64(3) {
		t.Fatalf("data: %v", m["data"])
	}
}

func TestNewRedisBusValidation(t *testing.T) {
	if _, err := NewRedisBus(RedisConfig{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
	if _, err := NewRedisBus(RedisConfig{}, logger.Nop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if err := NewNoopBus().Publish(context.Background(), realtime.Event{}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}
