package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

const defaultSweepTimeout = 5 * time.Minute

// StaleRefresher repairs recommendation snapshots that lag behind practice
// history.
type StaleRefresher interface {
	RefreshStale(ctx context.Context) (int, error)
}

type Scheduler struct {
	log       *logger.Logger
	refresher StaleRefresher
	interval  time.Duration
	timeout   time.Duration

	mu        sync.Mutex
	scheduler *gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(log *logger.Logger, refresher StaleRefresher, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:       log.With("component", "Scheduler"),
		refresher: refresher,
		interval:  interval,
		timeout:   defaultSweepTimeout,
	}
}

// Start schedules the sweep every interval. A non-positive interval leaves
// the scheduler idle. Overlapping runs are skipped.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || s.refresher == nil {
		s.log.Info("recommendation sweep disabled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	if _, err := sched.Every(s.interval).WaitForSchedule().Do(s.runRefresh); err != nil {
		s.cancel()
		return fmt.Errorf("schedule recommendation sweep: %w", err)
	}
	sched.StartAsync()
	s.scheduler = sched
	s.log.Info("recommendation sweep scheduled", "interval", s.interval.String())
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return
	}
	s.cancel()
	s.scheduler.Stop()
	s.scheduler = nil
}

func (s *Scheduler) runRefresh() {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	n, err := s.refresher.RefreshStale(ctx)
	if err != nil {
		s.log.Error("recommendation sweep failed", "error", err, "refreshed", n)
		return
	}
	if n > 0 {
		s.log.Info("recommendation sweep done", "refreshed", n, "duration_ms", time.Since(start).Milliseconds())
	}
}
