package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
)

const (
	staleSweepBatch       = 500
	staleSweepConcurrency = 4
)

// RecommendationSnapshot is a recommendation plus when it was computed.
type RecommendationSnapshot struct {
	core.Recommendation
	ComputedAt *time.Time `json:"computedAt,omitempty"`
}

type RecommendationService interface {
	// Get returns the stored snapshot, computing one when none exists.
	Get(ctx context.Context, userID uuid.UUID) (*RecommendationSnapshot, error)
	Recompute(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*RecommendationSnapshot, error)
	// RefreshStale recomputes snapshots older than the learner's latest
	// practice attempt and returns how many were refreshed.
	RefreshStale(ctx context.Context) (int, error)
}

type recommendationService struct {
	db           *gorm.DB
	log          *logger.Logger
	attemptRepo  repos.AttemptRepo
	profileRepo  repos.LearnerProfileRepo
	eventBus     bus.Bus
	historyLimit int
	clock        Clock
}

func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	attemptRepo repos.AttemptRepo,
	profileRepo repos.LearnerProfileRepo,
	eventBus bus.Bus,
	historyLimit int,
	clock Clock,
) RecommendationService {
	serviceLog := log.With("service", "RecommendationService")
	if historyLimit <= 0 {
		historyLimit = core.DefaultHistoryLimit
	}
	if eventBus == nil {
		eventBus = bus.NewNoopBus()
	}
	return &recommendationService{
		db:           db,
		log:          serviceLog,
		attemptRepo:  attemptRepo,
		profileRepo:  profileRepo,
		eventBus:     eventBus,
		historyLimit: historyLimit,
		clock:        clockOrSystem(clock),
	}
}

func (s *recommendationService) Get(ctx context.Context, userID uuid.UUID) (*RecommendationSnapshot, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load learner profile: %w", err)
	}
	if profile.HasRecommendation() {
		rec, err := profile.Recommendation()
		if err != nil {
			return nil, err
		}
		return &RecommendationSnapshot{Recommendation: rec, ComputedAt: profile.RecommendationAt}, nil
	}
	return s.Recompute(ctx, nil, userID)
}

func (s *recommendationService) Recompute(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (snap *RecommendationSnapshot, err error) {
	ctx, span := tracer.Start(ctx, "RecommendationService.Recompute")
	defer func() { endSpan(span, err) }()

	history, err := s.attemptRepo.ListByUser(ctx, tx, userID, types.AttemptPractice, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load practice history: %w", err)
	}
	accs := make([]core.PartAccuracies, 0, len(history))
	for _, a := range history {
		res, err := a.GradingResult()
		if err != nil {
			s.log.Warn("skipping attempt with unreadable result", "attempt_id", a.ID.String(), "error", err)
			continue
		}
		accs = append(accs, res.PartAccuracies())
	}

	rec := core.Recommend(accs)
	span.SetAttributes(attribute.Int("recommendation.attempts", rec.Attempts))
	if rec.Attempts == 0 {
		return &RecommendationSnapshot{Recommendation: rec}, nil
	}

	now := s.clock()
	profile, err := types.NewRecommendationProfile(userID, rec, now)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpsertRecommendation(ctx, tx, profile); err != nil {
		return nil, fmt.Errorf("store recommendation: %w", err)
	}
	return &RecommendationSnapshot{Recommendation: rec, ComputedAt: profile.RecommendationAt}, nil
}

func (s *recommendationService) RefreshStale(ctx context.Context) (n int, err error) {
	ctx, span := tracer.Start(ctx, "RecommendationService.RefreshStale")
	defer func() { endSpan(span, err) }()

	ids, err := s.attemptRepo.ListStaleRecommendationUsers(ctx, nil, staleSweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale learners: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	snaps := make([]*RecommendationSnapshot, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(staleSweepConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			snap, err := s.Recompute(gctx, nil, id)
			if err != nil {
				return fmt.Errorf("recompute %s: %w", id, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	now := s.clock()
	for i, id := range ids {
		publish(ctx, s.log, s.eventBus, realtime.EventRecommendationUpdated, id, now, snaps[i])
	}
	span.SetAttributes(attribute.Int("recommendation.refreshed", len(ids)))
	observability.Current().AddRecommendationRefresh("sweep", len(ids))
	s.log.Info("refreshed stale recommendations", "count", len(ids))
	return len(ids), nil
}
