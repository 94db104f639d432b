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

type EligibilityService interface {
	Check(ctx context.Context, userID uuid.UUID) (core.Eligibility, error)
	// Acknowledge records that the learner saw the suggestion. It never
	// changes eligibility.
	Acknowledge(ctx context.Context, userID uuid.UUID) (core.Eligibility, error)
}

type eligibilityService struct {
	db          *gorm.DB
	log         *logger.Logger
	attemptRepo repos.AttemptRepo
	profileRepo repos.LearnerProfileRepo
	eventBus    bus.Bus
	window      time.Duration
	clock       Clock
}

func NewEligibilityService(
	db *gorm.DB,
	log *logger.Logger,
	attemptRepo repos.AttemptRepo,
	profileRepo repos.LearnerProfileRepo,
	eventBus bus.Bus,
	window time.Duration,
	clock Clock,
) EligibilityService {
	serviceLog := log.With("service", "EligibilityService")
	if window <= 0 {
		window = core.DefaultEligibilityWindow
	}
	if eventBus == nil {
		eventBus = bus.NewNoopBus()
	}
	return &eligibilityService{
		db:          db,
		log:         serviceLog,
		attemptRepo: attemptRepo,
		profileRepo: profileRepo,
		eventBus:    eventBus,
		window:      window,
		clock:       clockOrSystem(clock),
	}
}

func (s *eligibilityService) Check(ctx context.Context, userID uuid.UUID) (res core.Eligibility, err error) {
	ctx, span := tracer.Start(ctx, "EligibilityService.Check")
	defer func() { endSpan(span, err) }()

	var (
		lastPractice *time.Time
		lastProgress *time.Time
		profile      *types.LearnerProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		at, err := s.attemptRepo.LatestSubmittedAt(gctx, nil, userID, types.AttemptPractice)
		if err != nil {
			return fmt.Errorf("latest practice: %w", err)
		}
		lastPractice = at
		return nil
	})
	g.Go(func() error {
		at, err := s.attemptRepo.LatestSubmittedAt(gctx, nil, userID, types.AttemptProgress)
		if err != nil {
			return fmt.Errorf("latest progress: %w", err)
		}
		lastProgress = at
		return nil
	})
	g.Go(func() error {
		p, err := s.profileRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("learner profile: %w", err)
		}
		profile = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Eligibility{}, err
	}

	res = evaluateEligibility(lastPractice, lastProgress, profile, s.window, s.clock())
	span.SetAttributes(attribute.String("eligibility.reason", string(res.Reason)))
	observability.Current().IncEligibility(string(res.Reason))
	return res, nil
}

func (s *eligibilityService) Acknowledge(ctx context.Context, userID uuid.UUID) (core.Eligibility, error) {
	now := s.clock()
	if _, err := s.profileRepo.MarkSuggested(ctx, nil, userID, now); err != nil {
		return core.Eligibility{}, fmt.Errorf("mark suggested: %w", err)
	}
	res, err := s.Check(ctx, userID)
	if err != nil {
		return core.Eligibility{}, err
	}
	publish(ctx, s.log, s.eventBus, realtime.EventProgressAcknowledged, userID, now, res)
	return res, nil
}

// eligibilityInTx evaluates the gate from inside a write transaction, so the
// decision and the attempt insert see the same history.
func eligibilityInTx(
	ctx context.Context,
	tx *gorm.DB,
	attemptRepo repos.AttemptRepo,
	profileRepo repos.LearnerProfileRepo,
	userID uuid.UUID,
	window time.Duration,
	now time.Time,
) (core.Eligibility, error) {
	lastPractice, err := attemptRepo.LatestSubmittedAt(ctx, tx, userID, types.AttemptPractice)
	if err != nil {
		return core.Eligibility{}, fmt.Errorf("latest practice: %w", err)
	}
	lastProgress, err := attemptRepo.LatestSubmittedAt(ctx, tx, userID, types.AttemptProgress)
	if err != nil {
		return core.Eligibility{}, fmt.Errorf("latest progress: %w", err)
	}
	profile, err := profileRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return core.Eligibility{}, fmt.Errorf("learner profile: %w", err)
	}
	return evaluateEligibility(lastPractice, lastProgress, profile, window, now), nil
}

func evaluateEligibility(lastPractice, lastProgress *time.Time, profile *types.LearnerProfile, window time.Duration, now time.Time) core.Eligibility {
	in := core.EligibilityInput{
		LastProgressAt: lastProgress,
		Window:         window,
		Now:            now,
	}
	if lastPractice != nil {
		in.PracticeAt = []time.Time{*lastPractice}
	}
	if profile != nil {
		in.LastSuggestedAt = profile.LastSuggestedAt
	}
	return core.EvaluateEligibility(in)
}
