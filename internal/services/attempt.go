package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/apierr"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
)

const (
	CodePlacementTaken      = "placement_already_taken"
	CodeProgressNotEligible = "progress_not_eligible"

	maxAttemptListLimit = 100
)

// SubmitInput is one submission as the client sends it. Items are resolved
// from ItemIDs when given, else from the Part/Level/TestKey filter, else from
// the keys of Answers.
type SubmitInput struct {
	TestKey string            `json:"test"`
	Part    string            `json:"part"`
	Level   int               `json:"level"`
	ItemIDs []string          `json:"itemIds"`
	Answers map[string]string `json:"answers"`
}

type SubmitResult struct {
	Attempt        *types.Attempt          `json:"attempt"`
	Result         *core.GradingResult     `json:"result"`
	Recommendation *RecommendationSnapshot `json:"recommendation,omitempty"`
}

type AttemptService interface {
	Submit(ctx context.Context, userID uuid.UUID, kind types.AttemptKind, in SubmitInput) (*SubmitResult, error)
	Get(ctx context.Context, userID, attemptID uuid.UUID) (*types.Attempt, error)
	List(ctx context.Context, userID uuid.UUID, kind types.AttemptKind, limit int) ([]*types.Attempt, error)
}

type attemptService struct {
	db              *gorm.DB
	log             *logger.Logger
	itemRepo        repos.ItemRepo
	attemptRepo     repos.AttemptRepo
	profileRepo     repos.LearnerProfileRepo
	recommendations RecommendationService
	eventBus        bus.Bus
	window          time.Duration
	clock           Clock
}

func NewAttemptService(
	db *gorm.DB,
	log *logger.Logger,
	itemRepo repos.ItemRepo,
	attemptRepo repos.AttemptRepo,
	profileRepo repos.LearnerProfileRepo,
	recommendations RecommendationService,
	eventBus bus.Bus,
	window time.Duration,
	clock Clock,
) AttemptService {
	serviceLog := log.With("service", "AttemptService")
	if window <= 0 {
		window = core.DefaultEligibilityWindow
	}
	if eventBus == nil {
		eventBus = bus.NewNoopBus()
	}
	return &attemptService{
		db:              db,
		log:             serviceLog,
		itemRepo:        itemRepo,
		attemptRepo:     attemptRepo,
		profileRepo:     profileRepo,
		recommendations: recommendations,
		eventBus:        eventBus,
		window:          window,
		clock:           clockOrSystem(clock),
	}
}

func (s *attemptService) Submit(ctx context.Context, userID uuid.UUID, kind types.AttemptKind, in SubmitInput) (out *SubmitResult, err error) {
	ctx, span := tracer.Start(ctx, "AttemptService.Submit")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.String("attempt.kind", string(kind)))

	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user: %w", apierr.ErrUnauthorized)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown attempt kind %q", core.ErrInvalidInput, kind)
	}
	if len(in.Answers) == 0 {
		return nil, fmt.Errorf("%w: empty answer set", core.ErrInvalidInput)
	}
	if in.Level < 0 || in.Level > int(core.MaxLevel) {
		return nil, fmt.Errorf("%w: level %d out of range", core.ErrInvalidInput, in.Level)
	}

	var part core.Part
	if strings.TrimSpace(in.Part) != "" {
		part, err = core.ParsePart(in.Part)
		if err != nil {
			return nil, err
		}
	}
	if kind == types.AttemptPractice && part == "" {
		return nil, fmt.Errorf("%w: practice attempts require a part", core.ErrInvalidInput)
	}

	now := s.clock()
	out = &SubmitResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkPreconditions(ctx, tx, userID, kind, now); err != nil {
			return err
		}

		items, order, err := s.resolveItems(ctx, tx, in, part)
		if err != nil {
			return err
		}
		coreItems := make([]core.Item, 0, len(items))
		for _, it := range items {
			coreItems = append(coreItems, it.Core())
		}

		res, err := core.Grade(core.GradeInput{
			Answers: core.AnswerSet(in.Answers),
			Items:   coreItems,
			Order:   order,
		}, kind.Profile())
		if err != nil {
			return err
		}

		row, err := types.NewAttempt(userID, kind, res, now)
		if err != nil {
			return err
		}
		row.TestKey = strings.TrimSpace(in.TestKey)
		row.Part = string(part)
		row.RequestedLevel = in.Level
		if err := s.attemptRepo.Create(ctx, tx, row); err != nil {
			return fmt.Errorf("store attempt: %w", err)
		}
		out.Attempt = row
		out.Result = res

		if kind == types.AttemptPractice {
			snap, err := s.recommendations.Recompute(ctx, tx, userID)
			if err != nil {
				return err
			}
			out.Recommendation = snap
		}
		return nil
	})
	if err != nil {
		if status, code := apierr.StatusOf(err); status == http.StatusConflict {
			observability.Current().IncAttemptRejected(string(kind), code)
		}
		return nil, err
	}

	metrics := observability.Current()
	metrics.ObserveAttempt(string(kind), out.Attempt.Level, out.Result.Acc)
	if out.Recommendation != nil {
		metrics.AddRecommendationRefresh("practice", 1)
	}
	s.log.Info("attempt graded",
		"user_id", userID.String(),
		"attempt_id", out.Attempt.ID.String(),
		"kind", string(kind),
		"total", out.Result.Total,
		"correct", out.Result.Correct,
	)
	publish(ctx, s.log, s.eventBus, realtime.EventAttemptGraded, userID, now, gradedEvent(out.Attempt))
	if out.Recommendation != nil {
		publish(ctx, s.log, s.eventBus, realtime.EventRecommendationUpdated, userID, now, out.Recommendation)
	}
	return out, nil
}

func (s *attemptService) checkPreconditions(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind, now time.Time) error {
	switch kind {
	case types.AttemptPlacement:
		taken, err := s.attemptRepo.ExistsByKind(ctx, tx, userID, types.AttemptPlacement)
		if err != nil {
			return fmt.Errorf("check placement: %w", err)
		}
		if taken {
			return apierr.New(http.StatusConflict, CodePlacementTaken,
				fmt.Errorf("placement test already taken: %w", apierr.ErrConflict))
		}
	case types.AttemptProgress:
		el, err := eligibilityInTx(ctx, tx, s.attemptRepo, s.profileRepo, userID, s.window, now)
		if err != nil {
			return err
		}
		if !el.Eligible {
			return apierr.New(http.StatusConflict, CodeProgressNotEligible,
				fmt.Errorf("progress test not available (%s): %w", el.Reason, apierr.ErrConflict))
		}
	}
	return nil
}

func (s *attemptService) resolveItems(ctx context.Context, tx *gorm.DB, in SubmitInput, part core.Part) ([]*types.Item, []string, error) {
	if keys := cleanKeys(in.ItemIDs); len(keys) > 0 {
		items, err := s.itemRepo.GetByKeys(ctx, tx, keys)
		if err != nil {
			return nil, nil, fmt.Errorf("load items: %w", err)
		}
		return items, keys, nil
	}

	if part != "" || strings.TrimSpace(in.TestKey) != "" {
		items, err := s.itemRepo.Find(ctx, tx, types.ItemFilter{
			Part:    string(part),
			Level:   in.Level,
			TestKey: in.TestKey,
		}, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("find items: %w", err)
		}
		return items, nil, nil
	}

	keys := make([]string, 0, len(in.Answers))
	for k := range in.Answers {
		keys = append(keys, k)
	}
	items, err := s.itemRepo.GetByKeys(ctx, tx, cleanKeys(keys))
	if err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil, nil
}

func (s *attemptService) Get(ctx context.Context, userID, attemptID uuid.UUID) (*types.Attempt, error) {
	return s.attemptRepo.GetByIDForUser(ctx, nil, attemptID, userID)
}

func (s *attemptService) List(ctx context.Context, userID uuid.UUID, kind types.AttemptKind, limit int) ([]*types.Attempt, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown attempt kind %q", core.ErrInvalidInput, kind)
	}
	if limit <= 0 || limit > maxAttemptListLimit {
		limit = core.DefaultHistoryLimit
	}
	return s.attemptRepo.ListByUser(ctx, nil, userID, kind, limit)
}

func cleanKeys(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func gradedEvent(a *types.Attempt) map[string]any {
	return map[string]any{
		"attemptId": a.ID.String(),
		"kind":      string(a.Kind),
		"total":     a.Total,
		"correct":   a.Correct,
		"accuracy":  a.Accuracy,
		"level":     a.Level,
		"predicted": core.Prediction{
			Overall:   a.PredictedOverall,
			Listening: a.PredictedListening,
			Reading:   a.PredictedReading,
		},
	}
}
