package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	"github.com/toeiclab/toeic-backend/internal/platform/apierr"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.Attempt) error
	GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Attempt, error)
	// ListByUser returns newest first; an empty kind matches every kind.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind, limit int) ([]*types.Attempt, error)
	LatestSubmittedAt(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind) (*time.Time, error)
	ExistsByKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind) (bool, error)
	// ListStaleRecommendationUsers finds learners with a practice attempt newer
	// than their stored recommendation snapshot (or with no snapshot at all).
	ListStaleRecommendationUsers(ctx context.Context, tx *gorm.DB, limit int) ([]uuid.UUID, error)
}

type attemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	repoLog := baseLog.With("repo", "AttemptRepo")
	return &attemptRepo{db: db, log: repoLog}
}

func (r *attemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.Attempt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if attempt == nil {
		return fmt.Errorf("nil attempt")
	}
	return transaction.WithContext(ctx).Create(attempt).Error
}

func (r *attemptRepo) GetByIDForUser(ctx context.Context, tx *gorm.DB, id, userID uuid.UUID) (*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Attempt
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("attempt %s: %w", id, apierr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *attemptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind, limit int) ([]*types.Attempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Attempt
	if userID == uuid.Nil {
		return results, nil
	}

	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("submitted_at DESC, created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attemptRepo) LatestSubmittedAt(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind) (*time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []*types.Attempt
	if err := transaction.WithContext(ctx).
		Select("id", "submitted_at").
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("submitted_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	at := rows[0].SubmittedAt.UTC()
	return &at, nil
}

func (r *attemptRepo) ExistsByKind(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind types.AttemptKind) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Attempt{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *attemptRepo) ListStaleRecommendationUsers(ctx context.Context, tx *gorm.DB, limit int) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&types.Attempt{}).
		Joins("LEFT JOIN learner_profile ON learner_profile.user_id = attempt.user_id").
		Where("attempt.kind = ?", types.AttemptPractice).
		Where("(learner_profile.recommendation_at IS NULL OR attempt.submitted_at > learner_profile.recommendation_at)")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []uuid.UUID
	if err := q.Distinct().Pluck("attempt.user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
