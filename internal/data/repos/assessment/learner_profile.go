package assessment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	types "github.com/toeiclab/toeic-backend/internal/domain"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearnerProfileRepo interface {
	// GetByUserID returns nil without error when the learner has no profile.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error)
	// UpsertRecommendation replaces the snapshot columns and leaves the
	// acknowledgement untouched.
	UpsertRecommendation(ctx context.Context, tx *gorm.DB, profile *types.LearnerProfile) error
	MarkSuggested(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) (*types.LearnerProfile, error)
}

type learnerProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerProfileRepo(db *gorm.DB, baseLog *logger.Logger) LearnerProfileRepo {
	repoLog := baseLog.With("repo", "LearnerProfileRepo")
	return &learnerProfileRepo{db: db, log: repoLog}
}

func (r *learnerProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.LearnerProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []*types.LearnerProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *learnerProfileRepo) UpsertRecommendation(ctx context.Context, tx *gorm.DB, profile *types.LearnerProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if profile == nil || profile.UserID == uuid.Nil {
		return fmt.Errorf("profile with user id required")
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"part_accuracy",
				"part_levels",
				"predicted_overall",
				"predicted_listening",
				"predicted_reading",
				"recommendation_attempts",
				"recommendation_at",
				"updated_at",
			}),
		}).
		Create(profile).Error
}

func (r *learnerProfileRepo) MarkSuggested(ctx context.Context, tx *gorm.DB, userID uuid.UUID, at time.Time) (*types.LearnerProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	at = at.UTC()
	row := &types.LearnerProfile{UserID: userID, LastSuggestedAt: &at}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_suggested_at", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, transaction, userID)
}
