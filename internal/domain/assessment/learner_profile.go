package assessment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	core "github.com/toeiclab/toeic-backend/internal/modules/assessment"
)

// LearnerProfile holds the per-learner recommendation snapshot and the
// progress-test suggestion acknowledgement.
type LearnerProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	PartAccuracy           datatypes.JSON `gorm:"column:part_accuracy" json:"part_accuracy"`
	PartLevels             datatypes.JSON `gorm:"column:part_levels" json:"part_levels"`
	PredictedOverall       int            `gorm:"column:predicted_overall;not null;default:0" json:"predicted_overall"`
	PredictedListening     int            `gorm:"column:predicted_listening;not null;default:0" json:"predicted_listening"`
	PredictedReading       int            `gorm:"column:predicted_reading;not null;default:0" json:"predicted_reading"`
	RecommendationAttempts int            `gorm:"column:recommendation_attempts;not null;default:0" json:"recommendation_attempts"`
	RecommendationAt       *time.Time     `gorm:"column:recommendation_at" json:"recommendation_at,omitempty"`

	// UI suppression only; eligibility never reads it as a gate.
	LastSuggestedAt *time.Time `gorm:"column:last_suggested_at" json:"last_suggested_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LearnerProfile) TableName() string { return "learner_profile" }

func (p *LearnerProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewRecommendationProfile builds the row carrying a fresh snapshot.
func NewRecommendationProfile(userID uuid.UUID, rec core.Recommendation, at time.Time) (*LearnerProfile, error) {
	acc, err := json.Marshal(rec.PartAccuracy)
	if err != nil {
		return nil, fmt.Errorf("encode part accuracy: %w", err)
	}
	levels, err := json.Marshal(rec.PartLevels)
	if err != nil {
		return nil, fmt.Errorf("encode part levels: %w", err)
	}
	at = at.UTC()
	return &LearnerProfile{
		UserID:                 userID,
		PartAccuracy:           datatypes.JSON(acc),
		PartLevels:             datatypes.JSON(levels),
		PredictedOverall:       rec.Predicted.Overall,
		PredictedListening:     rec.Predicted.Listening,
		PredictedReading:       rec.Predicted.Reading,
		RecommendationAttempts: rec.Attempts,
		RecommendationAt:       &at,
	}, nil
}

// HasRecommendation reports whether a snapshot was ever stored.
func (p *LearnerProfile) HasRecommendation() bool {
	return p != nil && p.RecommendationAt != nil
}

// Recommendation decodes the stored snapshot.
func (p *LearnerProfile) Recommendation() (core.Recommendation, error) {
	rec := core.Recommendation{
		PartAccuracy: map[core.Part]float64{},
		PartLevels:   map[core.Part]core.Level{},
	}
	if p == nil {
		return rec, nil
	}
	if len(p.PartAccuracy) > 0 {
		if err := json.Unmarshal(p.PartAccuracy, &rec.PartAccuracy); err != nil {
			return rec, fmt.Errorf("decode part accuracy: %w", err)
		}
	}
	if len(p.PartLevels) > 0 {
		if err := json.Unmarshal(p.PartLevels, &rec.PartLevels); err != nil {
			return rec, fmt.Errorf("decode part levels: %w", err)
		}
	}
	rec.Predicted = core.Prediction{
		Overall:   p.PredictedOverall,
		Listening: p.PredictedListening,
		Reading:   p.PredictedReading,
	}
	rec.Attempts = p.RecommendationAttempts
	return rec, nil
}
