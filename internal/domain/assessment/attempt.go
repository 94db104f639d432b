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

type AttemptKind string

const (
	AttemptPlacement AttemptKind = "placement"
	AttemptProgress  AttemptKind = "progress"
	AttemptPractice  AttemptKind = "practice"
)

func (k AttemptKind) Valid() bool {
	switch k {
	case AttemptPlacement, AttemptProgress, AttemptPractice:
		return true
	}
	return false
}

// Profile returns the scoring profile of the attempt flow.
func (k AttemptKind) Profile() core.ScoringProfile {
	switch k {
	case AttemptPractice:
		return core.PracticeProfile
	case AttemptPlacement:
		return core.PlacementProfile
	default:
		return core.ProgressProfile
	}
}

// Attempt is one graded submission. Summary columns are denormalized from
// Result for listing and history queries.
type Attempt struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index:idx_attempt_user_kind,priority:1" json:"user_id"`
	Kind   AttemptKind `gorm:"column:kind;not null;index:idx_attempt_user_kind,priority:2" json:"kind"`

	TestKey        string `gorm:"column:test_key" json:"test_key,omitempty"`
	Part           string `gorm:"column:part" json:"part,omitempty"`
	RequestedLevel int    `gorm:"column:requested_level" json:"requested_level,omitempty"`

	Total              int     `gorm:"column:total;not null" json:"total"`
	Correct            int     `gorm:"column:correct;not null" json:"correct"`
	Accuracy           float64 `gorm:"column:accuracy;not null" json:"accuracy"`
	Level              int     `gorm:"column:level;not null" json:"level"`
	PredictedOverall   int     `gorm:"column:predicted_overall;not null" json:"predicted_overall"`
	PredictedListening int     `gorm:"column:predicted_listening;not null" json:"predicted_listening"`
	PredictedReading   int     `gorm:"column:predicted_reading;not null" json:"predicted_reading"`

	Result datatypes.JSON `gorm:"column:result" json:"result"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Attempt) TableName() string { return "attempt" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// NewAttempt builds the row for a graded result.
func NewAttempt(userID uuid.UUID, kind AttemptKind, res *core.GradingResult, submittedAt time.Time) (*Attempt, error) {
	if res == nil {
		return nil, fmt.Errorf("nil grading result")
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode grading result: %w", err)
	}
	return &Attempt{
		UserID:             userID,
		Kind:               kind,
		Total:              res.Total,
		Correct:            res.Correct,
		Accuracy:           res.Acc,
		Level:              int(res.Level),
		PredictedOverall:   res.Predicted.Overall,
		PredictedListening: res.Predicted.Listening,
		PredictedReading:   res.Predicted.Reading,
		Result:             datatypes.JSON(raw),
		SubmittedAt:        submittedAt.UTC(),
	}, nil
}

// GradingResult decodes the stored result.
func (a *Attempt) GradingResult() (*core.GradingResult, error) {
	if a == nil || len(a.Result) == 0 {
		return nil, fmt.Errorf("attempt has no stored result")
	}
	var res core.GradingResult
	if err := json.Unmarshal(a.Result, &res); err != nil {
		return nil, fmt.Errorf("decode grading result: %w", err)
	}
	return &res, nil
}
