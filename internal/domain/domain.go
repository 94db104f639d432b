package domain

import "github.com/toeiclab/toeic-backend/internal/domain/assessment"

type (
	Item           = assessment.Item
	ItemFilter     = assessment.ItemFilter
	Attempt        = assessment.Attempt
	AttemptKind    = assessment.AttemptKind
	LearnerProfile = assessment.LearnerProfile
)

const (
	AttemptPlacement = assessment.AttemptPlacement
	AttemptProgress  = assessment.AttemptProgress
	AttemptPractice  = assessment.AttemptPractice
)

var (
	NewAttempt               = assessment.NewAttempt
	NewRecommendationProfile = assessment.NewRecommendationProfile
)
