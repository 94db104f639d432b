package repos

import (
	"github.com/toeiclab/toeic-backend/internal/data/repos/assessment"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ItemRepo = assessment.ItemRepo
type AttemptRepo = assessment.AttemptRepo
type LearnerProfileRepo = assessment.LearnerProfileRepo

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return assessment.NewItemRepo(db, baseLog)
}

func NewAttemptRepo(db *gorm.DB, baseLog *logger.Logger) AttemptRepo {
	return assessment.NewAttemptRepo(db, baseLog)
}

func NewLearnerProfileRepo(db *gorm.DB, baseLog *logger.Logger) LearnerProfileRepo {
	return assessment.NewLearnerProfileRepo(db, baseLog)
}
