package app

import (
	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/data/repos"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

type Repos struct {
	Item           repos.ItemRepo
	Attempt        repos.AttemptRepo
	LearnerProfile repos.LearnerProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Item:           repos.NewItemRepo(db, log),
		Attempt:        repos.NewAttemptRepo(db, log),
		LearnerProfile: repos.NewLearnerProfileRepo(db, log),
	}
}
