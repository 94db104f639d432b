package db

import (
	types "github.com/toeiclab/toeic-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Item bank
		&types.Item{},

		// Attempt history
		&types.Attempt{},

		// Per-learner recommendation snapshot + suggestion acknowledgement
		&types.LearnerProfile{},
	)
}
