package app

import (
	"gorm.io/gorm"

	"github.com/toeiclab/toeic-backend/internal/platform/logger"
	"github.com/toeiclab/toeic-backend/internal/realtime/bus"
	"github.com/toeiclab/toeic-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Item           services.ItemService
	Attempt        services.AttemptService
	Recommendation services.RecommendationService
	Eligibility    services.EligibilityService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, eventBus bus.Bus, clock services.Clock) Services {
	log.Info("Wiring services...")
	window := cfg.ProgressWindow()

	recommendations := services.NewRecommendationService(
		db, log,
		repos.Attempt, repos.LearnerProfile,
		eventBus,
		cfg.RecommendationHistoryLimit,
		clock,
	)
	return Services{
		Auth:           services.NewAuthService(log, cfg.JWTSecretKey, clock),
		Item:           services.NewItemService(log, repos.Item),
		Recommendation: recommendations,
		Eligibility: services.NewEligibilityService(
			db, log,
			repos.Attempt, repos.LearnerProfile,
			eventBus, window, clock,
		),
		Attempt: services.NewAttemptService(
			db, log,
			repos.Item, repos.Attempt, repos.LearnerProfile,
			recommendations,
			eventBus, window, clock,
		),
	}
}
