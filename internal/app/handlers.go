package app

import (
	httpH "github.com/toeiclab/toeic-backend/internal/http/handlers"
	httpMW "github.com/toeiclab/toeic-backend/internal/http/middleware"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

type Handlers struct {
	Health         *httpH.HealthHandler
	Item           *httpH.ItemHandler
	Attempt        *httpH.AttemptHandler
	Recommendation *httpH.RecommendationHandler
	Eligibility    *httpH.EligibilityHandler
}

func wireHandlers(log *logger.Logger, services Services, pinger httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         httpH.NewHealthHandler(pinger),
		Item:           httpH.NewItemHandler(services.Item),
		Attempt:        httpH.NewAttemptHandler(services.Attempt),
		Recommendation: httpH.NewRecommendationHandler(services.Recommendation),
		Eligibility:    httpH.NewEligibilityHandler(services.Eligibility),
	}
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}
