package app

import (
	apphttp "github.com/toeiclab/toeic-backend/internal/http"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *apphttp.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:         log,
		ServiceName: serviceName,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,

		AuthMiddleware: middleware.Auth,

		HealthHandler:         handlers.Health,
		ItemHandler:           handlers.Item,
		AttemptHandler:        handlers.Attempt,
		RecommendationHandler: handlers.Recommendation,
		EligibilityHandler:    handlers.Eligibility,
	})
}
