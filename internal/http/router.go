package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/toeiclab/toeic-backend/internal/http/handlers"
	httpMW "github.com/toeiclab/toeic-backend/internal/http/middleware"
	"github.com/toeiclab/toeic-backend/internal/observability"
	"github.com/toeiclab/toeic-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler         *httpH.HealthHandler
	ItemHandler           *httpH.ItemHandler
	AttemptHandler        *httpH.AttemptHandler
	RecommendationHandler *httpH.RecommendationHandler
	EligibilityHandler    *httpH.EligibilityHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Item bank
		if cfg.ItemHandler != nil {
			protected.GET("/items", cfg.ItemHandler.ListItems)
		}

		// Attempts
		if cfg.AttemptHandler != nil {
			protected.POST("/attempts/placement", cfg.AttemptHandler.SubmitPlacement)
			protected.POST("/attempts/progress", cfg.AttemptHandler.SubmitProgress)
			protected.POST("/attempts/practice", cfg.AttemptHandler.SubmitPractice)
			protected.GET("/attempts", cfg.AttemptHandler.ListAttempts)
			protected.GET("/attempts/:id", cfg.AttemptHandler.GetAttempt)
		}

		// Recommendation
		if cfg.RecommendationHandler != nil {
			protected.GET("/recommendations/me", cfg.RecommendationHandler.GetMine)
		}

		// Progress test gate
		if cfg.EligibilityHandler != nil {
			protected.GET("/progress/eligibility", cfg.EligibilityHandler.Check)
			protected.POST("/progress/eligibility/ack", cfg.EligibilityHandler.Acknowledge)
		}
	}

	return r
}
