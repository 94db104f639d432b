package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/toeiclab/toeic-backend/internal/http/response"
	"github.com/toeiclab/toeic-backend/internal/services"
)

type RecommendationHandler struct {
	recommendations services.RecommendationService
}

func NewRecommendationHandler(recommendations services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations}
}

// GET /api/recommendations/me
func (h *RecommendationHandler) GetMine(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	snap, err := h.recommendations.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recommendation": snap})
}
