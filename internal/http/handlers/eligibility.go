package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/toeiclab/toeic-backend/internal/http/response"
	"github.com/toeiclab/toeic-backend/internal/services"
)

type EligibilityHandler struct {
	eligibility services.EligibilityService
}

func NewEligibilityHandler(eligibility services.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibility: eligibility}
}

// GET /api/progress/eligibility
func (h *EligibilityHandler) Check(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	res, err := h.eligibility.Check(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/progress/eligibility/ack
func (h *EligibilityHandler) Acknowledge(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	res, err := h.eligibility.Acknowledge(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}
