package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/toeiclab/toeic-backend/internal/domain"
	"github.com/toeiclab/toeic-backend/internal/http/response"
	"github.com/toeiclab/toeic-backend/internal/services"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

type AttemptHandler struct {
	attempts services.AttemptService
}

func NewAttemptHandler(attempts services.AttemptService) *AttemptHandler {
	return &AttemptHandler{attempts: attempts}
}

// POST /api/attempts/placement
func (h *AttemptHandler) SubmitPlacement(c *gin.Context) { h.submit(c, types.AttemptPlacement) }

// POST /api/attempts/progress
func (h *AttemptHandler) SubmitProgress(c *gin.Context) { h.submit(c, types.AttemptProgress) }

// POST /api/attempts/practice
func (h *AttemptHandler) SubmitPractice(c *gin.Context) { h.submit(c, types.AttemptPractice) }

func (h *AttemptHandler) submit(c *gin.Context, kind types.AttemptKind) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req services.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.attempts.Submit(c.Request.Context(), userID, kind, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/attempts?kind=&limit=
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	attempts, err := h.attempts.List(c.Request.Context(), userID, types.AttemptKind(c.Query("kind")), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": attempts})
}

// GET /api/attempts/:id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_attempt_id", err)
		return
	}
	attempt, err := h.attempts.Get(c.Request.Context(), userID, attemptID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": attempt})
}
