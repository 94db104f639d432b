package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/toeiclab/toeic-backend/internal/domain"
	"github.com/toeiclab/toeic-backend/internal/http/response"
	"github.com/toeiclab/toeic-backend/internal/services"
)

type ItemHandler struct {
	items services.ItemService
}

func NewItemHandler(items services.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// GET /api/items?part=&level=&test=&limit=
func (h *ItemHandler) ListItems(c *gin.Context) {
	filter := types.ItemFilter{
		Part:    c.Query("part"),
		TestKey: c.Query("test"),
	}
	if raw := c.Query("level"); raw != "" {
		lvl, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_level", err)
			return
		}
		filter.Level = lvl
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	items, err := h.items.List(c.Request.Context(), filter, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", errInvalidLimit)
		return 0, false
	}
	return n, true
}
