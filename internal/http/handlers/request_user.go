package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/toeiclab/toeic-backend/internal/http/response"
	"github.com/toeiclab/toeic-backend/internal/platform/ctxutil"
)

var errNoUser = errors.New("no authenticated user")

// requestUserID writes a 401 and returns false when the request carries no
// authenticated user.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNoUser)
		return uuid.Nil, false
	}
	return rd.UserID, true
}
