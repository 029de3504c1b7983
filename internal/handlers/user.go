package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"level-thumbnails/internal/models"
)

type UserStatsProvider interface {
	Stats(ctx context.Context, userID int64) (*models.UserStats, error)
}

type UserHandler struct {
	users UserStatsProvider
	auth  *AuthMiddleware
}

func NewUserHandler(users UserStatsProvider, auth *AuthMiddleware) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// ByID handles GET /user/:id. The id "me" resolves the authenticated
// caller, any other value is a public profile lookup.
func (h *UserHandler) ByID(c *gin.Context) {
	idParam := c.Param("id")

	var userID int64
	if idParam == "me" {
		user, err := h.auth.ResolveUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		userID = user.ID
	} else {
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			statusMessage(c, http.StatusBadRequest, "Invalid user ID")
			return
		}
		userID = id
	}

	stats, err := h.users.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "data": stats})
}
