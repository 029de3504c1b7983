package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"level-thumbnails/internal/services"
)

type PendingHandler struct {
	engine   *services.PendingQueryEngine
	resolver *services.ModerationResolver
}

func NewPendingHandler(engine *services.PendingQueryEngine, resolver *services.ModerationResolver) *PendingHandler {
	return &PendingHandler{engine: engine, resolver: resolver}
}

type pendingQueryParams struct {
	Page            int    `form:"page"`
	PerPage         int    `form:"per_page"`
	ReplacementOnly bool   `form:"replacement_only"`
	NewOnly         bool   `form:"new_only"`
	LevelID         *int64 `form:"level_id"`
	UserID          *int64 `form:"user_id"`
	Username        string `form:"username"`
}

// requireModerator mirrors the per-handler role gate of the moderation
// endpoints. The role comes from the persisted user, never the token.
func requireModerator(c *gin.Context) bool {
	if !currentUser(c).Role.CanModerate() {
		statusMessage(c, http.StatusForbidden, "Only moderators or admins can perform this action")
		return false
	}
	return true
}

func parsePendingQuery(c *gin.Context) (services.PendingFilters, services.Pagination, bool) {
	var params pendingQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid query parameters")
		return services.PendingFilters{}, services.Pagination{}, false
	}

	filters := services.PendingFilters{
		LevelID:         params.LevelID,
		UserID:          params.UserID,
		Username:        params.Username,
		ReplacementOnly: params.ReplacementOnly,
		NewOnly:         params.NewOnly,
	}
	return filters, services.Pagination{Page: params.Page, PerPage: params.PerPage}, true
}

func (h *PendingHandler) list(c *gin.Context, f services.PendingFilters, p services.Pagination) {
	page, err := h.engine.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, page)
}

// ListAll handles GET /pending (moderators).
func (h *PendingHandler) ListAll(c *gin.Context) {
	if !requireModerator(c) {
		return
	}
	filters, page, ok := parsePendingQuery(c)
	if !ok {
		return
	}
	h.list(c, filters, page)
}

// Get handles GET /pending/:id (moderators).
func (h *PendingHandler) Get(c *gin.Context) {
	if !requireModerator(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	sub, err := h.engine.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, sub)
}

type pendingAction struct {
	Accepted bool    `json:"accepted"`
	Reason   *string `json:"reason"`
}

// Act handles POST /pending/:id (moderators): the accept/reject decision.
func (h *PendingHandler) Act(c *gin.Context) {
	if !requireModerator(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	var action pendingAction
	if err := c.ShouldBindJSON(&action); err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.resolver.Resolve(c.Request.Context(), currentUser(c), id, action.Accepted, action.Reason); err != nil {
		respondError(c, err)
		return
	}

	verb := "rejected"
	if action.Accepted {
		verb = "accepted"
	}
	statusMessage(c, http.StatusOK, fmt.Sprintf("Upload %d %s", id, verb))
}

// Dispatch handles GET /pending/:id/:sub, which covers three shapes the
// router cannot keep apart: /pending/<id>/image, /pending/level/<id> and
// /pending/user/<id>.
func (h *PendingHandler) Dispatch(c *gin.Context) {
	first := c.Param("id")
	second := c.Param("sub")

	switch first {
	case "level":
		h.listForLevel(c, second)
		return
	case "user":
		h.listForUser(c, second)
		return
	}

	if second == "image" {
		h.image(c, first)
		return
	}
	statusMessage(c, http.StatusNotFound, "Not found")
}

func (h *PendingHandler) listForLevel(c *gin.Context, idParam string) {
	if !requireModerator(c) {
		return
	}

	levelID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid level ID")
		return
	}

	filters, page, ok := parsePendingQuery(c)
	if !ok {
		return
	}
	filters.LevelID = &levelID
	h.list(c, filters, page)
}

// listForUser lets regular users view their own queue, moderators anyone's.
func (h *PendingHandler) listForUser(c *gin.Context, idParam string) {
	userID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user := currentUser(c)
	if user.ID != userID && !user.Role.CanModerate() {
		statusMessage(c, http.StatusForbidden, "You can only view your own pending uploads")
		return
	}

	filters, page, ok := parsePendingQuery(c)
	if !ok {
		return
	}
	filters.UserID = &userID
	h.list(c, filters, page)
}

func (h *PendingHandler) image(c *gin.Context, idParam string) {
	if !requireModerator(c) {
		return
	}

	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid submission ID")
		return
	}

	sub, data, err := h.engine.ImageBytes(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"pending_%d_%d.png\"", sub.UserID, id))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, "image/png", data)
}
