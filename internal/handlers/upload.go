package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"level-thumbnails/internal/services"
)

// uploads larger than this are rejected before decoding
const maxUploadBytes = 16 << 20

type UploadHandler struct {
	gate *services.SubmissionGate
}

func NewUploadHandler(gate *services.SubmissionGate) *UploadHandler {
	return &UploadHandler{gate: gate}
}

// Upload handles POST /upload/:id with the raw image bytes as the body.
func (h *UploadHandler) Upload(c *gin.Context) {
	levelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid level ID")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	outcome, err := h.gate.Submit(c.Request.Context(), currentUser(c), levelID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	switch outcome {
	case services.OutcomePublished:
		statusMessage(c, http.StatusCreated, fmt.Sprintf("Image for level ID %d uploaded", levelID))
	default:
		statusMessage(c, http.StatusAccepted, fmt.Sprintf("Image for level ID %d is now pending", levelID))
	}
}
