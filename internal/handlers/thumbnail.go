package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"level-thumbnails/internal/images"
	"level-thumbnails/internal/models"
	"level-thumbnails/internal/storage"
)

// ThumbnailReader is the slice of persistence the public thumbnail
// endpoints need.
type ThumbnailReader interface {
	LatestAcceptedForLevel(ctx context.Context, levelID int64) (*models.Submission, error)
	ThumbnailInfo(ctx context.Context, levelID int64) (*models.ThumbnailInfo, error)
}

type ThumbnailHandler struct {
	files *storage.DiskStore
	codec *images.Codec
	store ThumbnailReader
}

func NewThumbnailHandler(files *storage.DiskStore, codec *images.Codec, store ThumbnailReader) *ThumbnailHandler {
	return &ThumbnailHandler{files: files, codec: codec, store: store}
}

// Serve handles GET /thumbnail/:id and GET /thumbnail/:id/:res. The second
// path segment doubles as the "info" and "random" dispatch because the
// router cannot mix static and parameter segments here.
func (h *ThumbnailHandler) Serve(c *gin.Context) {
	idParam := c.Param("id")
	resParam := c.Param("res")

	if idParam == "random" {
		h.random(c, resParam)
		return
	}

	levelID, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid level ID")
		return
	}

	if resParam == "info" {
		h.info(c, levelID)
		return
	}

	res := images.ResHigh
	if resParam != "" {
		var ok bool
		if res, ok = images.ParseResolution(resParam); !ok {
			statusMessage(c, http.StatusBadRequest, "Invalid resolution")
			return
		}
	}

	h.image(c, levelID, res)
}

func (h *ThumbnailHandler) image(c *gin.Context, levelID int64, res images.Resolution) {
	path := h.files.Canonical(levelID)
	if !h.files.Exists(path) {
		statusMessage(c, http.StatusNotFound, "Image not found")
		return
	}

	// the canonical file alone is not enough, the metadata headers come
	// from the accepted submission row
	sub, err := h.store.LatestAcceptedForLevel(c.Request.Context(), levelID)
	if err != nil {
		respondError(c, err)
		return
	}

	data, err := h.files.Read(path)
	if err != nil {
		respondError(c, err)
		return
	}

	if res != images.ResHigh {
		if data, err = h.codec.Resize(data, res); err != nil {
			respondError(c, err)
			return
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"%d.png\"", levelID))
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Level-ID", strconv.FormatInt(levelID, 10))
	c.Header("X-Thumbnail-Author", sub.Username)
	c.Header("X-Thumbnail-User-ID", strconv.FormatInt(sub.UserID, 10))
	c.Data(http.StatusOK, "image/png", data)
}

func (h *ThumbnailHandler) info(c *gin.Context, levelID int64) {
	info, err := h.store.ThumbnailInfo(c.Request.Context(), levelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, info)
}

func (h *ThumbnailHandler) random(c *gin.Context, resParam string) {
	res := images.ResHigh
	if resParam != "" {
		var ok bool
		if res, ok = images.ParseResolution(resParam); !ok {
			statusMessage(c, http.StatusBadRequest, "Invalid resolution")
			return
		}
	}

	ids, err := h.files.PublishedLevelIDs()
	if err != nil {
		respondError(c, err)
		return
	}
	if len(ids) == 0 {
		statusMessage(c, http.StatusNotFound, "No images found")
		return
	}

	id := ids[rand.Intn(len(ids))]
	c.Redirect(http.StatusFound, fmt.Sprintf("/thumbnail/%d/%s", id, res))
}
