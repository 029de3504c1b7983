package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"level-thumbnails/internal/auth"
	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

const userKey = "authUser"

// UserProvider looks a session subject up in persistence.
type UserProvider interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware resolves the request credential (Authorization header or
// auth_token cookie) to a persisted user. The persisted role is the sole
// authorization input, the token only names the subject.
type AuthMiddleware struct {
	codec *auth.SessionCodec
	users UserProvider
}

func NewAuthMiddleware(codec *auth.SessionCodec, users UserProvider) *AuthMiddleware {
	return &AuthMiddleware{codec: codec, users: users}
}

func (m *AuthMiddleware) resolve(c *gin.Context) (*models.User, error) {
	token := c.GetHeader("Authorization")
	if token == "" {
		if cookie, err := c.Cookie("auth_token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	claims, err := m.codec.Decode(token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := m.users.GetByID(c.Request.Context(), claims.UserID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrForbidden
	}
	return user, err
}

// Require aborts unauthenticated requests and stores the user on the
// context for the handler.
func (m *AuthMiddleware) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// ResolveUser authenticates a request outside the middleware chain, for
// handlers that only need a user on some of their dispatch paths.
func (m *AuthMiddleware) ResolveUser(c *gin.Context) (*models.User, error) {
	return m.resolve(c)
}

// RequireAdmin gates on the admin role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.resolve(c)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if user.Role != models.RoleAdmin {
			statusMessage(c, http.StatusForbidden, "Admin privileges required")
			c.Abort()
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	return c.MustGet(userKey).(*models.User)
}

// statusMessage writes the uniform {status, message} error/confirmation
// body used across the API.
func statusMessage(c *gin.Context, status int, message string) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, gin.H{"status": status, "message": message})
}

// respondError maps the service error taxonomy onto status codes. Internal
// faults are logged server-side and reported without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthenticated):
		statusMessage(c, http.StatusUnauthorized, "Missing or invalid credentials")
	case errors.Is(err, apperrors.ErrForbidden):
		statusMessage(c, http.StatusForbidden, "Insufficient permissions")
	case errors.Is(err, apperrors.ErrNotFound):
		statusMessage(c, http.StatusNotFound, "Not found")
	case errors.Is(err, apperrors.ErrDuplicatePending):
		statusMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrAlreadyResolved):
		statusMessage(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrSubmissionsPaused):
		statusMessage(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, apperrors.ErrInvalidImage):
		statusMessage(c, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		statusMessage(c, http.StatusInternalServerError, "Internal server error")
	}
}
