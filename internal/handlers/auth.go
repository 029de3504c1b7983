package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"level-thumbnails/internal/auth"
	"level-thumbnails/internal/repositories"
	"level-thumbnails/internal/storage"
)

type AuthHandler struct {
	users    *repositories.UserRepository
	subs     *repositories.SubmissionRepository
	files    *storage.DiskStore
	argon    *auth.ArgonClient
	discord  *auth.DiscordClient
	sessions *auth.SessionCodec
	links    *auth.LinkTokens
}

func NewAuthHandler(
	users *repositories.UserRepository,
	subs *repositories.SubmissionRepository,
	files *storage.DiskStore,
	argon *auth.ArgonClient,
	discord *auth.DiscordClient,
	sessions *auth.SessionCodec,
	links *auth.LinkTokens,
) *AuthHandler {
	return &AuthHandler{
		users: users, subs: subs, files: files,
		argon: argon, discord: discord, sessions: sessions, links: links,
	}
}

type loginPayload struct {
	AccountID  int64  `json:"account_id"`
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	ArgonToken string `json:"argon_token"`
}

// Login handles POST /auth/login: a game login proof checked against the
// verifier, a Strong verdict mints a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Infof("login attempt: account_id=%d, user_id=%d, username=%s",
		payload.AccountID, payload.UserID, payload.Username)

	verdict, detail, err := h.argon.Verify(c.Request.Context(),
		payload.AccountID, payload.UserID, payload.Username, payload.ArgonToken)
	if err != nil {
		log.Errorf("argon verification failed: %v", err)
		statusMessage(c, http.StatusInternalServerError, "Argon verification failed")
		return
	}

	switch verdict {
	case auth.VerdictStrong:
	case auth.VerdictWeak:
		statusMessage(c, http.StatusUnauthorized, fmt.Sprintf("Weak token for user: %s", detail))
		return
	default:
		statusMessage(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %s", detail))
		return
	}

	user, err := h.users.FindOrCreateByAccountID(c.Request.Context(), payload.AccountID, payload.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.sessions.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "User authenticated successfully",
		"user":    user,
		"token":   token,
	})
}

// DiscordCallback handles GET /auth/discord: the OAuth redirect target.
func (h *AuthHandler) DiscordCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		statusMessage(c, http.StatusBadRequest, "Missing code parameter")
		return
	}

	identity, err := h.discord.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Errorf("discord oauth exchange failed: %v", err)
		statusMessage(c, http.StatusUnauthorized, "Discord authentication failed")
		return
	}

	user, err := h.users.FindOrCreateByDiscordID(c.Request.Context(), identity.ID, identity.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.sessions.Issue(user.ID, user.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie("auth_token", token, 0, "/", "", false, true)
	c.SetCookie("auth_role", string(user.Role), 0, "/", "", false, false)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Session handles GET /auth/session: a cheap credential probe.
func (h *AuthHandler) Session(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"user":   currentUser(c),
	})
}

// IssueLinkToken handles GET /auth/link. Only a Discord-created account
// that is not yet backed by a game account can start a link.
func (h *AuthHandler) IssueLinkToken(c *gin.Context) {
	user := currentUser(c)
	if user.AccountID != -1 {
		statusMessage(c, http.StatusBadRequest, "You already have a game account linked")
		return
	}

	token, err := h.links.Issue(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Link token generated successfully",
		"token":   token,
	})
}

type linkPayload struct {
	Token string `json:"token"`
}

// LinkAccount handles POST /auth/link, called from the game-account
// session with the token the Discord account generated. The two users
// merge into the Discord-created row and pending upload files move to the
// surviving id.
func (h *AuthHandler) LinkAccount(c *gin.Context) {
	user := currentUser(c)
	if user.DiscordID != nil {
		statusMessage(c, http.StatusBadRequest, "You already have a Discord account linked")
		return
	}

	var payload linkPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		statusMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	discordUserID, err := h.links.Consume(c.Request.Context(), payload.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	if discordUserID == 0 {
		statusMessage(c, http.StatusUnauthorized, "Invalid link token")
		return
	}

	// captured before the merge reassigns the rows
	pending, err := h.subs.PendingForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	merged, err := h.users.MergeAccounts(c.Request.Context(), user.ID, discordUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, sub := range pending {
		oldPath := h.files.Pending(user.ID, sub.LevelID)
		newPath := h.files.Pending(merged.ID, sub.LevelID)
		if err := h.files.Rename(oldPath, newPath); err != nil {
			log.Warnf("failed to move pending file %s during account link: %v", oldPath, err)
		}
	}

	token, err := h.sessions.Issue(merged.ID, merged.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": "Account linked successfully",
		"user":    merged,
		"token":   token,
	})
}
