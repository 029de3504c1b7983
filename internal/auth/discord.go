package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const discordAPIBase = "https://discord.com/api"

// DiscordClient runs the OAuth code exchange and identity lookup.
type DiscordClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	apiBase      string
	http         *http.Client
}

func NewDiscordClient(clientID, clientSecret, homeURL string) *DiscordClient {
	return &DiscordClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  homeURL + "/auth/discord",
		apiBase:      discordAPIBase,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// DiscordIdentity is the subset of the /users/@me payload the server needs.
type DiscordIdentity struct {
	ID       int64
	Username string
}

// Exchange trades an OAuth code for the user identity behind it.
func (c *DiscordClient) Exchange(ctx context.Context, code string) (*DiscordIdentity, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord token: %w", err)
	}
	defer resp.Body.Close()

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to parse discord response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("invalid discord code")
	}

	return c.identity(ctx, tokenResp.AccessToken)
}

func (c *DiscordClient) identity(ctx context.Context, accessToken string) (*DiscordIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord user info: %w", err)
	}
	defer resp.Body.Close()

	var userResp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return nil, fmt.Errorf("failed to parse discord user info: %w", err)
	}

	id, err := strconv.ParseInt(userResp.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid discord user id %q", userResp.ID)
	}

	return &DiscordIdentity{ID: id, Username: userResp.Username}, nil
}
