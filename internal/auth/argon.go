package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Verdict is the outcome of a login-proof check.
type Verdict int

const (
	VerdictStrong Verdict = iota
	VerdictWeak
	VerdictInvalid
)

// ArgonClient validates game login proofs against an Argon node. Used only
// at the login boundary, uploads and moderation never touch it.
type ArgonClient struct {
	baseURL string
	http    *http.Client
}

func NewArgonClient(baseURL string) *ArgonClient {
	return &ArgonClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type argonResponse struct {
	Valid     bool    `json:"valid"`
	ValidWeak bool    `json:"valid_weak"`
	Cause     *string `json:"cause"`
	Username  *string `json:"username"`
}

// Verify checks the auth token. The second return value carries the cause
// for Invalid or the server-known username for Weak.
func (c *ArgonClient) Verify(ctx context.Context, accountID, userID int64, username, token string) (Verdict, string, error) {
	query := url.Values{
		"account_id": {strconv.FormatInt(accountID, 10)},
		"user_id":    {strconv.FormatInt(userID, 10)},
		"username":   {username},
		"authtoken":  {token},
	}

	endpoint := fmt.Sprintf("%s/validation/check_strong?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return VerdictInvalid, "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return VerdictInvalid, "", fmt.Errorf("argon request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return VerdictInvalid, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return VerdictInvalid, "", fmt.Errorf("error from the argon server: %s", body)
	}

	var parsed argonResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return VerdictInvalid, "", fmt.Errorf("invalid argon response: %w", err)
	}

	switch {
	case !parsed.ValidWeak:
		cause := "unknown"
		if parsed.Cause != nil {
			cause = *parsed.Cause
		}
		return VerdictInvalid, cause, nil
	case !parsed.Valid:
		name := "<unknown>"
		if parsed.Username != nil {
			name = *parsed.Username
		}
		return VerdictWeak, name, nil
	default:
		return VerdictStrong, "", nil
	}
}
