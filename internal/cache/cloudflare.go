package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.cloudflare.com/client/v4"

// PurgeError carries the provider response so the retry loop can decide
// whether the failure is transient.
type PurgeError struct {
	Status int
	Body   string
}

func (e *PurgeError) Error() string {
	return fmt.Sprintf("purge failed with status %d: %s", e.Status, e.Body)
}

// CloudflareClient purges cached URLs through the zone purge_cache endpoint.
type CloudflareClient struct {
	apiToken string
	zoneID   string
	apiBase  string
	http     *http.Client
}

func NewCloudflareClient(apiToken, zoneID string) *CloudflareClient {
	return &CloudflareClient{
		apiToken: apiToken,
		zoneID:   zoneID,
		apiBase:  defaultAPIBase,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CloudflareClient) Purge(ctx context.Context, urls []string) error {
	payload, err := json.Marshal(map[string][]string{"files": urls})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/zones/%s/purge_cache", c.apiBase, c.zoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &PurgeError{Status: resp.StatusCode, Body: string(body)}
}
