package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CloudflareClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &CloudflareClient{
		apiToken: "token-123",
		zoneID:   "zone-abc",
		apiBase:  server.URL,
		http:     &http.Client{Timeout: time.Second},
	}
}

func TestPurgeRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string][]string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	urls := []string{"https://example.com/thumbnail/42"}
	require.NoError(t, client.Purge(context.Background(), urls))

	assert.Equal(t, "/zones/zone-abc/purge_cache", gotPath)
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, urls, gotBody["files"])
}

func TestPurgeNonSuccessIsPurgeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	})

	err := client.Purge(context.Background(), []string{"https://example.com/thumbnail/42"})
	var purgeErr *PurgeError
	require.ErrorAs(t, err, &purgeErr)
	assert.Equal(t, http.StatusTooManyRequests, purgeErr.Status)
	assert.Equal(t, "rate limited", purgeErr.Body)
}
