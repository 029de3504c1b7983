package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArgonServer(t *testing.T, body string) *ArgonClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validation/check_strong", r.URL.Path)
		assert.Equal(t, "314", r.URL.Query().Get("account_id"))
		assert.Equal(t, "159", r.URL.Query().Get("user_id"))
		assert.Equal(t, "player", r.URL.Query().Get("username"))
		assert.Equal(t, "tok", r.URL.Query().Get("authtoken"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewArgonClient(server.URL)
}

func TestVerifyStrong(t *testing.T) {
	client := newArgonServer(t, `{"valid": true, "valid_weak": true}`)

	verdict, detail, err := client.Verify(context.Background(), 314, 159, "player", "tok")
	require.NoError(t, err)
	assert.Equal(t, VerdictStrong, verdict)
	assert.Empty(t, detail)
}

func TestVerifyWeakCarriesKnownUsername(t *testing.T) {
	client := newArgonServer(t, `{"valid": false, "valid_weak": true, "username": "RealName"}`)

	verdict, detail, err := client.Verify(context.Background(), 314, 159, "player", "tok")
	require.NoError(t, err)
	assert.Equal(t, VerdictWeak, verdict)
	assert.Equal(t, "RealName", detail)
}

func TestVerifyInvalidCarriesCause(t *testing.T) {
	client := newArgonServer(t, `{"valid": false, "valid_weak": false, "cause": "expired token"}`)

	verdict, detail, err := client.Verify(context.Background(), 314, 159, "player", "tok")
	require.NoError(t, err)
	assert.Equal(t, VerdictInvalid, verdict)
	assert.Equal(t, "expired token", detail)
}

func TestVerifyServerErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "node down", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	_, _, err := NewArgonClient(server.URL).Verify(context.Background(), 314, 159, "player", "tok")
	assert.Error(t, err)
}
