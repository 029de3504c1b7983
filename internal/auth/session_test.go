package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	codec := NewSessionCodec("secret")

	token, err := codec.Issue(7, "player")
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "player", claims.Username)
	assert.Nil(t, claims.ExpiresAt)
}

func TestDecodeStripsBearerPrefix(t *testing.T) {
	codec := NewSessionCodec("secret")

	token, err := codec.Issue(7, "player")
	require.NoError(t, err)

	claims, err := codec.Decode("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func TestDecodeRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionCodec("secret-a").Issue(7, "player")
	require.NoError(t, err)

	_, err = NewSessionCodec("secret-b").Decode(token)
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := NewSessionCodec("secret").Decode("not.a.token")
	assert.Error(t, err)
}
