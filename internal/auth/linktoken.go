package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	rdb "level-thumbnails/pkg/db/redis"
)

const linkTokenTTL = 10 * time.Minute

// LinkTokens issues short-lived, single-use tokens for linking a game
// account to a Discord-created one. Tokens live in redis with a TTL and
// are deleted on first use, so a leaked token cannot be replayed.
type LinkTokens struct {
	store *rdb.Store
}

func NewLinkTokens(store *rdb.Store) *LinkTokens {
	return &LinkTokens{store: store}
}

func (l *LinkTokens) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := "link_token:" + token
	if err := l.store.SetEx(ctx, key, strconv.FormatInt(userID, 10), linkTokenTTL); err != nil {
		return "", err
	}
	return token, nil
}

// Consume resolves a token to the user it was issued for and invalidates
// it. Returns (0, nil) for an unknown or expired token.
func (l *LinkTokens) Consume(ctx context.Context, token string) (int64, error) {
	val, err := l.store.GetDel(ctx, "link_token:"+token)
	if err != nil {
		return 0, err
	}
	if val == "" {
		return 0, nil
	}
	return strconv.ParseInt(val, 10, 64)
}
