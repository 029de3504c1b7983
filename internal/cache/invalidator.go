package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hako/durafmt"
	log "github.com/sirupsen/logrus"
)

const maxPurgeAttempts = 5

// Purger is the edge-cache collaborator.
type Purger interface {
	Purge(ctx context.Context, urls []string) error
}

// Invalidator runs best-effort purges of the edge-cached thumbnail
// variants. Tasks are detached from the triggering request: they live on
// the process context, survive client disconnects and never fail the
// request that spawned them. Interleaved purges for the same level are
// fine, purge-by-URL is idempotent at the provider.
type Invalidator struct {
	client    Purger // nil when the edge-cache credential is not configured
	homeURL   string
	baseDelay time.Duration

	ctx  context.Context
	wg   sync.WaitGroup
	once sync.Once
}

func NewInvalidator(ctx context.Context, client Purger, homeURL string, baseDelay time.Duration) *Invalidator {
	return &Invalidator{
		client:    client,
		homeURL:   homeURL,
		baseDelay: baseDelay,
		ctx:       ctx,
	}
}

// PurgeLevel schedules an invalidation of every derived resource of the
// level and returns immediately.
func (i *Invalidator) PurgeLevel(levelID int64) {
	if i.client == nil {
		i.once.Do(func() {
			log.Warn("edge cache credential not configured, thumbnail purges are disabled")
		})
		return
	}

	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.run(levelID)
	}()
}

// Wait blocks until all in-flight purge tasks finish, used on shutdown.
func (i *Invalidator) Wait() {
	i.wg.Wait()
}

func (i *Invalidator) targets(levelID int64) []string {
	base := fmt.Sprintf("%s/thumbnail/%d", i.homeURL, levelID)
	return []string{
		base,
		base + "/small",
		base + "/medium",
		base + "/high",
		base + "/info",
	}
}

func (i *Invalidator) run(levelID int64) {
	urls := i.targets(levelID)

	for attempt := 1; attempt <= maxPurgeAttempts; attempt++ {
		err := i.client.Purge(i.ctx, urls)
		if err == nil {
			if attempt > 1 {
				log.Infof("purge for level %d succeeded after %d attempt(s)", levelID, attempt)
			}
			return
		}

		var purgeErr *PurgeError
		retriable := errors.As(err, &purgeErr) &&
			(purgeErr.Status == 429 || purgeErr.Status >= 500)

		if !retriable {
			log.Errorf("purge failed for level %d: %v", levelID, err)
			return
		}

		if attempt == maxPurgeAttempts {
			log.Errorf("purge for level %d gave up after %d attempts: %v", levelID, attempt, err)
			return
		}

		delay := time.Duration(attempt) * i.baseDelay
		log.Errorf("purge failed for level %d: %v, retrying in %s (attempt %d/%d)",
			levelID, err, durafmt.Parse(delay), attempt, maxPurgeAttempts)

		select {
		case <-time.After(delay):
		case <-i.ctx.Done():
			return
		}
	}
}
