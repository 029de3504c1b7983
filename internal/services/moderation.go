package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

// ModerationResolver applies accept/reject decisions to queued
// submissions. A submission resolves exactly once: the row update is
// conditional on it still being pending, so two moderators racing on the
// same id cannot both win.
type ModerationResolver struct {
	store SubmissionStore
	files FileStore
	cache LevelPurger
}

func NewModerationResolver(store SubmissionStore, files FileStore, cache LevelPurger) *ModerationResolver {
	return &ModerationResolver{store: store, files: files, cache: cache}
}

// Resolve accepts or rejects the submission on behalf of actor.
//
// Accept moves the pending file onto the canonical path and purges the
// edge cache. Reject deletes the pending file, tolerating one that is
// already gone. Either way the file mutation and the row update commit or
// roll back together, on a context detached from the client so a
// disconnect mid-decision cannot split the pair.
func (r *ModerationResolver) Resolve(ctx context.Context, actor *models.User, submissionID int64, accept bool, reason *string) error {
	if !actor.Role.CanModerate() {
		return apperrors.ErrForbidden
	}

	sub, err := r.store.GetByID(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.Status != models.StatusPending {
		return apperrors.ErrAlreadyResolved
	}

	pendingPath := r.files.Pending(sub.UserID, sub.LevelID)

	var fileOp func() error
	if accept {
		fileOp = func() error {
			return r.files.Rename(pendingPath, r.files.Canonical(sub.LevelID))
		}
	} else {
		fileOp = func() error {
			return r.files.Delete(pendingPath)
		}
	}

	dctx := context.WithoutCancel(ctx)
	if err := r.store.Resolve(dctx, submissionID, actor.ID, reason, accept, fileOp); err != nil {
		return err
	}

	if accept {
		r.cache.PurgeLevel(sub.LevelID)
		log.Infof("submission %d accepted by %d, level %d published", submissionID, actor.ID, sub.LevelID)
	} else {
		log.Infof("submission %d rejected by %d", submissionID, actor.ID)
	}
	return nil
}
