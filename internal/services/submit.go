package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

// SubmitOutcome tells the handler which success path an upload took.
type SubmitOutcome int

const (
	// OutcomePublished means the image became the canonical thumbnail
	// immediately (201).
	OutcomePublished SubmitOutcome = iota
	// OutcomeQueued means the image is waiting for moderation (202).
	OutcomeQueued
)

// SubmissionGate decides whether an upload publishes directly or joins the
// moderation queue, based on the submitter role and whether the level
// already has a published thumbnail.
type SubmissionGate struct {
	files    FileStore
	store    SubmissionStore
	codec    ImageCodec
	cache    LevelPurger
	settings *SettingsService
}

func NewSubmissionGate(files FileStore, store SubmissionStore, codec ImageCodec, cache LevelPurger, settings *SettingsService) *SubmissionGate {
	return &SubmissionGate{files: files, store: store, codec: codec, cache: cache, settings: settings}
}

// Submit runs the full intake: duplicate check, image validation, then the
// role dispatch. The checks run in this order on purpose, a duplicate
// submitter should hear about the conflict before burning CPU on decode.
func (g *SubmissionGate) Submit(ctx context.Context, user *models.User, levelID int64, payload []byte) (SubmitOutcome, error) {
	if !user.Role.CanModerate() {
		if g.files.Exists(g.files.Pending(user.ID, levelID)) {
			return 0, apperrors.ErrDuplicatePending
		}
	}

	canonical, err := g.codec.ValidateAndEncode(payload)
	if err != nil {
		return 0, err
	}

	switch user.Role {
	case models.RoleAdmin, models.RoleModerator:
		return OutcomePublished, g.publish(ctx, user, levelID, canonical)

	case models.RoleVerified:
		if !g.files.Exists(g.files.Canonical(levelID)) {
			return OutcomePublished, g.publish(ctx, user, levelID, canonical)
		}
		return OutcomeQueued, g.queue(ctx, user, levelID, canonical)

	default:
		return OutcomeQueued, g.queue(ctx, user, levelID, canonical)
	}
}

// publish writes the canonical file (overwriting any previous thumbnail),
// records an already-accepted submission for the audit trail and schedules
// an edge-cache purge.
func (g *SubmissionGate) publish(ctx context.Context, user *models.User, levelID int64, data []byte) error {
	path := g.files.Canonical(levelID)
	if err := g.files.Write(path, data); err != nil {
		return err
	}

	now := time.Now()
	sub := &models.Submission{
		LevelID:   levelID,
		UserID:    user.ID,
		Status:    models.StatusAccepted,
		ImagePath: path,
		DecidedAt: &now,
		DecidedBy: &user.ID,
	}
	if err := g.store.Create(ctx, sub); err != nil {
		return err
	}

	g.cache.PurgeLevel(levelID)
	return nil
}

// queue writes the payload into the submitter-scoped pending area and
// records a pending submission. The file write comes first: if the row
// insert fails the file is orphaned, which the duplicate-pending probe
// then treats as an outstanding submission until a moderator or the
// submitter follows up.
func (g *SubmissionGate) queue(ctx context.Context, user *models.User, levelID int64, data []byte) error {
	if g.settings.Get().PauseSubmissions {
		return apperrors.ErrSubmissionsPaused
	}

	path := g.files.Pending(user.ID, levelID)
	if err := g.files.Write(path, data); err != nil {
		return err
	}

	sub := &models.Submission{
		LevelID:   levelID,
		UserID:    user.ID,
		Status:    models.StatusPending,
		ImagePath: path,
	}
	if err := g.store.Create(ctx, sub); err != nil {
		log.Errorf("pending row insert failed for user %d level %d, file %s is orphaned: %v",
			user.ID, levelID, path, err)
		return err
	}

	return nil
}
