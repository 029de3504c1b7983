package services

import (
	"context"

	"level-thumbnails/internal/models"
	"level-thumbnails/internal/repositories"
)

// FileStore is the file collaborator as the services consume it. Satisfied
// by storage.DiskStore.
type FileStore interface {
	Write(path string, data []byte) error
	Read(path string) ([]byte, error)
	Rename(oldPath, newPath string) error
	Delete(path string) error
	Exists(path string) bool

	Canonical(levelID int64) string
	Pending(userID, levelID int64) string
}

// SubmissionStore is the persistence collaborator. Satisfied by
// repositories.SubmissionRepository.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	ListPending(ctx context.Context, q repositories.PendingQuery) ([]models.Submission, int64, error)
	ListAllPending(ctx context.Context, q repositories.PendingQuery) ([]models.Submission, error)
	Resolve(ctx context.Context, id int64, decidedBy int64, reason *string, accept bool, fileOp func() error) error
}

// ImageCodec validates an upload and returns the canonical bytes.
type ImageCodec interface {
	ValidateAndEncode(data []byte) ([]byte, error)
}

// LevelPurger schedules a detached edge-cache purge. Satisfied by
// cache.Invalidator.
type LevelPurger interface {
	PurgeLevel(levelID int64)
}
