package services

import (
	"context"

	"level-thumbnails/internal/models"
	"level-thumbnails/internal/repositories"
	"level-thumbnails/pkg/apperrors"
)

const (
	DefaultPageSize = 24
	MaxPageSize     = 100
)

// PendingFilters selects which queued submissions a listing returns.
// ReplacementOnly and NewOnly depend on filesystem state and switch the
// engine into snapshot mode.
type PendingFilters struct {
	LevelID         *int64
	UserID          *int64
	Username        string
	ReplacementOnly bool
	NewOnly         bool
}

type Pagination struct {
	Page    int
	PerPage int
}

func (p Pagination) sanitized() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPageSize
	}
	if p.PerPage > MaxPageSize {
		p.PerPage = MaxPageSize
	}
	return p
}

// PendingPage is the paginated listing response.
type PendingPage struct {
	Uploads []models.Submission `json:"uploads"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
	Total   int64               `json:"total"`
}

// PendingQueryEngine is the read view over the moderation queue. It
// reconciles persisted rows with the thumbnail directory: the
// "replacement" disposition of a submission only exists on disk.
type PendingQueryEngine struct {
	store SubmissionStore
	files FileStore
}

func NewPendingQueryEngine(store SubmissionStore, files FileStore) *PendingQueryEngine {
	return &PendingQueryEngine{store: store, files: files}
}

func (e *PendingQueryEngine) isReplacement(sub *models.Submission) bool {
	return e.files.Exists(e.files.Canonical(sub.LevelID))
}

// List returns one page of pending submissions. With a file-dependent
// filter it fetches the full matching set, filters by canonical-file
// existence and paginates in memory; the store alone cannot produce that
// total. Otherwise filters and pagination are pushed into the store.
func (e *PendingQueryEngine) List(ctx context.Context, f PendingFilters, p Pagination) (*PendingPage, error) {
	p = p.sanitized()

	q := repositories.PendingQuery{
		LevelID:  f.LevelID,
		UserID:   f.UserID,
		Username: f.Username,
		Page:     p.Page,
		PerPage:  p.PerPage,
	}

	var (
		uploads []models.Submission
		total   int64
	)

	if f.ReplacementOnly || f.NewOnly {
		all, err := e.store.ListAllPending(ctx, q)
		if err != nil {
			return nil, err
		}

		matched := make([]models.Submission, 0, len(all))
		for i := range all {
			exists := e.isReplacement(&all[i])
			if f.ReplacementOnly && !exists {
				continue
			}
			if !f.ReplacementOnly && f.NewOnly && exists {
				continue
			}
			matched = append(matched, all[i])
		}

		total = int64(len(matched))
		offset := (p.Page - 1) * p.PerPage
		if offset > len(matched) {
			offset = len(matched)
		}
		end := offset + p.PerPage
		if end > len(matched) {
			end = len(matched)
		}
		uploads = matched[offset:end]
	} else {
		var err error
		uploads, total, err = e.store.ListPending(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	// every returned row carries the derived flag, whichever mode ran
	for i := range uploads {
		uploads[i].Replacement = e.isReplacement(&uploads[i])
	}

	return &PendingPage{
		Uploads: uploads,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
	}, nil
}

// Get returns a single queued submission, annotated like a listing row.
func (e *PendingQueryEngine) Get(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.StatusPending {
		return nil, apperrors.ErrNotFound
	}
	sub.Replacement = e.isReplacement(sub)
	return sub, nil
}

// ImageBytes returns the stored pending image of a queued submission.
func (e *PendingQueryEngine) ImageBytes(ctx context.Context, id int64) (*models.Submission, []byte, error) {
	sub, err := e.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := e.files.Read(e.files.Pending(sub.UserID, sub.LevelID))
	if err != nil {
		return nil, nil, err
	}
	return sub, data, nil
}
