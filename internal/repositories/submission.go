package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

// PendingQuery carries the store-side filters of a pending listing.
// Pagination is applied by the caller in snapshot mode, so it is optional
// here.
type PendingQuery struct {
	LevelID  *int64
	UserID   *int64
	Username string
	Page     int
	PerPage  int
}

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// pendingScope builds the shared predicate of the page and count queries.
// Both MUST go through this helper or totals drift from results.
func (r *SubmissionRepository) pendingScope(ctx context.Context, q PendingQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Joins("LEFT JOIN users ON users.id = submissions.user_id").
		Where("submissions.status = ?", models.StatusPending)

	if q.LevelID != nil {
		tx = tx.Where("submissions.level_id = ?", *q.LevelID)
	}
	if q.UserID != nil {
		tx = tx.Where("submissions.user_id = ?", *q.UserID)
	}
	if q.Username != "" {
		tx = tx.Where("LOWER(users.username) LIKE LOWER(?)", "%"+q.Username+"%")
	}

	return tx
}

// ListPending returns one page of pending submissions plus the total count
// over an identical predicate, ordered by (submitted_at, id) so paging
// stays stable under concurrent inserts.
func (r *SubmissionRepository) ListPending(ctx context.Context, q PendingQuery) ([]models.Submission, int64, error) {
	offset := (q.Page - 1) * q.PerPage

	var subs []models.Submission
	err := r.pendingScope(ctx, q).
		Select("submissions.*, users.username AS username").
		Order("submissions.submitted_at ASC, submissions.id ASC").
		Limit(q.PerPage).
		Offset(offset).
		Find(&subs).Error
	if err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "list pending", Err: err}
	}

	var total int64
	if err := r.pendingScope(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, &apperrors.PersistenceError{Op: "count pending", Err: err}
	}

	return subs, total, nil
}

// ListAllPending returns every pending submission matching the store-side
// filters, unpaginated. Snapshot-mode listings filter and paginate the
// result in memory because their predicate depends on filesystem state.
func (r *SubmissionRepository) ListAllPending(ctx context.Context, q PendingQuery) ([]models.Submission, error) {
	var subs []models.Submission
	err := r.pendingScope(ctx, q).
		Select("submissions.*, users.username AS username").
		Order("submissions.submitted_at ASC, submissions.id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list all pending", Err: err}
	}
	return subs, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return &apperrors.PersistenceError{Op: "create submission", Err: err}
	}
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = submissions.user_id").
		Where("submissions.id = ?", id).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "get submission", Err: err}
	}
	return &sub, nil
}

// Resolve applies a moderation decision with a conditional update: the row
// flips out of pending exactly once, a second resolver racing on the same
// id loses with ErrAlreadyResolved. fileOp runs inside the transaction so
// a failed file mutation rolls the row back.
func (r *SubmissionRepository) Resolve(
	ctx context.Context,
	id int64,
	decidedBy int64,
	reason *string,
	accept bool,
	fileOp func() error,
) error {
	status := models.StatusRejected
	if accept {
		status = models.StatusAccepted
	}
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Submission{}).
			Where("id = ? AND status = ?", id, models.StatusPending).
			Updates(map[string]interface{}{
				"status":     status,
				"decided_at": now,
				"decided_by": decidedBy,
				"reason":     reason,
			})
		if res.Error != nil {
			return &apperrors.PersistenceError{Op: "resolve submission", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrAlreadyResolved
		}

		return fileOp()
	})

	return err
}

// LatestAcceptedForLevel returns the submission currently published as the
// level thumbnail, for the /thumbnail info and serving endpoints.
func (r *SubmissionRepository) LatestAcceptedForLevel(ctx context.Context, levelID int64) (*models.Submission, error) {
	var sub models.Submission
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("submissions.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = submissions.user_id").
		Where("submissions.level_id = ? AND submissions.status = ?", levelID, models.StatusAccepted).
		Order("submissions.submitted_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "latest accepted", Err: err}
	}
	return &sub, nil
}

// ThumbnailInfo builds the public metadata of a published thumbnail.
func (r *SubmissionRepository) ThumbnailInfo(ctx context.Context, levelID int64) (*models.ThumbnailInfo, error) {
	var info models.ThumbnailInfo
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			submissions.level_id,
			users.account_id,
			users.username,
			submissions.submitted_at AS upload_time,
			(
				SELECT MIN(s2.submitted_at) FROM submissions s2
				WHERE s2.level_id = submissions.level_id AND s2.status = 'accepted'
			) AS first_upload_time,
			submissions.decided_at AS accepted_time,
			decided.account_id AS accepted_by,
			decided.username AS accepted_by_username
		FROM submissions
		JOIN users ON users.id = submissions.user_id
		LEFT JOIN users AS decided ON decided.id = submissions.decided_by
		WHERE submissions.level_id = ? AND submissions.status = 'accepted'
		ORDER BY submissions.submitted_at DESC
		LIMIT 1
	`, levelID).Scan(&info).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "thumbnail info", Err: err}
	}
	if info.LevelID == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &info, nil
}

// PendingForUser lists the user's pending submissions, used when a linked
// account migration has to carry its pending files over.
func (r *SubmissionRepository) PendingForUser(ctx context.Context, userID int64) ([]models.Submission, error) {
	return r.ListAllPending(ctx, PendingQuery{UserID: &userID})
}

// ReassignUser moves all submissions of one user onto another, inside the
// given transaction.
func ReassignUser(tx *gorm.DB, fromUserID, toUserID int64) error {
	return tx.Model(&models.Submission{}).
		Where("user_id = ?", fromUserID).
		Update("user_id", toUserID).Error
}
