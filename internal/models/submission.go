package models

import "time"

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusAccepted SubmissionStatus = "accepted"
	StatusRejected SubmissionStatus = "rejected"
)

// Submission is one thumbnail upload for a level. Rows are never deleted,
// a decided submission stays around as the audit trail.
type Submission struct {
	ID          int64            `gorm:"primaryKey" json:"id"`
	LevelID     int64            `gorm:"index" json:"level_id"`
	UserID      int64            `gorm:"index" json:"user_id"`
	Username    string           `gorm:"->;-:migration" json:"username"`
	Status      SubmissionStatus `gorm:"type:varchar(20);index;default:pending" json:"status"`
	ImagePath   string           `json:"-"`
	Reason      *string          `json:"reason,omitempty"`
	SubmittedAt time.Time        `gorm:"autoCreateTime;index" json:"upload_time"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
	DecidedBy   *int64           `json:"decided_by,omitempty"`

	// Replacement is recomputed from the thumbnail directory on every read,
	// it must never be persisted or it goes stale against the filesystem.
	Replacement bool `gorm:"-" json:"replacement"`
}

func (Submission) TableName() string {
	return "submissions"
}

// ThumbnailInfo describes the currently published thumbnail of a level.
type ThumbnailInfo struct {
	LevelID           int64      `json:"level_id"`
	AccountID         int64      `json:"account_id"`
	Username          string     `json:"username"`
	UploadTime        time.Time  `json:"upload_time"`
	FirstUploadTime   *time.Time `json:"first_upload_time,omitempty"`
	AcceptedTime      *time.Time `json:"accepted_time,omitempty"`
	AcceptedBy        *int64     `json:"accepted_by,omitempty"`
	AcceptedByUsername *string   `json:"accepted_by_username,omitempty"`
}
