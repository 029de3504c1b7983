package models

type Role string

const (
	RoleUser      Role = "user"      // regular user, all uploads go through moderation
	RoleVerified  Role = "verified"  // may publish new thumbnails without approval
	RoleModerator Role = "moderator" // may approve or reject submissions
	RoleAdmin     Role = "admin"     // full access, manages settings
)

func (r Role) CanModerate() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	AccountID int64  `gorm:"index" json:"account_id"`
	Username  string `json:"username"`
	Role      Role   `gorm:"type:varchar(20);default:user" json:"role"`
	DiscordID *int64 `gorm:"index" json:"discord_id,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserStats is the aggregate row returned by the /user endpoints,
// computed from submissions, never stored.
type UserStats struct {
	ID                   int64  `json:"id"`
	AccountID            int64  `json:"account_id"`
	Username             string `json:"username"`
	Role                 Role   `json:"role"`
	UploadCount          int64  `json:"upload_count"`
	AcceptedUploadCount  int64  `json:"accepted_upload_count"`
	LevelCount           int64  `json:"level_count"`
	AcceptedLevelCount   int64  `json:"accepted_level_count"`
	ActiveThumbnailCount int64  `json:"active_thumbnail_count"`
}
