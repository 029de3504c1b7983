package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

// legacyAccountID marks users created from a Discord login before they
// linked their game account.
const legacyAccountID = -1

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "get user", Err: err}
	}
	return &user, nil
}

func (r *UserRepository) FindOrCreateByAccountID(ctx context.Context, accountID int64, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.PersistenceError{Op: "find user", Err: err}
	}

	user = models.User{AccountID: accountID, Username: username, Role: models.RoleUser}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &apperrors.PersistenceError{Op: "create user", Err: err}
	}
	return &user, nil
}

// FindOrCreateByDiscordID resolves a Discord login. A legacy user imported
// by username gets its discord id attached instead of creating a second
// account.
func (r *UserRepository) FindOrCreateByDiscordID(ctx context.Context, discordID int64, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("discord_id = ?", discordID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.PersistenceError{Op: "find user by discord", Err: err}
	}

	var legacy models.User
	err = r.db.WithContext(ctx).
		Where("account_id = ? AND username = ? AND discord_id IS NULL", legacyAccountID, username).
		First(&legacy).Error
	if err == nil {
		if err := r.db.WithContext(ctx).Model(&legacy).Update("discord_id", discordID).Error; err != nil {
			return nil, &apperrors.PersistenceError{Op: "link legacy user", Err: err}
		}
		legacy.DiscordID = &discordID
		return &legacy, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &apperrors.PersistenceError{Op: "find legacy user", Err: err}
	}

	user = models.User{AccountID: legacyAccountID, Username: username, Role: models.RoleUser, DiscordID: &discordID}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, &apperrors.PersistenceError{Op: "create discord user", Err: err}
	}
	return &user, nil
}

// MergeAccounts folds the game-login account into the Discord-created
// one: submissions move over, the surviving row inherits the real game
// account id and the duplicate row is removed.
func (r *UserRepository) MergeAccounts(ctx context.Context, gameUserID, discordUserID int64) (*models.User, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gameUser models.User
		if err := tx.First(&gameUser, gameUserID).Error; err != nil {
			return err
		}

		if err := ReassignUser(tx, gameUserID, discordUserID); err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", discordUserID).
			Update("account_id", gameUser.AccountID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, gameUserID).Error
	})
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "merge accounts", Err: err}
	}

	return r.GetByID(ctx, discordUserID)
}

func (r *UserRepository) Stats(ctx context.Context, id int64) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			users.id, users.account_id,
			users.username, users.role,
			COUNT(submissions.id) AS upload_count,
			COUNT(DISTINCT submissions.level_id) AS level_count,
			COUNT(submissions.id) FILTER (WHERE submissions.status = 'accepted') AS accepted_upload_count,
			COUNT(DISTINCT submissions.level_id) FILTER (WHERE submissions.status = 'accepted') AS accepted_level_count,
			(
				SELECT COUNT(*)
				FROM (
					SELECT s.level_id
					FROM submissions s
					WHERE s.status = 'accepted'
					AND s.user_id = users.id
					AND s.submitted_at = (
						SELECT MAX(s2.submitted_at)
						FROM submissions s2
						WHERE s2.level_id = s.level_id
						AND s2.status = 'accepted'
					)
				) active_levels
			) AS active_thumbnail_count
		FROM users
		LEFT JOIN submissions ON users.id = submissions.user_id
		WHERE users.id = ?
		GROUP BY users.id, users.account_id, users.username, users.role
	`, id).Scan(&stats).Error
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "user stats", Err: err}
	}
	if stats.ID == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &stats, nil
}
