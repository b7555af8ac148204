package repository

import (
	"errors"

	"github.com/yatube/yatube/app/models"
	"gorm.io/gorm"
)

// followRepository implements the FollowRepository interface
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository instance
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Exists(userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).Count(&count).Error
	return count > 0, err
}

// GetOrCreate inserts the edge unless it already exists and reports whether
// a row was created.
func (r *followRepository) GetOrCreate(userID, authorID uint) (bool, error) {
	var follow models.Follow
	err := r.db.Where("user_id = ? AND author_id = ?", userID, authorID).First(&follow).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	follow = models.Follow{UserID: userID, AuthorID: authorID}
	if err := r.db.Create(&follow).Error; err != nil {
		// a concurrent request may have won the unique index race
		if exists, existsErr := r.Exists(userID, authorID); existsErr == nil && exists {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the edge if present and returns the number of rows removed.
func (r *followRepository) Delete(userID, authorID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Follow{})
	return result.RowsAffected, result.Error
}

func (r *followRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowers(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}
