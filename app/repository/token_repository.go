package repository

import (
	"strings"

	"github.com/yatube/yatube/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository implements the TokenRepository interface
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository instance
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) GetByUserID(userID uint) (*models.APIToken, error) {
	var token models.APIToken
	err := r.db.Where("user_id = ?", userID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetByHash resolves a token hash together with its user.
func (r *tokenRepository) GetByHash(hash string) (*models.APIToken, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var token models.APIToken
	err := r.db.Preload("User").Where("key_hash = ?", trimmed).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Save upserts on user_id so each user holds at most one token.
func (r *tokenRepository) Save(token *models.APIToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"key_hash", "prefix", "created_at", "last_used_at"}),
	}).Create(token).Error
}

func (r *tokenRepository) Touch(token *models.APIToken) error {
	token.Touch()
	return r.db.Model(&models.APIToken{}).Where("id = ?", token.ID).
		Update("last_used_at", token.LastUsedAt).Error
}
