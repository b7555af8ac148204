package repository

import (
	"github.com/yatube/yatube/app/models"
	"gorm.io/gorm"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// feed is the base query shared by every listing.
func (r *postRepository) feed() *gorm.DB {
	return r.db.Model(&models.Post{}).
		Preload("Author").Preload("Group").
		Order("posts.pub_date DESC").Order("posts.id DESC")
}

func (r *postRepository) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Group").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByIDAndAuthor only matches when the post belongs to username.
func (r *postRepository) GetByIDAndAuthor(id uint, username string) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Group").
		Joins("JOIN users ON users.id = posts.author_id").
		Where("posts.id = ? AND users.username = ?", id, username).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update saves the post's editable columns in place.
func (r *postRepository) Update(post *models.Post) error {
	return r.db.Model(post).Select("Text", "GroupID", "Image", "ImageWidth", "ImageHeight", "ImageTakenAt", "Thumbnail").
		Updates(post).Error
}

// SetThumbnail records thumbKey only while the post still shows imageKey.
func (r *postRepository) SetThumbnail(id uint, imageKey, thumbKey string) (bool, error) {
	res := r.db.Model(&models.Post{}).Where("id = ? AND image = ?", id, imageKey).Update("thumbnail", thumbKey)
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) List(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) ListByGroup(groupID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("posts.group_id = ?", groupID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByGroup(groupID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *postRepository) ListByAuthor(authorID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("posts.author_id = ?", authorID).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *postRepository) followedAuthors(userID uint) *gorm.DB {
	return r.db.Model(&models.Follow{}).Select("author_id").Where("user_id = ?", userID)
}

// ListFollowed returns posts written by authors userID follows.
func (r *postRepository) ListFollowed(userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.feed().Where("posts.author_id IN (?)", r.followedAuthors(userID)).
		Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountFollowed(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id IN (?)", r.followedAuthors(userID)).Count(&count).Error
	return count, err
}
