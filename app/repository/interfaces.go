package repository

import (
	"github.com/yatube/yatube/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	UsernameExists(username string, exceptID uint) (bool, error)
}

// GroupRepository defines the interface for group-related database operations
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id uint) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]models.Group, error)
	SlugExists(slug string) (bool, error)
}

// PostRepository defines the interface for post-related database operations.
// Every listing is newest first with author and group preloaded.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id uint) (*models.Post, error)
	GetByIDAndAuthor(id uint, username string) (*models.Post, error)
	Update(post *models.Post) error
	SetThumbnail(id uint, imageKey, thumbKey string) (bool, error)
	List(offset, limit int) ([]models.Post, error)
	Count() (int64, error)
	ListByGroup(groupID uint, offset, limit int) ([]models.Post, error)
	CountByGroup(groupID uint) (int64, error)
	ListByAuthor(authorID uint, offset, limit int) ([]models.Post, error)
	CountByAuthor(authorID uint) (int64, error)
	ListFollowed(userID uint, offset, limit int) ([]models.Post, error)
	CountFollowed(userID uint) (int64, error)
}

// CommentRepository defines the interface for comment-related database operations
type CommentRepository interface {
	Create(comment *models.Comment) error
	ListByPost(postID uint) ([]models.Comment, error)
	CountByPost(postID uint) (int64, error)
}

// FollowRepository defines the interface for follow edges
type FollowRepository interface {
	Exists(userID, authorID uint) (bool, error)
	GetOrCreate(userID, authorID uint) (bool, error)
	Delete(userID, authorID uint) (int64, error)
	CountFollowing(userID uint) (int64, error)
	CountFollowers(authorID uint) (int64, error)
}

// TokenRepository defines the interface for API token storage
type TokenRepository interface {
	GetByUserID(userID uint) (*models.APIToken, error)
	GetByHash(hash string) (*models.APIToken, error)
	Save(token *models.APIToken) error
	Touch(token *models.APIToken) error
}

// ProviderAccountRepository defines the interface for OAuth identity links
type ProviderAccountRepository interface {
	Get(provider, providerUserID string) (*models.ProviderAccount, error)
	Create(account *models.ProviderAccount) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User            UserRepository
	Group           GroupRepository
	Post            PostRepository
	Comment         CommentRepository
	Follow          FollowRepository
	Token           TokenRepository
	ProviderAccount ProviderAccountRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:            NewUserRepository(db),
		Group:           NewGroupRepository(db),
		Post:            NewPostRepository(db),
		Comment:         NewCommentRepository(db),
		Follow:          NewFollowRepository(db),
		Token:           NewTokenRepository(db),
		ProviderAccount: NewProviderAccountRepository(db),
	}
}
