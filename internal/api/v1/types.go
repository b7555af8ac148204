package apiv1

import (
	"strings"
	"time"

	"github.com/yatube/yatube/app/models"
	"github.com/yatube/yatube/internal/pkg/storage"
)

// User is the public user representation. The password is never included.
type User struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserInput carries writable user fields. Nil means the field was not sent.
type UserInput struct {
	Username  *string `json:"username" form:"username"`
	Email     *string `json:"email" form:"email"`
	FirstName *string `json:"first_name" form:"first_name"`
	LastName  *string `json:"last_name" form:"last_name"`
	Password  *string `json:"password" form:"password"`
}

type Group struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type GroupInput struct {
	Title       string `json:"title" form:"title"`
	Slug        string `json:"slug" form:"slug"`
	Description string `json:"description" form:"description"`
}

// Post references author and group by id; Image is the media URL or null.
type Post struct {
	ID      uint      `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Author  uint      `json:"author"`
	Group   *uint     `json:"group"`
	Image   *string   `json:"image"`
}

type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Detail is the error body for everything that is not a validation error.
type Detail struct {
	Detail string `json:"detail"`
}

func NewUser(u *models.User) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func NewGroup(g *models.Group) Group {
	return Group{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}

// NewPost serializes p. Relative media URLs are made absolute with baseURL.
func NewPost(p *models.Post, baseURL string) Post {
	out := Post{
		ID:      p.ID,
		Text:    p.Text,
		PubDate: p.PubDate,
		Author:  p.AuthorID,
		Group:   p.GroupID,
	}
	if p.HasImage() {
		u := storage.MediaURL(p.Image)
		if strings.HasPrefix(u, "/") {
			u = strings.TrimRight(baseURL, "/") + u
		}
		out.Image = &u
	}
	return out
}
