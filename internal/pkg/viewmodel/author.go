package viewmodel

import "github.com/yatube/yatube/app/models"

// AuthorCard is the sidebar shown on profile and post pages.
type AuthorCard struct {
	Author      *models.User
	PostCount   int64
	Followers   int64
	Following   int64
	IsFollowing bool
	// CanFollow is false for anonymous visitors and for the author themself.
	CanFollow bool
}
