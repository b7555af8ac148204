package models

import (
	"time"
)

type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Text         string     `gorm:"type:text;not null" json:"text" validate:"required"`
	PubDate      time.Time  `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID     uint       `gorm:"index;not null" json:"author"`
	Author       User       `gorm:"foreignKey:AuthorID" json:"-"`
	GroupID      *uint      `gorm:"index" json:"group"`
	Group        *Group     `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"-"`
	Image        string     `gorm:"type:varchar(255);default:null" json:"image"`
	ImageWidth   int        `json:"-"`
	ImageHeight  int        `json:"-"`
	ImageTakenAt *time.Time `gorm:"default:null" json:"-"`
	Thumbnail    string     `gorm:"type:varchar(255);default:null" json:"-"`
	Comments     []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasImage reports whether an image is attached.
func (p Post) HasImage() bool {
	return p.Image != ""
}

// DisplayImage prefers the generated thumbnail over the original upload.
func (p Post) DisplayImage() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	return p.Image
}

// IsAuthoredBy is the only authorization rule for editing a post.
func (p Post) IsAuthoredBy(userID uint) bool {
	return userID != 0 && p.AuthorID == userID
}
