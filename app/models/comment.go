package models

import (
	"time"
)

type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	PostID   uint      `gorm:"index;not null" json:"post"`
	Post     Post      `gorm:"foreignKey:PostID" json:"-"`
	AuthorID uint      `gorm:"index;not null" json:"author"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required"`
	Created  time.Time `gorm:"autoCreateTime" json:"created"`
}
