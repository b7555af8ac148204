package models

import (
	"regexp"
	"strings"
	"unicode"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Group is a named category posts may optionally belong to.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Slug        string `gorm:"uniqueIndex;type:varchar(100);not null" json:"slug" validate:"required,max=100,slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (g *Group) Validate() error {
	return validate.Struct(g)
}

// Slugify lowercases s and collapses everything that is not a letter or digit
// into single dashes. Non-ASCII letters are dropped.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) || r == '_':
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
