package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Test":             "test",
		"  Go   Lang  ":    "go-lang",
		"cats & dogs":      "cats-dogs",
		"already-a-slug":   "already-a-slug",
		"snake_case_title": "snake_case_title",
		"Привет мир":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestGroupValidate(t *testing.T) {
	assert.NoError(t, (&Group{Title: "Test", Slug: "test"}).Validate())
	assert.Error(t, (&Group{Title: "Test", Slug: "not a slug"}).Validate())
	assert.Error(t, (&Group{Slug: "test"}).Validate())
}

func TestPostAuthorship(t *testing.T) {
	p := Post{AuthorID: 3}
	assert.True(t, p.IsAuthoredBy(3))
	assert.False(t, p.IsAuthoredBy(4))
	assert.False(t, p.IsAuthoredBy(0))

	assert.Equal(t, "", p.DisplayImage())
	p.Image = "posts/a.jpg"
	assert.Equal(t, "posts/a.jpg", p.DisplayImage())
	p.Thumbnail = "posts/thumbs/a.webp"
	assert.Equal(t, "posts/thumbs/a.webp", p.DisplayImage())
}
