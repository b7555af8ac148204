package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineLoadsAllTemplates(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.Load())

	for _, name := range []string{
		"layouts/main",
		"posts/index", "posts/group", "posts/profile", "posts/post", "posts/new", "posts/follow",
		"auth/login", "auth/signup",
		"misc/404", "misc/500",
	} {
		assert.NotNil(t, engine.Templates.Lookup(name), name)
	}
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "two", 3, "skipped", "dangling")
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, m)
}
