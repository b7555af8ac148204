package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	Env = map[string]string{"YATUBE_TEST_KEY": "from-map"}
	t.Cleanup(func() { Env = nil })
	t.Setenv("YATUBE_TEST_KEY", "from-os")

	assert.Equal(t, "from-map", GetEnv("YATUBE_TEST_KEY", "def"))
}

func TestGetEnvFallsBackToOSAndDefault(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("YATUBE_TEST_OS", "os")

	assert.Equal(t, "os", GetEnv("YATUBE_TEST_OS", "def"))
	assert.Equal(t, "def", GetEnv("YATUBE_TEST_MISSING", "def"))
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{"N": "42", "BAD": "x"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("N", 1))
	assert.Equal(t, 7, GetEnvInt("BAD", 7))
	assert.Equal(t, 3, GetEnvInt("UNSET_INT", 3))
}

func TestGetEnvBool(t *testing.T) {
	Env = map[string]string{"A": "true", "B": "0", "C": "on"}
	t.Cleanup(func() { Env = nil })

	assert.True(t, GetEnvBool("A", false))
	assert.False(t, GetEnvBool("B", true))
	assert.True(t, GetEnvBool("C", false))
	assert.True(t, GetEnvBool("UNSET_BOOL", true))
}
