package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })

	SetLevel(LevelWarn)
	assert.False(t, Enabled(LevelInfo))
	assert.True(t, Enabled(LevelError))

	t.Setenv("LOG_LEVEL", "debug")
	InitFromEnv()
	assert.True(t, Enabled(LevelDebug))
	Debugf("visible at %s", "debug")
}
