package raw

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " warn ")
	c := New().Prefix("LOG_")
	assert.Equal(t, "warn", c.Get("LEVEL", "debug"))
	assert.Equal(t, "console", c.Get("FORMAT", "console"))
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	for env, want := range map[string]bool{"1": true, "TRUE": true, "yes": true, "0": false, "off": true, "": true} {
		t.Setenv("LOG_CALLER", env)
		assert.Equal(t, want, c.GetBool("CALLER", true), "env %q", env)
	}
}
