package config_test

import (
	"testing"
	"time"

	"github.com/limbo/fittrack/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestTypedGetters(t *testing.T) {
	cfg := config.New()
	t.Setenv("FT_STRING", " value ")
	t.Setenv("FT_INT", "42")
	t.Setenv("FT_BAD_INT", "forty two")
	t.Setenv("FT_BOOL", "true")
	t.Setenv("FT_DURATION", "3s")
	t.Setenv("FT_ZONE", "Europe/Berlin")
	t.Setenv("FT_BAD_ZONE", "Mars/Olympus")

	assert.Equal(t, "value", cfg.GetStringOr("FT_STRING", "fallback"))
	assert.Equal(t, "fallback", cfg.GetStringOr("FT_MISSING", "fallback"))
	assert.Equal(t, 42, cfg.GetInt("FT_INT", 1))
	assert.Equal(t, 1, cfg.GetInt("FT_BAD_INT", 1))
	assert.True(t, cfg.GetBool("FT_BOOL", false))
	assert.False(t, cfg.GetBool("FT_MISSING", false))
	assert.Equal(t, 3*time.Second, cfg.GetDuration("FT_DURATION", time.Second))
	assert.Equal(t, time.Second, cfg.GetDuration("FT_MISSING", time.Second))
	assert.Equal(t, "Europe/Berlin", cfg.GetLocation("FT_ZONE").String())
	assert.Equal(t, time.Local, cfg.GetLocation("FT_BAD_ZONE"))
}
