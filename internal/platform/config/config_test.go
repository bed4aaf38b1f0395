package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookupDefaults(t *testing.T) {
	cfg, warnings := FromLookup(lookupFrom(nil))

	assert.Empty(t, warnings)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.PassiveTick)
	assert.Equal(t, DefaultTuning(), cfg.Tuning)
}

func TestFromLookupOverrides(t *testing.T) {
	cfg, warnings := FromLookup(lookupFrom(map[string]string{
		"OUTPOST_ADDR":         ":9999",
		"OUTPOST_DB_PATH":      "/tmp/o31.db",
		"OUTPOST_PASSIVE_TICK": "30s",
		"OUTPOST_LANG":         "es_ES",
		"OUTPOST_PROFILE":      "low",
	}))

	assert.Empty(t, warnings)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "/tmp/o31.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.PassiveTick)
	assert.Equal(t, "es_ES", cfg.Language)
	assert.Equal(t, LowResourceTuning(), cfg.Tuning)
}

func TestFromLookupRejectsBadTick(t *testing.T) {
	cfg, warnings := FromLookup(lookupFrom(map[string]string{"OUTPOST_PASSIVE_TICK": "soon"}))

	assert.Len(t, warnings, 1)
	assert.Equal(t, DefaultPassiveTick, cfg.PassiveTick)
}
