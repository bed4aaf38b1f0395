// Package config loads host configuration from the environment.
// A .env file in the working directory is read first when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPassiveTick is the real-time cadence of the passive risk increase.
const DefaultPassiveTick = 5 * time.Minute

// Config is the resolved host configuration.
type Config struct {
	Addr        string
	DBPath      string
	PassiveTick time.Duration
	LocaleDir   string
	Language    string
	Profile     string
	Tuning      Tuning
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "data/outpost31.db",
		PassiveTick: DefaultPassiveTick,
		LocaleDir:   "locales",
		Language:    "en_US",
		Profile:     "default",
		Tuning:      DefaultTuning(),
	}
}

// Load reads .env (if any) and the OUTPOST_* variables on top of Default.
// Malformed values are reported as warnings and the default is kept.
func Load() (Config, []string) {
	_ = godotenv.Load() // A missing .env is normal outside development.
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves configuration from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, []string) {
	cfg := Default()
	var warnings []string

	if v, ok := lookup("OUTPOST_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("OUTPOST_DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup("OUTPOST_PASSIVE_TICK"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			warnings = append(warnings, fmt.Sprintf("invalid OUTPOST_PASSIVE_TICK %q, using %s", v, cfg.PassiveTick))
		} else {
			cfg.PassiveTick = d
		}
	}
	if v, ok := lookup("OUTPOST_LOCALE_DIR"); ok && v != "" {
		cfg.LocaleDir = v
	}
	if v, ok := lookup("OUTPOST_LANG"); ok && v != "" {
		cfg.Language = v
	}
	if v, ok := lookup("OUTPOST_PROFILE"); ok && v != "" {
		cfg.Profile = v
	}
	cfg.Tuning = TuningForProfile(cfg.Profile)

	return cfg, warnings
}
