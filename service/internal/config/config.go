// Package config reads bot settings from the environment, optionally seeded
// from .env files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/superlintball/reconchess/engine/agent"
)

// ErrInvalidValue is returned when a variable is set but cannot be used.
var ErrInvalidValue = errors.New("invalid config value")

// Tracker kinds accepted in RECON_TRACKER.
const (
	TrackerParticle = "particle"
	TrackerRepair   = "repair"
)

// Config is everything the bot and its driver need.
type Config struct {
	Particles        int
	RetryBudget      int
	Workers          int
	Seed             uint64
	Tracker          string
	SearchIterations int
	SearchDepth      int
	TurnLimit        int
	LogLevel         logrus.Level
}

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		Particles:        agent.DefaultNumParticles,
		RetryBudget:      agent.DefaultRetryBudget,
		Workers:          runtime.GOMAXPROCS(0),
		Tracker:          TrackerParticle,
		SearchIterations: 200,
		SearchDepth:      12,
		TurnLimit:        200,
		LogLevel:         logrus.InfoLevel,
	}
}

// Load reads the given .env files (or ./.env when none are given) if they
// exist, then the RECON_* environment. Variables already in the environment
// win over file values.
func Load(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, which has the signature of
// os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var err error

	if cfg.Particles, err = positiveInt(lookup, "RECON_PARTICLES", cfg.Particles); err != nil {
		return Config{}, err
	}
	if cfg.RetryBudget, err = positiveInt(lookup, "RECON_RETRY_BUDGET", cfg.RetryBudget); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = positiveInt(lookup, "RECON_WORKERS", cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.SearchIterations, err = positiveInt(lookup, "RECON_SEARCH_ITERATIONS", cfg.SearchIterations); err != nil {
		return Config{}, err
	}
	if cfg.SearchDepth, err = positiveInt(lookup, "RECON_SEARCH_DEPTH", cfg.SearchDepth); err != nil {
		return Config{}, err
	}
	if cfg.TurnLimit, err = positiveInt(lookup, "RECON_TURN_LIMIT", cfg.TurnLimit); err != nil {
		return Config{}, err
	}
	// engine.Rules holds the limit in a uint16
	if cfg.TurnLimit > math.MaxUint16 {
		return Config{}, fmt.Errorf("%w: RECON_TURN_LIMIT=%d, want at most %d", ErrInvalidValue, cfg.TurnLimit, math.MaxUint16)
	}

	if v, ok := lookup("RECON_SEED"); ok && v != "" {
		seed, perr := strconv.ParseUint(v, 10, 64)
		if perr != nil {
			return Config{}, fmt.Errorf("%w: RECON_SEED=%q", ErrInvalidValue, v)
		}
		cfg.Seed = seed
	}

	if v, ok := lookup("RECON_TRACKER"); ok && v != "" {
		v = strings.ToLower(v)
		if v != TrackerParticle && v != TrackerRepair {
			return Config{}, fmt.Errorf("%w: RECON_TRACKER=%q, want %q or %q", ErrInvalidValue, v, TrackerParticle, TrackerRepair)
		}
		cfg.Tracker = v
	}

	if v, ok := lookup("RECON_LOG_LEVEL"); ok && v != "" {
		lvl, perr := logrus.ParseLevel(v)
		if perr != nil {
			return Config{}, fmt.Errorf("%w: RECON_LOG_LEVEL=%q", ErrInvalidValue, v)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func positiveInt(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s=%q, want a positive integer", ErrInvalidValue, key, v)
	}
	return n, nil
}

// Agent returns the estimator settings.
func (c Config) Agent() agent.Config {
	return agent.Config{
		NumParticles: c.Particles,
		RetryBudget:  c.RetryBudget,
		Workers:      c.Workers,
		Seed:         c.Seed,
	}
}
