package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1000, cfg.Particles)
	assert.Equal(t, 50, cfg.RetryBudget)
	assert.Equal(t, TrackerParticle, cfg.Tracker)
	require.NoError(t, cfg.Agent().Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		"RECON_PARTICLES":         "64",
		"RECON_RETRY_BUDGET":      "10",
		"RECON_WORKERS":           "3",
		"RECON_SEED":              "12345",
		"RECON_TRACKER":           "Repair",
		"RECON_SEARCH_ITERATIONS": "40",
		"RECON_SEARCH_DEPTH":      "6",
		"RECON_TURN_LIMIT":        "90",
		"RECON_LOG_LEVEL":         "debug",
	}))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Particles)
	assert.Equal(t, 10, cfg.RetryBudget)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, uint64(12345), cfg.Seed)
	assert.Equal(t, TrackerRepair, cfg.Tracker)
	assert.Equal(t, 40, cfg.SearchIterations)
	assert.Equal(t, 6, cfg.SearchDepth)
	assert.Equal(t, 90, cfg.TurnLimit)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)

	a := cfg.Agent()
	assert.Equal(t, 64, a.NumParticles)
	assert.Equal(t, uint64(12345), a.Seed)
}

func TestFromEnvRejects(t *testing.T) {
	bad := map[string]string{
		"RECON_PARTICLES":    "0",
		"RECON_RETRY_BUDGET": "many",
		"RECON_WORKERS":      "-2",
		"RECON_SEED":         "-1",
		"RECON_TRACKER":      "oracle",
		"RECON_LOG_LEVEL":    "loud",
		"RECON_TURN_LIMIT":   "1.5",
	}
	for k, v := range bad {
		t.Run(k, func(t *testing.T) {
			_, err := FromEnv(mapLookup(map[string]string{k: v}))
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestFromEnvBoundsTurnLimit(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{"RECON_TURN_LIMIT": "65535"}))
	require.NoError(t, err)
	assert.Equal(t, 65535, cfg.TurnLimit)

	_, err = FromEnv(mapLookup(map[string]string{"RECON_TURN_LIMIT": "70000"}))
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.env")
	require.NoError(t, os.WriteFile(path, []byte("RECON_PARTICLES=77\nRECON_TRACKER=repair\n"), 0o600))
	t.Setenv("RECON_TRACKER", "particle")
	// godotenv sets variables it loads; clear ours afterwards
	t.Cleanup(func() { os.Unsetenv("RECON_PARTICLES") })

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Particles)
	assert.Equal(t, TrackerParticle, cfg.Tracker, "the environment wins over the file")
}
