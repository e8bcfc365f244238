package agent

import (
	"errors"
	"fmt"
	"runtime"
)

const (
	// DefaultNumParticles is the ensemble size N.
	DefaultNumParticles = 1000
	// DefaultRetryBudget caps every random redraw loop.
	DefaultRetryBudget = 50
)

// ErrInvalidConfig is returned by NewEstimator for unusable settings.
var ErrInvalidConfig = errors.New("invalid estimator config")

// Config holds estimator settings.
type Config struct {
	NumParticles int    // ensemble size N; every update leaves exactly N particles
	RetryBudget  int    // max draws per transition or replay step before degrading
	Workers      int    // goroutines used for per-particle work; 1 = inline
	Seed         uint64 // RNG seed; 0 picks a random one
}

// DefaultConfig returns the standard estimator settings.
func DefaultConfig() Config {
	return Config{
		NumParticles: DefaultNumParticles,
		RetryBudget:  DefaultRetryBudget,
		Workers:      runtime.GOMAXPROCS(0),
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case c.NumParticles < 1:
		return fmt.Errorf("%w: NumParticles = %d, want >= 1", ErrInvalidConfig, c.NumParticles)
	case c.RetryBudget < 1:
		return fmt.Errorf("%w: RetryBudget = %d, want >= 1", ErrInvalidConfig, c.RetryBudget)
	case c.Workers < 1:
		return fmt.Errorf("%w: Workers = %d, want >= 1", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Health classifies the ensemble after one evidence update.
type Health uint8

const (
	Healthy   Health = iota // 0: more than half survived; ensemble becomes the anchor
	Degraded                // 1: some survived; anchor untouched
	Collapsed               // 2: none survived; rebuilt from the anchor
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Collapsed:
		return "collapsed"
	}
	return "unknown"
}

// Classify maps a survivor count to a Health for an ensemble of size n.
func Classify(kept, n int) Health {
	switch {
	case kept == 0:
		return Collapsed
	case 2*kept > n:
		return Healthy
	}
	return Degraded
}

// Evidence names the kind of observation an update consumed.
type Evidence string

const (
	EvidenceOpponentMove Evidence = "opponent_move"
	EvidenceSense        Evidence = "sense"
	EvidenceOwnMove      Evidence = "own_move"
)
