// Package agent implements belief tracking for reconnaissance chess: a
// particle filter over complete board states, plus a single-board repair
// tracker with the same interface.
package agent

import (
	engine "github.com/superlintball/reconchess/engine"
	"golang.org/x/sync/errgroup"
)

// ParticleSet is an ensemble of hypothetical boards. engine.Board is a flat
// value type, so every element is an independent copy and no two particles
// share state.
type ParticleSet []engine.Board

// NewParticleSet returns n copies of initial.
func NewParticleSet(initial engine.Board, n int) ParticleSet {
	ps := make(ParticleSet, n)
	for i := range ps {
		ps[i] = initial
	}
	return ps
}

// Clone returns a copy that shares no backing array with ps.
func (ps ParticleSet) Clone() ParticleSet {
	if ps == nil {
		return nil
	}
	out := make(ParticleSet, len(ps))
	copy(out, ps)
	return out
}

// Hypothesis pairs a surviving board with the opponent moves still
// consistent with the evidence that kept it alive.
type Hypothesis struct {
	Board      engine.Board
	Candidates []engine.Move
}

// Pool runs independent per-particle work on a bounded number of goroutines.
// The zero value runs everything inline.
type Pool struct {
	Workers int
}

// Run calls fn(i) for every i in [0, n). Calls for different i must not
// share mutable state. Run returns after all calls complete.
func (p Pool) Run(n int, fn func(i int)) {
	if p.Workers <= 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(p.Workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
