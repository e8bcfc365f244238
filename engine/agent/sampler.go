package agent

import (
	"math/rand/v2"

	engine "github.com/superlintball/reconchess/engine"
)

// Sampler advances and resamples ensembles. Random draws inside per-particle
// work come from per-slot generators seeded from rng before fan-out, so the
// result does not depend on the worker count.
type Sampler struct {
	rng         *rand.Rand
	retryBudget int
	pool        Pool
}

// NewSampler returns a Sampler drawing from rng.
func NewSampler(rng *rand.Rand, retryBudget int, pool Pool) *Sampler {
	if retryBudget < 1 {
		retryBudget = DefaultRetryBudget
	}
	return &Sampler{rng: rng, retryBudget: retryBudget, pool: pool}
}

// Advance returns n boards. Slot i starts from hyps[i%len(hyps)] and applies
// one opponent move drawn from that hypothesis' candidates. A draw that is
// not pseudo-legal is redrawn up to the retry budget; after that the null
// move is used. fallbacks counts slots that ended on the fallback.
func (s *Sampler) Advance(hyps []Hypothesis, n int) (out ParticleSet, fallbacks int) {
	if len(hyps) == 0 || n <= 0 {
		return nil, 0
	}
	out = make(ParticleSet, n)
	fell := make([]bool, n)
	seeds := s.seeds(n)

	s.pool.Run(n, func(i int) {
		h := &hyps[i%len(hyps)]
		rng := slotRand(seeds[i])
		b := h.Board
		m, ok := drawTransition(rng, &b, h.Candidates, s.retryBudget)
		b.Push(m)
		out[i] = b
		fell[i] = !ok
	})

	for _, f := range fell {
		if f {
			fallbacks++
		}
	}
	return out, fallbacks
}

// drawTransition picks a candidate uniformly, redrawing while the pick is not
// pseudo-legal in b. ok is false when the budget ran out and the null move
// was substituted.
func drawTransition(rng *rand.Rand, b *engine.Board, cands []engine.Move, budget int) (m engine.Move, ok bool) {
	if len(cands) == 0 {
		return engine.NullMove, false
	}
	for attempt := 0; attempt < budget; attempt++ {
		m = cands[rng.IntN(len(cands))]
		if b.IsPseudoLegal(m) {
			return m, true
		}
	}
	return engine.NullMove, false
}

// Fill returns n boards cloned cyclically from survivors with no transition.
func (s *Sampler) Fill(survivors ParticleSet, n int) ParticleSet {
	if len(survivors) == 0 || n <= 0 {
		return nil
	}
	out := make(ParticleSet, n)
	for i := range out {
		out[i] = survivors[i%len(survivors)]
	}
	return out
}

// Shuffle permutes ps in place.
func (s *Sampler) Shuffle(ps ParticleSet) {
	s.rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
}

// seeds draws one seed per slot from the master generator.
func (s *Sampler) seeds(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = s.rng.Uint64()
	}
	return out
}

func slotRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
