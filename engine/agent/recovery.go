package agent

import (
	"math/rand/v2"

	engine "github.com/superlintball/reconchess/engine"
)

// Anchor remembers the last healthy ensemble and the own moves made since,
// so a collapsed ensemble can be rebuilt by replaying those moves.
type Anchor struct {
	snapshot        ParticleSet
	log             []engine.Move
	movesSinceReset int
}

// NewAnchor anchors on a copy of initial with an empty log.
func NewAnchor(initial ParticleSet) *Anchor {
	return &Anchor{snapshot: initial.Clone()}
}

// Record appends an own move to the log. Null records "no move taken".
func (a *Anchor) Record(m engine.Move) { a.log = append(a.log, m) }

// Log returns a copy of the own moves made since the anchor.
func (a *Anchor) Log() []engine.Move {
	out := make([]engine.Move, len(a.log))
	copy(out, a.log)
	return out
}

// Snapshot returns a copy of the anchored ensemble.
func (a *Anchor) Snapshot() ParticleSet { return a.snapshot.Clone() }

// MovesSinceReset counts the degraded updates since the last healthy or
// recovered ensemble.
func (a *Anchor) MovesSinceReset() int { return a.movesSinceReset }

// Commit applies the state transition for one evidence update. A healthy
// ensemble becomes the new anchor and clears the log; a degraded one only
// bumps the counter. Collapsed ensembles are handled by Recover.
func (a *Anchor) Commit(h Health, current ParticleSet) {
	switch h {
	case Healthy:
		a.rebase(current)
	case Degraded:
		a.movesSinceReset++
	}
}

// rebase makes ps the anchor and empties the log.
func (a *Anchor) rebase(ps ParticleSet) {
	a.snapshot = ps.Clone()
	a.log = a.log[:0]
	a.movesSinceReset = 0
}

// Recover rebuilds an ensemble of size n from the anchor by replaying every
// logged own move. In each step every board draws an opponent move after
// which the own move is pseudo-legal, then applies the own move. Boards that
// exhaust the retry budget copy the nearest earlier successful board of the
// same step. The replayed opponent moves are not checked against the
// evidence seen since the anchor.
//
// The recovered ensemble becomes the new anchor. fallbacks counts boards
// that were replaced by a neighbour copy.
func (a *Anchor) Recover(s *Sampler, own engine.Color, n int) (out ParticleSet, fallbacks int) {
	boards := a.snapshot.Clone()
	if len(boards) == 0 {
		return nil, 0
	}
	for _, m := range a.log {
		fallbacks += replayStep(s, boards, own, m)
	}
	out = s.Fill(boards, n)
	s.Shuffle(out)
	a.rebase(out)
	return out, fallbacks
}

// replayStep advances boards in place by one random opponent move followed
// by own. It returns the number of boards that needed a neighbour copy.
func replayStep(s *Sampler, boards ParticleSet, own engine.Color, m engine.Move) int {
	n := len(boards)
	next := make(ParticleSet, n)
	ok := make([]bool, n)
	seeds := s.seeds(n)

	s.pool.Run(n, func(i int) {
		b := boards[i]
		b.SetTurn(own.Other())
		if replayOne(slotRand(seeds[i]), &b, m, s.retryBudget) {
			next[i] = b
			ok[i] = true
		}
	})

	anyOK := false
	for _, v := range ok {
		if v {
			anyOK = true
			break
		}
	}
	if !anyOK {
		for i := range boards {
			boards[i].SetTurn(own.Other())
			boards[i].Push(engine.NullMove)
			boards[i].Push(engine.NullMove)
		}
		return n
	}

	failed := 0
	for i := range boards {
		if ok[i] {
			boards[i] = next[i]
			continue
		}
		failed++
		for k := 1; k < n; k++ {
			j := (i - k + n) % n
			if ok[j] {
				boards[i] = next[j]
				break
			}
		}
	}
	return failed
}

// replayOne draws opponent moves on b (opponent to move) until own becomes
// pseudo-legal, then applies both. b is modified only on success.
func replayOne(rng *rand.Rand, b *engine.Board, own engine.Move, budget int) bool {
	moves := append(b.PseudoLegalMoves(), engine.NullMove)
	for attempt := 0; attempt < budget; attempt++ {
		tmp := *b
		tmp.Push(moves[rng.IntN(len(moves))])
		if tmp.IsPseudoLegal(own) {
			tmp.Push(own)
			*b = tmp
			return true
		}
	}
	return false
}
