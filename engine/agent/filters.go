package agent

import (
	engine "github.com/superlintball/reconchess/engine"
)

// FilterOpponentMove keeps the hypotheses that can explain the opponent's
// last move. With captured set, only moves landing on captureSquare are
// retained; otherwise only non-captures are. The null move is always added
// to the retained set. A hypothesis is dropped when it had moves but none of
// them were retained.
func FilterOpponentMove(pool Pool, ps ParticleSet, opponent engine.Color, captured bool, captureSquare engine.Square) []Hypothesis {
	out := make([]Hypothesis, len(ps))
	keep := make([]bool, len(ps))

	pool.Run(len(ps), func(i int) {
		b := ps[i]
		b.SetTurn(opponent)
		cands, ok := candidateMoves(&b, captured, captureSquare)
		if !ok {
			return
		}
		out[i] = Hypothesis{Board: b, Candidates: cands}
		keep[i] = true
	})

	kept := out[:0]
	for i := range out {
		if keep[i] {
			kept = append(kept, out[i])
		}
	}
	return kept
}

// candidateMoves returns the retained opponent moves plus the null move, or
// ok=false when b must be dropped.
func candidateMoves(b *engine.Board, captured bool, captureSquare engine.Square) (cands []engine.Move, ok bool) {
	moves := b.PseudoLegalMoves()
	cands = moves[:0]
	for _, m := range moves {
		if captured {
			if m.To == captureSquare {
				cands = append(cands, m)
			}
		} else if !b.IsCapture(m) {
			cands = append(cands, m)
		}
	}
	if len(cands) == 0 && len(moves) > 0 {
		return nil, false
	}
	return append(cands, engine.NullMove), true
}

// FilterSense keeps the boards whose occupancy agrees with every observed
// square, empty squares included.
func FilterSense(pool Pool, ps ParticleSet, observed []engine.SquarePiece) ParticleSet {
	keep := make([]bool, len(ps))
	pool.Run(len(ps), func(i int) {
		keep[i] = matchesSense(&ps[i], observed)
	})

	out := make(ParticleSet, 0, len(ps))
	for i := range ps {
		if keep[i] {
			out = append(out, ps[i])
		}
	}
	return out
}

func matchesSense(b *engine.Board, observed []engine.SquarePiece) bool {
	for _, sp := range observed {
		if b.PieceAt(sp.Square) != sp.Piece {
			return false
		}
	}
	return true
}

// FilterOwnMove applies the move we actually made. A null taken move is
// applied to every board. Otherwise a board survives only if taken is
// pseudo-legal there and its capture-ness agrees with captured.
func FilterOwnMove(pool Pool, ps ParticleSet, own engine.Color, taken engine.Move, captured bool) ParticleSet {
	out := make(ParticleSet, len(ps))
	keep := make([]bool, len(ps))

	pool.Run(len(ps), func(i int) {
		b := ps[i]
		b.SetTurn(own)
		if !taken.IsNull() {
			if !b.IsPseudoLegal(taken) || b.IsCapture(taken) != captured {
				return
			}
		}
		b.Push(taken)
		out[i] = b
		keep[i] = true
	})

	kept := out[:0]
	for i := range out {
		if keep[i] {
			kept = append(kept, out[i])
		}
	}
	return kept
}
