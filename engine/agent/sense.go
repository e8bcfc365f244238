package agent

import (
	"math"
	"math/rand/v2"

	engine "github.com/superlintball/reconchess/engine"
)

// ChooseSense picks a sense center. Edge squares waste part of the 3x3
// window, so they are dropped first. The destinations of moves stand in for
// the territory we already know about. The interior candidates among them
// give a mean square index, and the interior candidate closest to that mean
// wins, whether or not it is itself a destination; ties keep candidate order.
// Without such overlap the pick is uniform over the interior candidates, then
// over all candidates, then over the interior of the board.
func ChooseSense(rng *rand.Rand, candidates []engine.Square, moves []engine.Move) engine.Square {
	interior := make([]engine.Square, 0, len(candidates))
	for _, sq := range candidates {
		if sq.Valid() && !sq.IsEdge() {
			interior = append(interior, sq)
		}
	}
	if len(interior) == 0 {
		if len(candidates) > 0 {
			return candidates[rng.IntN(len(candidates))]
		}
		return interiorSquares[rng.IntN(len(interiorSquares))]
	}

	var known [64]bool
	for _, m := range moves {
		if m.To.Valid() {
			known[m.To] = true
		}
	}
	var overlap []engine.Square
	for _, sq := range interior {
		if known[sq] {
			overlap = append(overlap, sq)
		}
	}
	if len(overlap) == 0 {
		return interior[rng.IntN(len(interior))]
	}

	sum := 0
	for _, sq := range overlap {
		sum += int(sq)
	}
	mean := float64(sum) / float64(len(overlap))

	best, bestDist := interior[0], math.Inf(1)
	for _, sq := range interior {
		if d := math.Abs(float64(sq) - mean); d < bestDist {
			best, bestDist = sq, d
		}
	}
	return best
}

var interiorSquares = func() []engine.Square {
	var out []engine.Square
	for _, sq := range engine.AllSquares() {
		if !sq.IsEdge() {
			out = append(out, sq)
		}
	}
	return out
}()
