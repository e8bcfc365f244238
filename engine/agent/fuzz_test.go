package agent

import (
	"math/rand/v2"
	"testing"

	engine "github.com/superlintball/reconchess/engine"
)

// FuzzEstimatorCapacity plays random games against a hidden true board and
// checks the ensemble never changes size, whatever the evidence.
func FuzzEstimatorCapacity(f *testing.F) {
	f.Add(uint64(1), uint8(1), false)
	f.Add(uint64(2), uint8(7), true)
	f.Add(uint64(99), uint8(32), false)

	f.Fuzz(func(t *testing.T, seed uint64, size uint8, asWhite bool) {
		n := int(size%40) + 1
		e, err := NewEstimator(Config{NumParticles: n, RetryBudget: 5, Workers: 2, Seed: seed + 1})
		if err != nil {
			t.Fatal(err)
		}
		color := engine.Black
		if asWhite {
			color = engine.White
		}
		truth := engine.NewBoard()
		e.Start(color, truth)
		rng := rand.New(rand.NewPCG(seed, 3))

		for ply := 0; ply < 40; ply++ {
			if _, over := truth.Winner(); over {
				return
			}
			mover := truth.Turn
			taken := engine.NullMove
			if moves := truth.PseudoLegalMoves(); len(moves) > 0 && rng.IntN(10) > 0 {
				taken = truth.ReviseMove(moves[rng.IntN(len(moves))])
			}
			capSq, captured := truth.CaptureSquare(taken)
			truth.Push(taken)

			if mover != color {
				e.ObserveOpponentMove(captured, capSq)
				e.ObserveSense(truth.Sense(e.ChooseSense(nil)))
			} else {
				e.ObserveOwnMove(taken, captured, capSq)
			}
			if got := len(e.Particles()); got != n {
				t.Fatalf("ply %d: %d particles, want %d", ply, got, n)
			}
		}
	})
}
