package agent

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	engine "github.com/superlintball/reconchess/engine"
)

func newTestSampler(seed uint64, workers int) *Sampler {
	return NewSampler(rand.New(rand.NewPCG(seed, 0)), DefaultRetryBudget, Pool{Workers: workers})
}

func TestAdvanceCapacityAndCyclicOrigin(t *testing.T) {
	a := fen(t, "4k3/8/8/8/8/8/8/4K3 b - - 0 1")
	b := fen(t, "k7/8/8/8/8/8/8/4K3 b - - 0 1")
	hyps := FilterOpponentMove(Pool{}, ParticleSet{a, b}, engine.Black, false, engine.NoSquare)
	require.Len(t, hyps, 2)

	out, fallbacks := newTestSampler(1, 1).Advance(hyps, 5)
	require.Len(t, out, 5)
	assert.Zero(t, fallbacks)

	for i, board := range out {
		assert.Equal(t, engine.White, board.Turn, "slot %d should have one opponent ply applied", i)
		assert.Equal(t, uint16(1), board.Ply)
		kings := board.PieceSquares(engine.Black)
		require.Len(t, kings, 1)
		// slots 0, 2, 4 descend from a (king on e8), 1 and 3 from b (king on a8)
		origin := engine.E8
		if i%2 == 1 {
			origin = engine.A8
		}
		assert.LessOrEqual(t, chebyshev(kings[0], origin), 1, "slot %d king on %v", i, kings[0])
	}
}

func chebyshev(a, b engine.Square) int {
	return max(abs(a.File()-b.File()), abs(a.Rank()-b.Rank()))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestAdvanceFallsBackToNullMove(t *testing.T) {
	b := engine.NewBoard()
	b.SetTurn(engine.Black)
	hyps := []Hypothesis{{Board: b, Candidates: []engine.Move{move(t, "e2e4")}}}

	out, fallbacks := newTestSampler(3, 1).Advance(hyps, 4)
	require.Len(t, out, 4)
	assert.Equal(t, 4, fallbacks)
	for _, got := range out {
		assert.Equal(t, b.Squares, got.Squares, "null move leaves the pieces alone")
		assert.Equal(t, engine.White, got.Turn)
	}
}

func TestAdvanceEmpty(t *testing.T) {
	out, fallbacks := newTestSampler(1, 1).Advance(nil, 10)
	assert.Nil(t, out)
	assert.Zero(t, fallbacks)
}

func TestFillCycles(t *testing.T) {
	a := engine.NewBoard()
	b := engine.EmptyBoard()
	out := newTestSampler(1, 1).Fill(ParticleSet{a, b}, 5)
	require.Len(t, out, 5)
	assert.Equal(t, ParticleSet{a, b, a, b, a}, out)

	out[0].RemovePieceAt(engine.E1)
	assert.Equal(t, engine.NewPiece(engine.White, engine.King), a.PieceAt(engine.E1), "fill must copy boards")

	assert.Nil(t, newTestSampler(1, 1).Fill(nil, 5))
}

func TestShufflePermutes(t *testing.T) {
	ps := make(ParticleSet, 16)
	for i := range ps {
		ps[i] = engine.EmptyBoard()
		ps[i].Ply = uint16(i)
	}
	newTestSampler(9, 1).Shuffle(ps)

	seen := make(map[uint16]bool)
	for _, b := range ps {
		seen[b.Ply] = true
	}
	assert.Len(t, seen, 16)
}

func TestAdvanceIndependentOfWorkerCount(t *testing.T) {
	hyps := FilterOpponentMove(Pool{}, NewParticleSet(engine.NewBoard(), 7), engine.White, false, engine.NoSquare)

	serial, _ := newTestSampler(42, 1).Advance(hyps, 50)
	parallel, _ := newTestSampler(42, 8).Advance(hyps, 50)
	assert.Equal(t, serial, parallel)

	other, _ := newTestSampler(43, 8).Advance(hyps, 50)
	assert.NotEqual(t, serial, other)
}

func TestPoolRunVisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 16} {
		hits := make([]int, 100)
		Pool{Workers: workers}.Run(len(hits), func(i int) { hits[i]++ })
		for i, h := range hits {
			require.Equal(t, 1, h, "workers=%d index %d", workers, i)
		}
	}
}
