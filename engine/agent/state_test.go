package agent

import (
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	engine "github.com/superlintball/reconchess/engine"
)

func newTestEstimator(t *testing.T, n, workers int, seed uint64, opts ...Option) *Estimator {
	t.Helper()
	e, err := NewEstimator(Config{
		NumParticles: n,
		RetryBudget:  DefaultRetryBudget,
		Workers:      workers,
		Seed:         seed,
	}, opts...)
	require.NoError(t, err)
	return e
}

// TestEndToEndSmallEnsemble walks four particles through a quiet opponent
// move, an agreeing sense and a contradicting sense.
func TestEndToEndSmallEnsemble(t *testing.T) {
	e := newTestEstimator(t, 4, 1, 42)
	e.Start(engine.Black, engine.NewBoard())

	e.ObserveOpponentMove(false, engine.NoSquare)
	ps := e.Particles()
	require.Len(t, ps, 4)
	for _, b := range ps {
		assert.Equal(t, uint16(1), b.Ply, "exactly one opponent ply")
	}
	assert.Equal(t, Healthy, e.Health())

	start := engine.NewBoard()
	e.ObserveSense(start.Sense(engine.B7))
	after := e.Particles()
	require.Len(t, after, 4)
	assert.ElementsMatch(t, ps, after, "agreeing sense keeps every particle")
	assert.Equal(t, Healthy, e.Health())

	e.ObserveSense([]engine.SquarePiece{{Square: engine.D5, Piece: engine.NewPiece(engine.White, engine.King)}})
	assert.Equal(t, Collapsed, e.Health())
	recovered := e.Particles()
	require.Len(t, recovered, 4)
	for _, b := range recovered {
		assert.True(t, b.HasKing(engine.White))
		assert.True(t, b.HasKing(engine.Black))
	}
	assert.Zero(t, e.MovesSinceReset())
}

func TestSingleParticleCollapseRecovers(t *testing.T) {
	e := newTestEstimator(t, 1, 1, 7)
	e.Start(engine.White, engine.NewBoard())

	e.ObserveSense([]engine.SquarePiece{{Square: engine.E4, Piece: engine.NewPiece(engine.Black, engine.Queen)}})
	assert.Equal(t, Collapsed, e.Health())
	require.Len(t, e.Particles(), 1)
	assert.Equal(t, engine.NewBoard().Squares, e.Particles()[0].Squares)
}

func TestSenseSurvivorsMatchObservation(t *testing.T) {
	e := newTestEstimator(t, 200, 4, 3)
	e.Start(engine.Black, engine.NewBoard())
	e.ObserveOpponentMove(false, engine.NoSquare)

	truth := engine.NewBoard()
	truth.Push(engine.Move{From: engine.E2, To: engine.E4})
	observed := truth.Sense(engine.E3)
	e.ObserveSense(observed)

	require.NotEqual(t, Collapsed, e.Health(), "e2e4 is one of twenty equally likely replies")
	for _, b := range e.Particles() {
		for _, sp := range observed {
			assert.Equal(t, sp.Piece, b.PieceAt(sp.Square))
		}
	}
}

func TestOpponentCaptureLandsOnReportedSquare(t *testing.T) {
	e := newTestEstimator(t, 64, 2, 21)
	e.Start(engine.White, fen(t, "4k3/8/5n2/8/8/8/4P3/4K3 w - - 0 1"))
	e.ObserveOwnMove(move(t, "e2e4"), false, engine.NoSquare)

	// only the f6 knight can take on e4
	e.ObserveOpponentMove(true, engine.E4)
	knight := engine.NewPiece(engine.Black, engine.Knight)
	pawn := engine.NewPiece(engine.White, engine.Pawn)
	ps := e.Particles()
	require.Len(t, ps, 64)
	for _, b := range ps {
		if b.PieceAt(engine.E4) == knight {
			assert.Equal(t, engine.NoPiece, b.PieceAt(engine.F6))
			continue
		}
		// otherwise the opponent passed, which is always a candidate
		assert.Equal(t, pawn, b.PieceAt(engine.E4), "board %s", b.FEN())
		assert.Equal(t, knight, b.PieceAt(engine.F6), "board %s", b.FEN())
	}
}

func TestAnchorFreshAfterHealthyUpdate(t *testing.T) {
	e := newTestEstimator(t, 50, 1, 5)
	e.Start(engine.White, engine.NewBoard())

	e.ObserveOwnMove(engine.Move{From: engine.E2, To: engine.E4}, false, engine.NoSquare)
	assert.Equal(t, Healthy, e.Health())
	assert.Empty(t, e.OwnActionLog())
	assert.Zero(t, e.MovesSinceReset())
	assert.Equal(t, engine.Black, e.Board().Turn)
}

func TestDegradedUpdateKeepsLog(t *testing.T) {
	e := newTestEstimator(t, 400, 2, 9)
	e.Start(engine.White, engine.NewBoard())
	e.ObserveOwnMove(engine.Move{From: engine.E2, To: engine.E4}, false, engine.NoSquare)
	e.ObserveOpponentMove(false, engine.NoSquare)

	// only particles where black pushed d7d5 explain a white pawn capture on d5
	e.ObserveOwnMove(engine.Move{From: engine.E4, To: engine.D5}, true, engine.D5)
	require.Equal(t, Degraded, e.Health())
	assert.Equal(t, 1, e.MovesSinceReset())
	assert.Equal(t, []engine.Move{{From: engine.E4, To: engine.D5}}, e.OwnActionLog())
	for _, b := range e.Particles() {
		assert.Equal(t, engine.NewPiece(engine.White, engine.Pawn), b.PieceAt(engine.D5))
	}
}

func TestCollapseReplaysOwnMoves(t *testing.T) {
	e := newTestEstimator(t, 30, 1, 13)
	e.Start(engine.White, engine.NewBoard())
	e.ObserveOwnMove(engine.Move{From: engine.E2, To: engine.E4}, false, engine.NoSquare)
	e.ObserveOpponentMove(false, engine.NoSquare)
	start := engine.NewBoard()
	e.ObserveSense(start.Sense(engine.B2))

	// b1a8 is never a knight move, so the report falsifies every particle
	e.ObserveOwnMove(engine.Move{From: engine.B1, To: engine.A8}, true, engine.A8)
	assert.Equal(t, Collapsed, e.Health())
	require.Len(t, e.Particles(), 30)
	assert.Empty(t, e.OwnActionLog())
}

func TestCapacityOverRandomGame(t *testing.T) {
	const n = 64
	e := newTestEstimator(t, n, 4, 21)
	truth := engine.NewBoard()
	e.Start(engine.Black, truth)
	rng := rand.New(rand.NewPCG(21, 0))

	for ply := 0; ply < 80; ply++ {
		if _, over := truth.Winner(); over {
			break
		}
		mover := truth.Turn
		taken := engine.NullMove
		if moves := truth.PseudoLegalMoves(); len(moves) > 0 {
			taken = truth.ReviseMove(moves[rng.IntN(len(moves))])
		}
		capSq, captured := truth.CaptureSquare(taken)
		truth.Push(taken)

		if mover == engine.White {
			e.ObserveOpponentMove(captured, capSq)
			require.Len(t, e.Particles(), n)
			center := e.ChooseSense(nil)
			observed := truth.Sense(center)
			e.ObserveSense(observed)
			require.Len(t, e.Particles(), n)
			if e.Health() != Collapsed {
				for _, b := range e.Particles() {
					for _, sp := range observed {
						require.Equal(t, sp.Piece, b.PieceAt(sp.Square))
					}
				}
			}
		} else {
			e.ObserveOwnMove(taken, captured, capSq)
			require.Len(t, e.Particles(), n)
		}
	}
}

func TestEstimatorIndependentOfWorkerCount(t *testing.T) {
	run := func(workers int) ParticleSet {
		e := newTestEstimator(t, 100, workers, 77)
		e.Start(engine.Black, engine.NewBoard())
		e.ObserveOpponentMove(false, engine.NoSquare)
		start := engine.NewBoard()
		e.ObserveSense(start.Sense(engine.G7))
		e.ObserveOwnMove(engine.Move{From: engine.G8, To: engine.F6}, false, engine.NoSquare)
		e.ObserveOpponentMove(false, engine.NoSquare)
		return e.Particles()
	}
	assert.Equal(t, run(1), run(6))
}

func TestObserveBeforeStartIsIgnored(t *testing.T) {
	e := newTestEstimator(t, 10, 1, 1)
	e.ObserveOpponentMove(true, engine.E4)
	e.ObserveSense(nil)
	e.ObserveOwnMove(engine.NullMove, false, engine.NoSquare)
	assert.Empty(t, e.Particles())
	assert.Equal(t, engine.NewBoard(), e.Board())
	assert.True(t, e.ChooseSense(nil).Valid())
}

func TestResetDropsGame(t *testing.T) {
	e := newTestEstimator(t, 10, 1, 1)
	e.Start(engine.White, engine.NewBoard())
	e.ObserveOwnMove(engine.Move{From: engine.D2, To: engine.D4}, false, engine.NoSquare)
	e.Reset()
	assert.Empty(t, e.Particles())
	assert.Empty(t, e.OwnActionLog())
	assert.Zero(t, e.MovesSinceReset())
}

func TestBoardUsesAgentTurn(t *testing.T) {
	e := newTestEstimator(t, 10, 1, 1)
	e.Start(engine.Black, engine.NewBoard())
	e.ObserveOpponentMove(false, engine.NoSquare)
	assert.Equal(t, engine.Black, e.Board().Turn)
	e.ObserveOwnMove(engine.NullMove, false, engine.NoSquare)
	assert.Equal(t, engine.White, e.Board().Turn)
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	e := newTestEstimator(t, 1, 1, 1, WithMetrics(m))
	e.Start(engine.White, engine.NewBoard())

	e.ObserveOwnMove(engine.Move{From: engine.E2, To: engine.E4}, false, engine.NoSquare)
	e.ObserveSense([]engine.SquarePiece{{Square: engine.E4, Piece: engine.NoPiece}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Updates.WithLabelValues("own_move", "healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Updates.WithLabelValues("sense", "collapsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Collapses))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Entropy))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Survivors))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.observeUpdate(EvidenceSense, Healthy, 1, 1)
	m.observeFallbacks("replay", 3)
	m.observeEntropy(nil)
}
