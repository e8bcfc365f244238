package agent

import engine "github.com/superlintball/reconchess/engine"

// Tracker maintains a best-guess board for one side across a game. Observe
// calls never fail: evidence that contradicts the current belief is absorbed
// by the tracker.
type Tracker interface {
	Start(color engine.Color, initial engine.Board)
	ObserveOpponentMove(captured bool, sq engine.Square)
	ChooseSense(candidates []engine.Square) engine.Square
	ObserveSense(result []engine.SquarePiece)
	ObserveOwnMove(taken engine.Move, captured bool, sq engine.Square)
	Board() engine.Board
	Reset()
}

var (
	_ Tracker = (*Estimator)(nil)
	_ Tracker = (*RepairTracker)(nil)
)
