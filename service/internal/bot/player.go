// Package bot adapts belief trackers and move searchers to the turn
// callbacks an arbiter drives.
package bot

import (
	"math/rand/v2"
	"time"

	engine "github.com/superlintball/reconchess/engine"
)

// Player receives one game's events in order: game start, then per turn the
// opponent's move result (skipped on white's first turn), a sense choice and
// its result, a move choice and its result, and finally game end.
type Player interface {
	HandleGameStart(color engine.Color, board engine.Board, opponent string)
	HandleOpponentMoveResult(captured bool, sq engine.Square)
	ChooseSense(senseActions []engine.Square, moveActions []engine.Move, remaining time.Duration) engine.Square
	HandleSenseResult(result []engine.SquarePiece)
	ChooseMove(moveActions []engine.Move, remaining time.Duration) engine.Move
	HandleMoveResult(requested, taken engine.Move, reason string, captured bool, sq engine.Square)
	HandleGameEnd(winner engine.Color, hasWinner bool, reason engine.WinReason)
}

// RandomPlayer senses and moves uniformly at random. It never tracks the
// board and is the usual sparring partner.
type RandomPlayer struct {
	rng *rand.Rand
}

// NewRandomPlayer returns a RandomPlayer seeded with seed.
func NewRandomPlayer(seed uint64) *RandomPlayer {
	return &RandomPlayer{rng: rand.New(rand.NewPCG(seed, 2))}
}

func (p *RandomPlayer) HandleGameStart(engine.Color, engine.Board, string) {}

func (p *RandomPlayer) HandleOpponentMoveResult(bool, engine.Square) {}

func (p *RandomPlayer) ChooseSense(senseActions []engine.Square, _ []engine.Move, _ time.Duration) engine.Square {
	if len(senseActions) == 0 {
		return engine.NoSquare
	}
	return senseActions[p.rng.IntN(len(senseActions))]
}

func (p *RandomPlayer) HandleSenseResult([]engine.SquarePiece) {}

// ChooseMove picks one of moveActions or, with probability 1/(n+1), passes.
func (p *RandomPlayer) ChooseMove(moveActions []engine.Move, _ time.Duration) engine.Move {
	i := p.rng.IntN(len(moveActions) + 1)
	if i == len(moveActions) {
		return engine.NullMove
	}
	return moveActions[i]
}

func (p *RandomPlayer) HandleMoveResult(engine.Move, engine.Move, string, bool, engine.Square) {}

func (p *RandomPlayer) HandleGameEnd(engine.Color, bool, engine.WinReason) {}

var (
	_ Player = (*RandomPlayer)(nil)
	_ Player = (*Agent)(nil)
)
