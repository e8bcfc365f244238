// Package search chooses moves on a single, fully specified board.
package search

import (
	"context"
	"math"
	"math/rand/v2"

	mcts "github.com/IlikeChooros/go-mcts/pkg/mcts"
	engine "github.com/superlintball/reconchess/engine"
)

// Searcher picks a move for color on b.
type Searcher interface {
	Search(ctx context.Context, b engine.Board, color engine.Color) (engine.Move, error)
}

const (
	DefaultIterations = 200
	DefaultDepth      = 12
)

type (
	node = mcts.NodeBase[engine.Move, *mcts.NodeStats]
	tree = mcts.MCTS[engine.Move, *mcts.NodeStats, mcts.Result]
)

// MCTS runs a UCB1 tree search with depth-limited random rollouts. Rollouts
// score a king capture as a win or loss and otherwise the material balance.
// An MCTS is not safe for concurrent use.
type MCTS struct {
	Iterations int
	Depth      int

	seed uint64
	rng  *rand.Rand
}

// NewMCTS returns a searcher with the given budget. Non-positive values fall
// back to the defaults.
func NewMCTS(iterations, depth int, seed uint64) *MCTS {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &MCTS{
		Iterations: iterations,
		Depth:      depth,
		seed:       seed,
		rng:        rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb)),
	}
}

// Seed returns the seed the searcher was built with.
func (s *MCTS) Seed() uint64 { return s.seed }

// Search runs up to Iterations playouts from b with color to move and returns
// the most visited root move. A king capture available at the root is
// returned immediately and with no moves at all the null move is returned.
// The root is expanded even when b already lacks a king, so a hypothesis
// that has lost the opponent's king still yields a playable move.
// Cancelling ctx stops the search early; the error is returned only if no
// playout completed.
func (s *MCTS) Search(ctx context.Context, b engine.Board, color engine.Color) (engine.Move, error) {
	b.SetTurn(color)
	moves := b.PseudoLegalMoves()
	if len(moves) == 0 {
		return engine.NullMove, nil
	}
	for _, m := range moves {
		if sq, ok := b.CaptureSquare(m); ok && b.PieceAt(sq).Type() == engine.King {
			return m, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return engine.NullMove, err
	}

	ops := newGameOps(b, s.Depth, s.rng.Uint64())
	t := mcts.NewMTCS(
		mcts.UCB1,
		mcts.GameOperations[engine.Move, *mcts.NodeStats, mcts.Result](ops),
		0,
		mcts.MultithreadTreeParallel,
		&mcts.NodeStats{},
		mcts.DefaultBackprop[engine.Move, *mcts.NodeStats, mcts.Result]{},
	)
	t.SetLimits(mcts.DefaultLimits().SetCycles(uint32(s.Iterations)).SetThreads(1))
	t.SetContext(ctx)
	t.SearchMultiThreaded(ops)
	t.Synchronize()

	return bestMove(ctx, t, moves)
}

// bestMove reads the most visited root child. A tree that never completed a
// playout falls back to the first move, or to ctx's error when it was
// cancelled.
func bestMove(ctx context.Context, t *tree, moves []engine.Move) (engine.Move, error) {
	if best := t.BestChild(t.Root, mcts.BestChildMostVisits); best != nil {
		return best.Move, nil
	}
	if err := ctx.Err(); err != nil {
		return engine.NullMove, err
	}
	return moves[0], nil
}

// gameOps walks a stack of board values for the tree search. The bottom of
// the stack is the root position and is never popped.
type gameOps struct {
	stack []engine.Board
	depth int
	rng   *rand.Rand
	buf   [256]engine.Move
}

func newGameOps(root engine.Board, depth int, seed uint64) *gameOps {
	return &gameOps{
		stack: []engine.Board{root},
		depth: depth,
		rng:   rand.New(rand.NewPCG(seed, seed>>1|1)),
	}
}

func (o *gameOps) top() engine.Board { return o.stack[len(o.stack)-1] }

// ExpandNode adds one child per pseudo-legal move, or a single null move
// when the side to move has none, so an expanded node always has children.
// Children whose position has lost a king are terminal.
func (o *gameOps) ExpandNode(parent *node) uint32 {
	b := o.top()
	moves := b.AppendPseudoLegalMoves(o.buf[:0])
	if len(moves) == 0 {
		moves = append(moves, engine.NullMove)
	}
	parent.Children = make([]node, len(moves))
	for i, m := range moves {
		next := b
		next.Push(m)
		_, over := next.Winner()
		parent.Children[i] = *mcts.NewBaseNode(parent, m, over, &mcts.NodeStats{})
	}
	return uint32(len(moves))
}

func (o *gameOps) Traverse(m engine.Move) {
	b := o.top()
	b.Push(m)
	o.stack = append(o.stack, b)
}

func (o *gameOps) BackTraverse() {
	if len(o.stack) > 1 {
		o.stack = o.stack[:len(o.stack)-1]
	}
}

// Rollout plays random moves for up to depth plies and scores the result in
// [0, 1] for the side to move at the leaf.
func (o *gameOps) Rollout() mcts.Result {
	b := o.top()
	leaf := b.Turn
	for ply := 0; ply < o.depth; ply++ {
		if _, over := b.Winner(); over {
			break
		}
		moves := b.AppendPseudoLegalMoves(o.buf[:0])
		if len(moves) == 0 {
			b.Push(engine.NullMove)
			continue
		}
		b.Push(moves[o.rng.IntN(len(moves))])
	}
	if w, over := b.Winner(); over {
		if w == leaf {
			return 1
		}
		return 0
	}
	return mcts.Result((1 + math.Tanh(float64(b.Material(leaf))/10)) / 2)
}

func (o *gameOps) Reset() { o.stack = o.stack[:1] }

// Clone copies the position stack and derives a fresh generator, so clones
// share no memory.
func (o *gameOps) Clone() mcts.GameOperations[engine.Move, *mcts.NodeStats, mcts.Result] {
	c := &gameOps{
		stack: append([]engine.Board(nil), o.stack...),
		depth: o.depth,
	}
	c.rng = rand.New(rand.NewPCG(o.rng.Uint64(), o.rng.Uint64()))
	return c
}

// Random picks a uniformly random pseudo-legal move. It is the baseline
// opponent for tests and self-play.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random searcher seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, 1))}
}

func (r *Random) Search(ctx context.Context, b engine.Board, color engine.Color) (engine.Move, error) {
	if err := ctx.Err(); err != nil {
		return engine.NullMove, err
	}
	b.SetTurn(color)
	moves := b.PseudoLegalMoves()
	if len(moves) == 0 {
		return engine.NullMove, nil
	}
	return moves[r.rng.IntN(len(moves))], nil
}

var (
	_ Searcher = (*MCTS)(nil)
	_ Searcher = (*Random)(nil)

	_ mcts.GameOperations[engine.Move, *mcts.NodeStats, mcts.Result] = (*gameOps)(nil)
)
