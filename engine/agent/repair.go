package agent

import (
	"io"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
	engine "github.com/superlintball/reconchess/engine"
)

// RepairTracker keeps a single board and patches it whenever evidence
// disagrees with it, moving or teleporting opponent pieces until the board
// matches. It is cheaper than an Estimator and much less principled.
type RepairTracker struct {
	color engine.Color
	turn  engine.Color
	board engine.Board

	// senseRequest is a square we lost track of, or NoSquare.
	senseRequest engine.Square

	seed uint64
	rng  *rand.Rand
	log  logrus.FieldLogger
}

// NewRepairTracker returns a tracker drawing from a generator seeded with
// seed. A nil logger discards output.
func NewRepairTracker(seed uint64, log logrus.FieldLogger) *RepairTracker {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &RepairTracker{
		seed:         seed,
		rng:          rand.New(rand.NewPCG(seed, seed>>1|1)),
		log:          log,
		senseRequest: engine.NoSquare,
		board:        engine.NewBoard(),
	}
}

// Seed returns the seed the tracker was built with.
func (r *RepairTracker) Seed() uint64 { return r.seed }

func (r *RepairTracker) Start(color engine.Color, initial engine.Board) {
	r.color = color
	r.turn = engine.White
	r.board = initial
	r.senseRequest = engine.NoSquare
}

func (r *RepairTracker) Reset() {
	r.board = engine.NewBoard()
	r.senseRequest = engine.NoSquare
}

// Board returns the tracked board with the side to move from the last update.
func (r *RepairTracker) Board() engine.Board {
	b := r.board
	b.SetTurn(r.turn)
	return b
}

// ObserveOpponentMove applies the capture when exactly one opponent move
// explains it. Otherwise the captured piece is removed and the square is
// queued for the next sense.
func (r *RepairTracker) ObserveOpponentMove(captured bool, sq engine.Square) {
	r.turn = r.color
	r.senseRequest = engine.NoSquare
	if !captured {
		return
	}
	r.board.SetTurn(r.color.Other())
	var only engine.Move
	count := 0
	for _, m := range r.board.PseudoLegalMoves() {
		if m.To == sq {
			only = m
			count++
		}
	}
	if count == 1 {
		r.board.Push(only)
		return
	}
	r.board.RemovePieceAt(sq)
	r.senseRequest = sq
	r.log.WithFields(logrus.Fields{"square": sq, "explanations": count}).Debug("capture ambiguous, requesting sense")
}

// ChooseSense centers on a pending lost square, pulled off the edge, or on a
// random interior candidate.
func (r *RepairTracker) ChooseSense(candidates []engine.Square) engine.Square {
	if r.senseRequest.Valid() {
		sq := r.senseRequest
		r.senseRequest = engine.NoSquare
		return engine.NewSquare(clamp(sq.File(), 1, 6), clamp(sq.Rank(), 1, 6))
	}
	return ChooseSense(r.rng, candidates, nil)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// ObserveSense edits the board until every sensed square matches. Wrong
// pieces are moved out of the way first, then missing pieces are brought in.
func (r *RepairTracker) ObserveSense(result []engine.SquarePiece) {
	var window [64]bool
	for _, sp := range result {
		if sp.Square.Valid() {
			window[sp.Square] = true
		}
	}

	for _, sp := range result {
		if r.board.PieceAt(sp.Square) != engine.NoPiece && r.board.PieceAt(sp.Square) != sp.Piece {
			r.evict(sp.Square, result, &window)
		}
	}
	for _, sp := range result {
		if sp.Piece != engine.NoPiece && r.board.PieceAt(sp.Square) != sp.Piece {
			r.supply(sp, &window)
		}
	}
	r.turn = r.color
}

// evict clears a wrongly occupied sensed square: onto a sensed square that
// wants the piece, else by any quiet move out of the window, else by
// teleporting to an empty square outside the window.
func (r *RepairTracker) evict(sq engine.Square, result []engine.SquarePiece, window *[64]bool) {
	p := r.board.PieceAt(sq)
	if p.Color() == r.color {
		// our own pieces are always known; trust the sense
		for _, sp := range result {
			if sp.Square == sq {
				r.board.SetPieceAt(sq, sp.Piece)
			}
		}
		return
	}

	r.board.SetTurn(r.color.Other())
	moves := r.board.PseudoLegalMoves()
	for _, sp := range result {
		if sp.Square == sq || sp.Piece != p || r.board.PieceAt(sp.Square) == sp.Piece {
			continue
		}
		m := engine.Move{From: sq, To: sp.Square}
		if containsMove(moves, m) && !r.board.IsCapture(m) {
			r.board.Push(m)
			return
		}
	}
	for _, m := range moves {
		if m.From == sq && !window[m.To] && !r.board.IsCapture(m) {
			r.board.Push(m)
			return
		}
	}
	if to := r.randomEmpty(window); to.Valid() {
		r.board.SetPieceAt(to, r.board.RemovePieceAt(sq))
		return
	}
	r.board.RemovePieceAt(sq)
}

// supply brings the sensed piece onto its square: by an opponent move from
// outside the window (promotions included), else by teleporting a matching
// piece from outside the window, else by placing a new one.
func (r *RepairTracker) supply(sp engine.SquarePiece, window *[64]bool) {
	want := sp.Piece
	if want.Color() == r.color {
		r.board.SetPieceAt(sp.Square, want)
		return
	}

	r.board.SetTurn(want.Color())
	moves := r.board.PseudoLegalMoves()
	r.rng.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	for _, m := range moves {
		if m.To != sp.Square || window[m.From] {
			continue
		}
		from := r.board.PieceAt(m.From)
		if from == want || (m.Promotion != engine.NoPieceType && m.Promotion == want.Type()) {
			r.board.Push(m)
			if r.board.PieceAt(sp.Square) == want {
				return
			}
		}
	}

	for _, i := range r.rng.Perm(64) {
		from := engine.Square(i)
		if window[from] || r.board.PieceAt(from) != want {
			continue
		}
		if want.Type() == engine.Bishop && squareShade(from) != squareShade(sp.Square) {
			continue
		}
		r.board.SetPieceAt(sp.Square, r.board.RemovePieceAt(from))
		return
	}
	r.board.SetPieceAt(sp.Square, want)
}

func squareShade(sq engine.Square) int { return (sq.File() + sq.Rank()) % 2 }

// ObserveOwnMove forces the move the arbiter made onto the board, clearing
// or relocating whatever disagrees with it.
func (r *RepairTracker) ObserveOwnMove(taken engine.Move, captured bool, sq engine.Square) {
	defer func() { r.turn = r.color.Other() }()
	if taken.IsNull() {
		return
	}

	r.board.SetTurn(r.color)
	legal := r.board.IsPseudoLegal(taken)
	switch {
	case legal && r.board.IsCapture(taken) == captured:
		r.board.Push(taken)
	case legal && captured:
		// a capture we did not model; keep the extra piece rather than lose one
		r.board.Push(taken)
	case legal:
		r.clearPath(taken)
	default:
		r.force(taken, captured)
	}
}

// clearPath handles a quiet move our board thought was a capture: the
// blocker steps aside by an opponent move if one keeps taken quiet, else it
// is teleported away.
func (r *RepairTracker) clearPath(taken engine.Move) {
	r.board.SetTurn(r.color.Other())
	for _, m := range r.board.PseudoLegalMoves() {
		if m.From != taken.To || r.board.IsCapture(m) {
			continue
		}
		tmp := r.board
		tmp.Push(m)
		tmp.SetTurn(r.color)
		if tmp.IsPseudoLegal(taken) && !tmp.IsCapture(taken) {
			tmp.Push(taken)
			r.board = tmp
			return
		}
	}
	r.board.SetTurn(r.color)
	var none [64]bool
	if to := r.randomEmpty(&none); to.Valid() {
		r.board.SetPieceAt(to, r.board.RemovePieceAt(taken.To))
	} else {
		r.board.RemovePieceAt(taken.To)
	}
	r.board.Push(taken)
}

// force puts taken on the board when it was not even pseudo-legal in our
// model.
func (r *RepairTracker) force(taken engine.Move, captured bool) {
	if c, ok := r.board.ColorAt(taken.To); ok && (!captured || c == r.color) {
		var none [64]bool
		if to := r.randomEmpty(&none); to.Valid() {
			r.board.SetPieceAt(to, r.board.RemovePieceAt(taken.To))
		}
	}
	piece := r.board.RemovePieceAt(taken.From)
	if piece == engine.NoPiece {
		return
	}
	if taken.Promotion != engine.NoPieceType {
		piece = engine.NewPiece(piece.Color(), taken.Promotion)
	}
	r.board.SetPieceAt(taken.To, piece)
}

// randomEmpty returns a random empty square not in exclude, or NoSquare.
func (r *RepairTracker) randomEmpty(exclude *[64]bool) engine.Square {
	var free []engine.Square
	for sq := engine.Square(0); sq < engine.NoSquare; sq++ {
		if !exclude[sq] && !r.board.Occupied(sq) {
			free = append(free, sq)
		}
	}
	if len(free) == 0 {
		return engine.NoSquare
	}
	return free[r.rng.IntN(len(free))]
}

func containsMove(moves []engine.Move, m engine.Move) bool {
	for _, c := range moves {
		if c == m {
			return true
		}
	}
	return false
}
