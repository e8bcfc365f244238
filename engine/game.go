// Package engine implements chess rules for reconnaissance (partially
// observable) chess.
//
// Board is a flat value type (arrays only, no pointers, no slices) so it can
// be copied with = and held by the thousand in a particle ensemble without any
// aliasing between copies.
package engine

// CastleRights is a bitfield of remaining castling options.
type CastleRights uint8

const (
	CastleWhiteKing  CastleRights = 1 << 0
	CastleWhiteQueen CastleRights = 1 << 1
	CastleBlackKing  CastleRights = 1 << 2
	CastleBlackQueen CastleRights = 1 << 3

	CastleAll = CastleWhiteKing | CastleWhiteQueen | CastleBlackKing | CastleBlackQueen
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Board holds the complete, self-contained state of one chess position.
type Board struct {
	Squares       [64]Piece
	Turn          Color
	Castling      CastleRights
	EnPassant     Square // target square behind a double-pushed pawn, or NoSquare
	HalfMoveClock uint16
	FullMove      uint16
	Ply           uint16 // moves applied since construction, null moves included
}

// NewBoard returns the standard initial position.
func NewBoard() Board {
	var b Board
	back := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b.Squares[NewSquare(f, 0)] = NewPiece(White, back[f])
		b.Squares[NewSquare(f, 1)] = NewPiece(White, Pawn)
		b.Squares[NewSquare(f, 6)] = NewPiece(Black, Pawn)
		b.Squares[NewSquare(f, 7)] = NewPiece(Black, back[f])
	}
	b.Turn = White
	b.Castling = CastleAll
	b.EnPassant = NoSquare
	b.FullMove = 1
	return b
}

// EmptyBoard returns a board with no pieces, white to move, no rights.
func EmptyBoard() Board {
	return Board{Turn: White, EnPassant: NoSquare, FullMove: 1}
}

// Clone returns an independent copy. Equivalent to plain assignment.
func (b *Board) Clone() Board { return *b }

// PieceAt returns the occupant of sq, NoPiece if empty or off-board.
func (b *Board) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return b.Squares[sq]
}

// ColorAt returns the color of the occupant of sq; ok is false when empty.
func (b *Board) ColorAt(sq Square) (c Color, ok bool) {
	p := b.PieceAt(sq)
	if p == NoPiece {
		return White, false
	}
	return p.Color(), true
}

// SetPieceAt places p on sq, replacing any occupant.
func (b *Board) SetPieceAt(sq Square, p Piece) {
	if sq.Valid() {
		b.Squares[sq] = p
	}
}

// RemovePieceAt clears sq and returns what was there.
func (b *Board) RemovePieceAt(sq Square) Piece {
	p := b.PieceAt(sq)
	if sq.Valid() {
		b.Squares[sq] = NoPiece
	}
	return p
}

// SetTurn sets the side to move.
func (b *Board) SetTurn(c Color) { b.Turn = c }

// Occupied reports whether sq holds a piece.
func (b *Board) Occupied(sq Square) bool { return b.PieceAt(sq) != NoPiece }

// PieceSquares returns every square holding a piece of color c, in index order.
func (b *Board) PieceSquares(c Color) []Square {
	var sqs []Square
	for sq := Square(0); sq < NoSquare; sq++ {
		if p := b.Squares[sq]; p != NoPiece && p.Color() == c {
			sqs = append(sqs, sq)
		}
	}
	return sqs
}

// String renders the board as eight ranks, rank 8 first.
func (b *Board) String() string {
	buf := make([]byte, 0, 72)
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			buf = append(buf, b.Squares[NewSquare(f, r)].Symbol())
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
