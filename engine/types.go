package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrInvalidMove   = errors.New("invalid move")
	ErrInvalidFEN    = errors.New("invalid fen")
)

// Color identifies a side.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is packed into the lower 3 bits of Piece.
type PieceType uint8

const (
	NoPieceType PieceType = iota // 0
	Pawn                         // 1
	Knight                       // 2
	Bishop                       // 3
	Rook                         // 4
	Queen                        // 5
	King                         // 6
)

// Piece is a packed uint8: bit 3 = color, lower 3 bits = type.
// The zero value is an empty square.
type Piece uint8

// NoPiece represents the absence of a piece.
const NoPiece Piece = 0

// NewPiece constructs a Piece from color and type.
func NewPiece(c Color, t PieceType) Piece {
	return Piece(uint8(c)<<3 | uint8(t)&0x07)
}

// Type returns the type bits (lower 3).
func (p Piece) Type() PieceType { return PieceType(p & 0x07) }

// Color returns the color bit. Only meaningful when p != NoPiece.
func (p Piece) Color() Color { return Color(p>>3) & 1 }

const pieceSymbols = ".PNBRQK"

// Symbol returns the FEN letter for the piece: uppercase for white,
// lowercase for black, '.' for an empty square.
func (p Piece) Symbol() byte {
	if p == NoPiece {
		return '.'
	}
	s := pieceSymbols[p.Type()]
	if p.Color() == Black {
		s += 'a' - 'A'
	}
	return s
}

func (p Piece) String() string { return string(p.Symbol()) }

// PieceFromSymbol parses a FEN piece letter.
func PieceFromSymbol(r byte) (Piece, bool) {
	c := White
	if r >= 'a' && r <= 'z' {
		c = Black
		r -= 'a' - 'A'
	}
	for t := Pawn; t <= King; t++ {
		if pieceSymbols[t] == r {
			return NewPiece(c, t), true
		}
	}
	return NoPiece, false
}

// Square is a board index 0..63 in little-endian rank-file order (a1 = 0, h8 = 63).
type Square uint8

// NoSquare marks an absent square (no en passant target, null move endpoints).
const NoSquare Square = 64

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NewSquare builds a square from 0-based file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

// File returns the 0-based file (0 = a).
func (s Square) File() int { return int(s) % 8 }

// Rank returns the 0-based rank (0 = rank 1).
func (s Square) Rank() int { return int(s) / 8 }

// Valid reports whether s is on the board.
func (s Square) Valid() bool { return s < NoSquare }

// IsEdge reports whether s lies on the outer ring of the board.
func (s Square) IsEdge() bool {
	f, r := s.File(), s.Rank()
	return f == 0 || f == 7 || r == 0 || r == 7
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return NewSquare(int(s[0]-'a'), int(s[1]-'1')), nil
}

// AllSquares returns every square in index order.
func AllSquares() []Square {
	sqs := make([]Square, 64)
	for i := range sqs {
		sqs[i] = Square(i)
	}
	return sqs
}

// Move is a from/to pair with an optional promotion type.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType
}

// NullMove passes the turn. It is always legal.
var NullMove = Move{From: NoSquare, To: NoSquare}

// IsNull reports whether m is the null move.
func (m Move) IsNull() bool { return m.From == NoSquare }

// String returns UCI notation ("e2e4", "e7e8q", "0000" for the null move).
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promotion != NoPieceType {
		s += string(pieceSymbols[m.Promotion] + ('a' - 'A'))
	}
	return s
}

// ParseMove parses UCI notation.
func ParseMove(s string) (Move, error) {
	if s == "0000" {
		return NullMove, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %w", ErrInvalidMove, s, err)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		p, ok := PieceFromSymbol(s[4])
		if !ok || p.Color() != Black || p.Type() == Pawn || p.Type() == King {
			return NullMove, fmt.Errorf("%w: bad promotion in %q", ErrInvalidMove, s)
		}
		m.Promotion = p.Type()
	}
	return m, nil
}

// SquarePiece is one entry of a sense result: the occupant of a square,
// NoPiece when empty.
type SquarePiece struct {
	Square Square
	Piece  Piece
}
