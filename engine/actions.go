package engine

import "fmt"

// ApplyMove applies m after checking it is pseudo-legal. Returns an error if
// it is not; the board is left untouched in that case.
func (b *Board) ApplyMove(m Move) error {
	if !b.IsPseudoLegal(m) {
		return fmt.Errorf("%w: %s is not pseudo-legal for %s", ErrInvalidMove, m, b.Turn)
	}
	b.Push(m)
	return nil
}

// Push applies m without validation and passes the turn. The null move only
// flips the side to move and clears the en passant target. Pushing a move
// whose origin is empty behaves like the null move.
func (b *Board) Push(m Move) {
	b.Ply++
	if b.Turn == Black {
		b.FullMove++
	}
	piece := b.PieceAt(m.From)
	if m.IsNull() || piece == NoPiece || !m.To.Valid() {
		b.HalfMoveClock++
		b.EnPassant = NoSquare
		b.Turn = b.Turn.Other()
		return
	}

	us := piece.Color()
	captured := b.Squares[m.To]

	if piece.Type() == Pawn && m.To == b.EnPassant && captured == NoPiece && m.From.File() != m.To.File() {
		victim := NewSquare(m.To.File(), m.From.Rank())
		captured = b.Squares[victim]
		b.Squares[victim] = NoPiece
	}

	if cs, ok := castleFor(piece, m); ok && b.Squares[cs.rook] == NewPiece(us, Rook) {
		b.Squares[cs.rookTo] = b.Squares[cs.rook]
		b.Squares[cs.rook] = NoPiece
	}

	b.Squares[m.From] = NoPiece
	b.Squares[m.To] = piece
	if piece.Type() == Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		promo := m.Promotion
		if promo == NoPieceType {
			promo = Queen
		}
		b.Squares[m.To] = NewPiece(us, promo)
	}

	b.Castling &^= rightsTouchedBy(m.From) | rightsTouchedBy(m.To)

	b.EnPassant = NoSquare
	if piece.Type() == Pawn {
		if d := m.To.Rank() - m.From.Rank(); d == 2 || d == -2 {
			b.EnPassant = NewSquare(m.From.File(), (m.From.Rank()+m.To.Rank())/2)
		}
	}

	if piece.Type() == Pawn || captured != NoPiece {
		b.HalfMoveClock = 0
	} else {
		b.HalfMoveClock++
	}
	b.Turn = b.Turn.Other()
}

// rightsTouchedBy returns the castling rights lost when a piece leaves or
// lands on sq.
func rightsTouchedBy(sq Square) CastleRights {
	switch sq {
	case E1:
		return CastleWhiteKing | CastleWhiteQueen
	case E8:
		return CastleBlackKing | CastleBlackQueen
	case A1:
		return CastleWhiteQueen
	case H1:
		return CastleWhiteKing
	case A8:
		return CastleBlackQueen
	case H8:
		return CastleBlackKing
	}
	return 0
}

// IsCapture reports whether m takes a piece: the destination holds a piece of
// the other color, or m is an en passant capture.
func (b *Board) IsCapture(m Move) bool {
	_, ok := b.CaptureSquare(m)
	return ok
}

// CaptureSquare returns the square of the piece m would capture.
func (b *Board) CaptureSquare(m Move) (Square, bool) {
	if m.IsNull() || !m.To.Valid() {
		return NoSquare, false
	}
	mover := b.Turn
	if p := b.PieceAt(m.From); p != NoPiece {
		mover = p.Color()
	}
	if target := b.Squares[m.To]; target != NoPiece {
		if target.Color() != mover {
			return m.To, true
		}
		return NoSquare, false
	}
	if p := b.PieceAt(m.From); p.Type() == Pawn && m.To == b.EnPassant && m.From.File() != m.To.File() {
		victim := NewSquare(m.To.File(), m.From.Rank())
		if v := b.Squares[victim]; v != NoPiece && v.Color() != mover {
			return victim, true
		}
	}
	return NoSquare, false
}
