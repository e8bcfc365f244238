package engine

// delta is a (file, rank) step.
type delta struct{ df, dr int }

var (
	knightDeltas = [8]delta{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas   = [8]delta{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookDeltas   = [4]delta{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	bishopDeltas = [4]delta{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}

	promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}
)

// step returns sq shifted by d, ok is false when the result leaves the board.
func step(sq Square, d delta) (Square, bool) {
	f, r := sq.File()+d.df, sq.Rank()+d.dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return NewSquare(f, r), true
}

// PseudoLegalMoves returns every move of the side to move that obeys piece
// movement rules, ignoring whether the mover's king is left attacked.
// Castling requires rights, an empty path and the rook in place; attacked
// transit squares are not checked, matching reconnaissance chess.
func (b *Board) PseudoLegalMoves() []Move {
	return b.AppendPseudoLegalMoves(make([]Move, 0, 48))
}

// AppendPseudoLegalMoves appends the pseudo-legal moves to dst.
func (b *Board) AppendPseudoLegalMoves(dst []Move) []Move {
	us := b.Turn
	for sq := Square(0); sq < NoSquare; sq++ {
		p := b.Squares[sq]
		if p == NoPiece || p.Color() != us {
			continue
		}
		switch p.Type() {
		case Pawn:
			dst = b.genPawn(dst, sq, us)
		case Knight:
			dst = b.genLeaper(dst, sq, us, knightDeltas[:])
		case Bishop:
			dst = b.genSlider(dst, sq, us, bishopDeltas[:])
		case Rook:
			dst = b.genSlider(dst, sq, us, rookDeltas[:])
		case Queen:
			dst = b.genSlider(dst, sq, us, rookDeltas[:])
			dst = b.genSlider(dst, sq, us, bishopDeltas[:])
		case King:
			dst = b.genLeaper(dst, sq, us, kingDeltas[:])
			dst = b.genCastles(dst, sq, us)
		}
	}
	return dst
}

// IsPseudoLegal reports whether m is among the pseudo-legal moves.
// The null move is always legal.
func (b *Board) IsPseudoLegal(m Move) bool {
	if m.IsNull() {
		return true
	}
	p := b.PieceAt(m.From)
	if p == NoPiece || p.Color() != b.Turn {
		return false
	}
	var buf [64]Move
	for _, c := range b.appendMovesFrom(buf[:0], m.From) {
		if c == m {
			return true
		}
	}
	return false
}

// appendMovesFrom generates pseudo-legal moves for the single piece on from.
func (b *Board) appendMovesFrom(dst []Move, from Square) []Move {
	p := b.PieceAt(from)
	us := p.Color()
	switch p.Type() {
	case Pawn:
		return b.genPawn(dst, from, us)
	case Knight:
		return b.genLeaper(dst, from, us, knightDeltas[:])
	case Bishop:
		return b.genSlider(dst, from, us, bishopDeltas[:])
	case Rook:
		return b.genSlider(dst, from, us, rookDeltas[:])
	case Queen:
		dst = b.genSlider(dst, from, us, rookDeltas[:])
		return b.genSlider(dst, from, us, bishopDeltas[:])
	case King:
		dst = b.genLeaper(dst, from, us, kingDeltas[:])
		return b.genCastles(dst, from, us)
	}
	return dst
}

func pawnDirection(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func appendPawnMove(dst []Move, from, to Square, promoRank int) []Move {
	if to.Rank() == promoRank {
		for _, t := range promotionTypes {
			dst = append(dst, Move{From: from, To: to, Promotion: t})
		}
		return dst
	}
	return append(dst, Move{From: from, To: to})
}

func (b *Board) genPawn(dst []Move, sq Square, us Color) []Move {
	dir := pawnDirection(us)
	startRank, promoRank := 1, 7
	if us == Black {
		startRank, promoRank = 6, 0
	}

	if one, ok := step(sq, delta{0, dir}); ok && !b.Occupied(one) {
		dst = appendPawnMove(dst, sq, one, promoRank)
		if sq.Rank() == startRank {
			if two, ok := step(one, delta{0, dir}); ok && !b.Occupied(two) {
				dst = append(dst, Move{From: sq, To: two})
			}
		}
	}

	for _, df := range [2]int{-1, 1} {
		to, ok := step(sq, delta{df, dir})
		if !ok {
			continue
		}
		target := b.Squares[to]
		if (target != NoPiece && target.Color() != us) || (to == b.EnPassant && target == NoPiece) {
			dst = appendPawnMove(dst, sq, to, promoRank)
		}
	}
	return dst
}

func (b *Board) genLeaper(dst []Move, sq Square, us Color, deltas []delta) []Move {
	for _, d := range deltas {
		to, ok := step(sq, d)
		if !ok {
			continue
		}
		if target := b.Squares[to]; target == NoPiece || target.Color() != us {
			dst = append(dst, Move{From: sq, To: to})
		}
	}
	return dst
}

func (b *Board) genSlider(dst []Move, sq Square, us Color, deltas []delta) []Move {
	for _, d := range deltas {
		to := sq
		for {
			var ok bool
			to, ok = step(to, d)
			if !ok {
				break
			}
			target := b.Squares[to]
			if target == NoPiece {
				dst = append(dst, Move{From: sq, To: to})
				continue
			}
			if target.Color() != us {
				dst = append(dst, Move{From: sq, To: to})
			}
			break
		}
	}
	return dst
}

// castleSpec describes one castling option.
type castleSpec struct {
	right      CastleRights
	king, to   Square
	rook       Square
	rookTo     Square
	mustBeFree []Square
}

var castleSpecs = [4]castleSpec{
	{CastleWhiteKing, E1, G1, H1, F1, []Square{F1, G1}},
	{CastleWhiteQueen, E1, C1, A1, D1, []Square{B1, C1, D1}},
	{CastleBlackKing, E8, G8, H8, F8, []Square{F8, G8}},
	{CastleBlackQueen, E8, C8, A8, D8, []Square{B8, C8, D8}},
}

func (b *Board) genCastles(dst []Move, sq Square, us Color) []Move {
	for i := range castleSpecs {
		cs := &castleSpecs[i]
		if b.Castling&cs.right == 0 || cs.king != sq || castleColor(cs.right) != us {
			continue
		}
		if b.Squares[cs.rook] != NewPiece(us, Rook) || b.Squares[cs.king] != NewPiece(us, King) {
			continue
		}
		free := true
		for _, s := range cs.mustBeFree {
			if b.Occupied(s) {
				free = false
				break
			}
		}
		if free {
			dst = append(dst, Move{From: cs.king, To: cs.to})
		}
	}
	return dst
}

func castleColor(r CastleRights) Color {
	if r&(CastleWhiteKing|CastleWhiteQueen) != 0 {
		return White
	}
	return Black
}

// castleFor returns the castling option matching a king move, if any.
func castleFor(p Piece, m Move) (*castleSpec, bool) {
	if p.Type() != King {
		return nil, false
	}
	for i := range castleSpecs {
		cs := &castleSpecs[i]
		if cs.king == m.From && cs.to == m.To {
			return cs, true
		}
	}
	return nil, false
}
