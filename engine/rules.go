package engine

// Rules holds configurable match settings.
type Rules struct {
	TurnLimit uint16 // plies before the game is adjudicated on material; 0 = unlimited
}

// DefaultRules returns the standard reconnaissance chess settings.
func DefaultRules() Rules {
	return Rules{TurnLimit: 200}
}

// SenseWindow returns the squares of the 3x3 region centred on center,
// clipped at the board edge, rank 8 side first.
func SenseWindow(center Square) []Square {
	if !center.Valid() {
		return nil
	}
	sqs := make([]Square, 0, 9)
	for dr := 1; dr >= -1; dr-- {
		for df := -1; df <= 1; df++ {
			if sq, ok := step(center, delta{df, dr}); ok {
				sqs = append(sqs, sq)
			}
		}
	}
	return sqs
}

// Sense reports the true occupancy of the window around center.
func (b *Board) Sense(center Square) []SquarePiece {
	window := SenseWindow(center)
	out := make([]SquarePiece, len(window))
	for i, sq := range window {
		out[i] = SquarePiece{Square: sq, Piece: b.Squares[sq]}
	}
	return out
}

// ReviseMove maps a requested move to the move that actually happens on the
// true board. A pseudo-legal request happens as asked (a pawn reaching the
// last rank without a promotion promotes to a queen). A sliding piece or a
// pawn push whose path is blocked stops short: a slider captures the first
// enemy piece in its way, a pawn stops on the last empty square. Anything
// else becomes the null move.
func (b *Board) ReviseMove(m Move) Move {
	if m.IsNull() || !m.From.Valid() || !m.To.Valid() {
		return NullMove
	}
	p := b.PieceAt(m.From)
	if p == NoPiece || p.Color() != b.Turn {
		return NullMove
	}
	if p.Type() == Pawn && m.Promotion == NoPieceType && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		m.Promotion = Queen
	}
	if b.IsPseudoLegal(m) {
		return m
	}

	d, n, ok := lineBetween(m.From, m.To)
	if !ok {
		return NullMove
	}
	switch p.Type() {
	case Bishop, Rook, Queen:
	case Pawn:
		if d.df != 0 || d.dr != pawnDirection(p.Color()) {
			return NullMove
		}
	default:
		return NullMove
	}

	sq := m.From
	last := m.From
	for i := 0; i < n; i++ {
		sq, _ = step(sq, d)
		target := b.Squares[sq]
		if target == NoPiece {
			last = sq
			continue
		}
		if p.Type() != Pawn && target.Color() != p.Color() {
			last = sq
		}
		break
	}
	if last == m.From {
		return NullMove
	}
	revised := Move{From: m.From, To: last}
	if p.Type() == Pawn && (last.Rank() == 0 || last.Rank() == 7) {
		revised.Promotion = m.Promotion
	}
	if !b.IsPseudoLegal(revised) {
		return NullMove
	}
	return revised
}

// lineBetween returns the unit step from a to b and the number of steps when
// the two squares share a rank, file or diagonal.
func lineBetween(a, b Square) (delta, int, bool) {
	df, dr := b.File()-a.File(), b.Rank()-a.Rank()
	if df == 0 && dr == 0 {
		return delta{}, 0, false
	}
	if df != 0 && dr != 0 && abs(df) != abs(dr) {
		return delta{}, 0, false
	}
	n := max(abs(df), abs(dr))
	return delta{sign(df), sign(dr)}, n, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}
