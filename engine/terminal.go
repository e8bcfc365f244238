package engine

// WinReason describes how a game ended.
type WinReason uint8

const (
	WinNone         WinReason = iota // 0: game still running
	WinKingCapture                   // 1: a king was taken
	WinTurnLimit                     // 2: ply limit reached, decided on material
	WinDrawTurnLimit                 // 3: ply limit reached with equal material
)

func (r WinReason) String() string {
	switch r {
	case WinKingCapture:
		return "king capture"
	case WinTurnLimit:
		return "turn limit"
	case WinDrawTurnLimit:
		return "draw (turn limit)"
	}
	return "none"
}

// HasKing reports whether side c still has a king on the board.
func (b *Board) HasKing(c Color) bool {
	k := NewPiece(c, King)
	for _, p := range b.Squares {
		if p == k {
			return true
		}
	}
	return false
}

// KingCaptured reports whether side c has lost its king.
func (b *Board) KingCaptured(c Color) bool { return !b.HasKing(c) }

// Winner returns the side that captured the opposing king; ok is false while
// both kings remain.
func (b *Board) Winner() (winner Color, ok bool) {
	switch {
	case !b.HasKing(Black):
		return White, true
	case !b.HasKing(White):
		return Black, true
	}
	return White, false
}

// pieceValues are the conventional material weights indexed by PieceType.
var pieceValues = [7]int{0, 1, 3, 3, 5, 9, 0}

// PieceValue returns the material weight of t.
func PieceValue(t PieceType) int { return pieceValues[t&0x07] }

// Material returns the material of side c minus that of its opponent.
func (b *Board) Material(c Color) int {
	score := 0
	for _, p := range b.Squares {
		if p == NoPiece {
			continue
		}
		if p.Color() == c {
			score += pieceValues[p.Type()]
		} else {
			score -= pieceValues[p.Type()]
		}
	}
	return score
}
