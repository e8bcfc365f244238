package match

import engine "github.com/superlintball/reconchess/engine"

// View returns what color knows for certain about b: its own pieces only.
// Opponent pieces are removed and the side to move is set to color.
func View(b engine.Board, color engine.Color) engine.Board {
	v := b
	for sq := engine.Square(0); sq < engine.NoSquare; sq++ {
		if c, ok := v.ColorAt(sq); ok && c != color {
			v.RemovePieceAt(sq)
		}
	}
	v.SetTurn(color)
	v.EnPassant = engine.NoSquare
	return v
}

// MoveActions lists the moves color may request: everything pseudo-legal on
// its View, plus every diagonal pawn step onto a square it does not occupy,
// since a capture there is possible without it being visible.
func MoveActions(b engine.Board, color engine.Color) []engine.Move {
	v := View(b, color)
	moves := v.PseudoLegalMoves()

	dir := 1
	last := 7
	if color == engine.Black {
		dir, last = -1, 0
	}
	for _, from := range v.PieceSquares(color) {
		if v.PieceAt(from).Type() != engine.Pawn {
			continue
		}
		for _, df := range []int{-1, 1} {
			f, r := from.File()+df, from.Rank()+dir
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			to := engine.NewSquare(f, r)
			if v.Occupied(to) {
				continue
			}
			if r == last {
				for _, pt := range []engine.PieceType{engine.Queen, engine.Rook, engine.Bishop, engine.Knight} {
					moves = append(moves, engine.Move{From: from, To: to, Promotion: pt})
				}
				continue
			}
			moves = append(moves, engine.Move{From: from, To: to})
		}
	}
	return moves
}

// SenseActions lists every square a sense may be centered on.
func SenseActions() []engine.Square { return engine.AllSquares() }
