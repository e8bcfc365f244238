package engine

import (
	"errors"
	"testing"
)

// TestNewBoardLayout verifies the initial position.
func TestNewBoardLayout(t *testing.T) {
	b := NewBoard()

	if got := b.FEN(); got != StartingFEN {
		t.Fatalf("FEN() = %q, want %q", got, StartingFEN)
	}
	if n := len(b.PieceSquares(White)); n != 16 {
		t.Errorf("white has %d pieces, want 16", n)
	}
	if n := len(b.PieceSquares(Black)); n != 16 {
		t.Errorf("black has %d pieces, want 16", n)
	}
	if b.PieceAt(E1) != NewPiece(White, King) || b.PieceAt(D8) != NewPiece(Black, Queen) {
		t.Error("kings and queens misplaced")
	}
	if b.PieceAt(NoSquare) != NoPiece {
		t.Error("PieceAt(NoSquare) should be empty")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 7",
		"8/8/8/8/8/8/8/K6k b - - 12 40",
	}
	for _, fen := range fens {
		b, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := b.FEN(); got != fen {
			t.Errorf("round trip: got %q, want %q", got, fen)
		}
	}
}

func TestParseFENRejects(t *testing.T) {
	bad := []string{
		"",
		"8/8/8 w - -",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQz - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

func TestSetAndRemovePiece(t *testing.T) {
	b := EmptyBoard()
	b.SetPieceAt(D4, NewPiece(Black, Bishop))
	if c, ok := b.ColorAt(D4); !ok || c != Black {
		t.Errorf("ColorAt(d4) = %v,%v", c, ok)
	}
	if p := b.RemovePieceAt(D4); p != NewPiece(Black, Bishop) {
		t.Errorf("RemovePieceAt returned %v", p)
	}
	if _, ok := b.ColorAt(D4); ok {
		t.Error("d4 still occupied")
	}
}

func TestBoardIsComparableValue(t *testing.T) {
	a := NewBoard()
	b := NewBoard()
	if a != b {
		t.Error("two initial boards should compare equal")
	}
	b.Push(NullMove)
	if a == b {
		t.Error("boards should differ after a push")
	}
}
