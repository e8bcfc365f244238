package engine

import "testing"

func TestWinnerByKingCapture(t *testing.T) {
	b := MustParseFEN("4k3/8/8/8/8/8/8/4K2r b - - 0 1")
	if _, ok := b.Winner(); ok {
		t.Fatal("game over with both kings on the board")
	}
	applyOrFatal(t, &b, "h1e1")
	w, ok := b.Winner()
	if !ok || w != Black {
		t.Fatalf("Winner() = %v,%v, want black,true", w, ok)
	}
	if !b.KingCaptured(White) || b.KingCaptured(Black) {
		t.Error("KingCaptured disagrees with Winner")
	}
}

func TestMaterial(t *testing.T) {
	b := NewBoard()
	if b.Material(White) != 0 {
		t.Errorf("initial material = %d, want 0", b.Material(White))
	}
	b.RemovePieceAt(D8)
	if got := b.Material(White); got != 9 {
		t.Errorf("material without black queen = %d, want 9", got)
	}
	if got := b.Material(Black); got != -9 {
		t.Errorf("black material = %d, want -9", got)
	}
}

func TestWinReasonString(t *testing.T) {
	if WinKingCapture.String() != "king capture" || WinNone.String() != "none" {
		t.Error("unexpected WinReason strings")
	}
}
