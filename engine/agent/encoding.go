package agent

import (
	"math"

	engine "github.com/superlintball/reconchess/engine"
)

const (
	NumPlanes = 13              // empty + 6 white + 6 black piece types
	InputDim  = 64 * NumPlanes  // one plane slot per square
	EmptyIdx  = 0
)

// planeIndex returns the plane (0-12) for a piece. Empty maps to 0, white
// pieces to 1-6, black pieces to 7-12.
func planeIndex(p engine.Piece) int {
	if p == engine.NoPiece {
		return EmptyIdx
	}
	idx := int(p.Type())
	if p.Color() == engine.Black {
		idx += 6
	}
	return idx
}

// Encode writes the ensemble's per-square piece distribution into out:
// out[sq*NumPlanes+plane] is the fraction of particles holding that piece on
// sq. out is zeroed first; an empty ensemble leaves it zero.
func Encode(ps ParticleSet, out *[InputDim]float32) {
	*out = [InputDim]float32{}
	if len(ps) == 0 {
		return
	}
	w := 1 / float32(len(ps))
	for i := range ps {
		for sq, p := range ps[i].Squares {
			out[sq*NumPlanes+planeIndex(p)] += w
		}
	}
}

// SquareEntropy returns the entropy in bits of the piece distribution on sq.
func SquareEntropy(enc *[InputDim]float32, sq engine.Square) float64 {
	h := 0.0
	base := int(sq) * NumPlanes
	for i := 0; i < NumPlanes; i++ {
		if p := float64(enc[base+i]); p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// MeanEntropy averages SquareEntropy over the board. Zero means every
// particle agrees on every square.
func MeanEntropy(ps ParticleSet) float64 {
	var enc [InputDim]float32
	Encode(ps, &enc)
	total := 0.0
	for sq := engine.Square(0); sq < engine.NoSquare; sq++ {
		total += SquareEntropy(&enc, sq)
	}
	return total / 64
}
