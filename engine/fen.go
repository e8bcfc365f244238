package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseFEN parses Forsyth-Edwards Notation. The clock fields are optional.
func ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Board{}, fmt.Errorf("%w: want at least 4 fields, got %d", ErrInvalidFEN, len(fields))
	}

	b := EmptyBoard()
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("%w: want 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	for i, row := range ranks {
		r := 7 - i
		f := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				f += int(c - '0')
				continue
			}
			p, ok := PieceFromSymbol(c)
			if !ok {
				return Board{}, fmt.Errorf("%w: bad piece %q", ErrInvalidFEN, c)
			}
			if f > 7 {
				return Board{}, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, r+1)
			}
			b.Squares[NewSquare(f, r)] = p
			f++
		}
		if f != 8 {
			return Board{}, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, r+1, f)
		}
	}

	switch fields[1] {
	case "w":
		b.Turn = White
	case "b":
		b.Turn = Black
	default:
		return Board{}, fmt.Errorf("%w: bad side to move %q", ErrInvalidFEN, fields[1])
	}

	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				b.Castling |= CastleWhiteKing
			case 'Q':
				b.Castling |= CastleWhiteQueen
			case 'k':
				b.Castling |= CastleBlackKing
			case 'q':
				b.Castling |= CastleBlackQueen
			default:
				return Board{}, fmt.Errorf("%w: bad castling %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return Board{}, fmt.Errorf("%w: en passant: %w", ErrInvalidFEN, err)
		}
		b.EnPassant = sq
	}

	if len(fields) > 4 {
		n, err := strconv.ParseUint(fields[4], 10, 16)
		if err != nil {
			return Board{}, fmt.Errorf("%w: halfmove clock: %w", ErrInvalidFEN, err)
		}
		b.HalfMoveClock = uint16(n)
	}
	if len(fields) > 5 {
		n, err := strconv.ParseUint(fields[5], 10, 16)
		if err != nil {
			return Board{}, fmt.Errorf("%w: fullmove number: %w", ErrInvalidFEN, err)
		}
		b.FullMove = uint16(n)
	}
	return b, nil
}

// MustParseFEN is ParseFEN for constant positions; it panics on error.
func MustParseFEN(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

// FEN renders the board in Forsyth-Edwards Notation.
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b.Squares[NewSquare(f, r)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	if b.Turn == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}

	if b.Castling == 0 {
		sb.WriteByte('-')
	} else {
		for i, c := range "KQkq" {
			if b.Castling&(1<<i) != 0 {
				sb.WriteRune(c)
			}
		}
	}

	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	fmt.Fprintf(&sb, " %d %d", b.HalfMoveClock, b.FullMove)
	return sb.String()
}
