// Package board implements the 5x5 minichess board representation using bitboards.
package board

import "fmt"

// Square represents a square on the 5x5 board (0-24).
// Uses Little-Endian Rank-File Mapping: A1=0, E1=4, A5=20, E5=24.
type Square uint8

// Square constants for all 25 squares.
const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	A2
	B2
	C2
	D2
	E2
	A3
	B3
	C3
	D3
	E3
	A4
	B4
	C4
	D4
	E4
	A5
	B5
	C5
	D5
	E5
	NoSquare Square = 25
)

// File returns the file (column) of the square (0-4, where 0=a, 4=e).
func (sq Square) File() int {
	return int(sq) % 5
}

// Rank returns the rank (row) of the square (0-4, where 0=1, 4=5).
func (sq Square) Rank() int {
	return int(sq) / 5
}

// String returns the algebraic notation for the square (e.g., "d4").
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+sq.File(), '1'+sq.Rank())
}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square(rank*5 + file)
}

// ParseSquare parses algebraic notation (e.g., "d4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	file := int(s[0] - 'a')
	rank := int(s[1] - '1')

	if file < 0 || file > 4 || rank < 0 || rank > 4 {
		return NoSquare, fmt.Errorf("invalid square: %s", s)
	}

	return NewSquare(file, rank), nil
}

// IsValid returns true if the square is a valid board square (0-24).
func (sq Square) IsValid() bool {
	return sq < NoSquare
}

// Mirror returns the square mirrored vertically (for black's perspective).
func (sq Square) Mirror() Square {
	return NewSquare(sq.File(), 4-sq.Rank())
}

// RelativeRank returns the rank from a given color's perspective.
// For White, rank 0 is the 1st rank; for Black, rank 0 is the 5th rank.
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 4 - sq.Rank()
}
