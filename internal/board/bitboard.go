package board

import (
	"fmt"
	"math/bits"
)

// Bitboard represents the 25-square board where each bit corresponds to a square.
// Bit 0 = A1, Bit 4 = E1, Bit 20 = A5, Bit 24 = E5 (Little-Endian Rank-File Mapping).
// Bits 25-31 are always zero.
type Bitboard uint32

// File masks
const (
	FileA Bitboard = 0x0108421
	FileB Bitboard = 0x0210842
	FileC Bitboard = 0x0421084
	FileD Bitboard = 0x0842108
	FileE Bitboard = 0x1084210
)

// Rank masks
const (
	Rank1 Bitboard = 0x000001F
	Rank2 Bitboard = 0x00003E0
	Rank3 Bitboard = 0x0007C00
	Rank4 Bitboard = 0x00F8000
	Rank5 Bitboard = 0x1F00000
)

// Special masks
const (
	Empty    Bitboard = 0
	Universe Bitboard = 0x1FFFFFF

	// Edge masks intersected with the universe so shifted-in
	// high bits never survive a wrap check.
	NotFileA  Bitboard = Universe &^ FileA
	NotFileE  Bitboard = Universe &^ FileE
	NotFileAB Bitboard = Universe &^ (FileA | FileB)
	NotFileDE Bitboard = Universe &^ (FileD | FileE)
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | (1 << sq)
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ (1 << sq)
}

// IsSet returns true if the bit at the given square is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&(1<<sq) != 0
}

// Toggle flips the bit at the given square.
func (b Bitboard) Toggle(sq Square) Bitboard {
	return b ^ (1 << sq)
}

// PopCount returns the number of set bits (population count).
func (b Bitboard) PopCount() int {
	return bits.OnesCount32(uint32(b))
}

// LSB returns the least significant bit (lowest square index).
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros32(uint32(b)))
}

// MSB returns the most significant bit (highest square index).
func (b Bitboard) MSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(31 - bits.LeadingZeros32(uint32(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1 // Clear the LSB
	return sq
}

// Empty returns true if no bits are set.
func (b Bitboard) Empty() bool {
	return b == 0
}

// Shift operations for move generation

// North shifts the bitboard one rank up (toward rank 5).
func (b Bitboard) North() Bitboard {
	return (b << 5) & Universe
}

// South shifts the bitboard one rank down (toward rank 1).
func (b Bitboard) South() Bitboard {
	return b >> 5
}

// East shifts the bitboard one file right (toward file e).
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts the bitboard one file left (toward file a).
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileE
}

// NorthEast shifts the bitboard one square toward the e5 corner.
func (b Bitboard) NorthEast() Bitboard {
	return (b << 6) & NotFileA
}

// NorthWest shifts the bitboard one square toward the a5 corner.
func (b Bitboard) NorthWest() Bitboard {
	return (b << 4) & NotFileE
}

// SouthEast shifts the bitboard one square toward the e1 corner.
func (b Bitboard) SouthEast() Bitboard {
	return (b >> 4) & NotFileA
}

// SouthWest shifts the bitboard one square toward the a1 corner.
func (b Bitboard) SouthWest() Bitboard {
	return (b >> 6) & NotFileE
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	s := ""
	for rank := 4; rank >= 0; rank-- {
		s += fmt.Sprintf("%d ", rank+1)
		for file := 0; file < 5; file++ {
			sq := NewSquare(file, rank)
			if b.IsSet(sq) {
				s += "1 "
			} else {
				s += ". "
			}
		}
		s += "\n"
	}
	s += "  a b c d e\n"
	return s
}

// ForEach calls the function for each set square.
func (b Bitboard) ForEach(f func(Square)) {
	for b != 0 {
		sq := b.PopLSB()
		f(sq)
	}
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}
