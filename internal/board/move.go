package board

import "fmt"

// Move encodes a move in 16 bits:
// bits 0-4:  from square (0-24)
// bits 5-9:  to square (0-24)
// bit 10:    capture flag
// bit 11:    promotion flag (always to Queen)
type Move uint16

// Move flags
const (
	FlagCapture   uint16 = 1 << 10
	FlagPromotion uint16 = 1 << 11
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a quiet move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<5
}

// NewCapture creates a capturing move.
func NewCapture(from, to Square) Move {
	return Move(from) | Move(to)<<5 | Move(FlagCapture)
}

// NewPromotion creates a promotion move. Promotion is always to Queen;
// the capture flag records whether the pawn captured on its way in.
func NewPromotion(from, to Square, capture bool) Move {
	m := Move(from) | Move(to)<<5 | Move(FlagPromotion)
	if capture {
		m |= Move(FlagCapture)
	}
	return m
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x1F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 5) & 0x1F)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return uint16(m)&FlagCapture != 0
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return uint16(m)&FlagPromotion != 0
}

// String returns the UCI-style format of the move (e.g., "d1d4", "b4b5q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()

	if m.IsPromotion() {
		s += "q"
	}

	return s
}

// ParseMove parses a UCI-style move string against a position. The capture
// and promotion flags are derived from the position so the result compares
// equal to generated moves.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}

	capture := !pos.IsEmpty(to)
	promotion := piece.Type() == Pawn && to.Rank() == promotionRank(piece.Color())

	if len(s) == 5 {
		if s[4] != 'q' {
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		if !promotion {
			return NoMove, fmt.Errorf("move %s is not a promotion", s)
		}
	}

	if promotion {
		return NewPromotion(from, to, capture), nil
	}
	if capture {
		return NewCapture(from, to), nil
	}
	return NewMove(from, to), nil
}

// promotionRank returns the far rank index for the given color.
func promotionRank(c Color) int {
	if c == White {
		return 4
	}
	return 0
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [64]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list's array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo stores information needed to undo a move.
type UndoInfo struct {
	CapturedPiece Piece
	HalfMoveClock int
	Hash          uint64
	KingSquare    [2]Square      // King positions before move
	Pieces        [2][5]Bitboard // Full piece bitboards for reliable restoration
	Occupied      [2]Bitboard    // Occupancy bitboards
	AllOccupied   Bitboard       // All pieces
}
