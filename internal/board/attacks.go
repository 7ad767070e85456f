package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [25]Bitboard
	kingAttacks   [25]Bitboard
	pawnAttacks   [2][25]Bitboard // [Color][Square]
	pawnPushes    [2][25]Bitboard // [Color][Square] - single push targets
)

// Ray tables for the sliding pieces. Directions 0-3 point up the board
// (increasing square index), 4-7 point down.
const (
	dirNorth = iota
	dirEast
	dirNorthEast
	dirNorthWest
	dirSouth
	dirWest
	dirSouthEast
	dirSouthWest
)

var rayDeltas = [8][2]int{
	{0, 1}, {1, 0}, {1, 1}, {-1, 1},
	{0, -1}, {-1, 0}, {1, -1}, {-1, -1},
}

var rayAttacks [8][25]Bitboard

func init() {
	initKnightAttacks()
	initKingAttacks()
	initPawnAttacks()
	initRayAttacks()
}

func initKnightAttacks() {
	for sq := A1; sq <= E5; sq++ {
		bb := SquareBB(sq)

		// Knight moves: 2+1 or 1+2 in any direction
		attacks := Empty

		// Up/down 2, left/right 1
		attacks |= (bb << 11) & NotFileA // NNE
		attacks |= (bb << 9) & NotFileE  // NNW
		attacks |= (bb >> 11) & NotFileE // SSW
		attacks |= (bb >> 9) & NotFileA  // SSE

		// Up/down 1, left/right 2
		attacks |= (bb << 7) & NotFileAB // ENE
		attacks |= (bb << 3) & NotFileDE // WNW
		attacks |= (bb >> 7) & NotFileDE // WSW
		attacks |= (bb >> 3) & NotFileAB // ESE

		knightAttacks[sq] = attacks
	}
}

func initKingAttacks() {
	for sq := A1; sq <= E5; sq++ {
		bb := SquareBB(sq)

		// King moves: 1 square in any direction
		attacks := bb.North() | bb.South()
		attacks |= bb.East() | bb.West()
		attacks |= bb.NorthEast() | bb.NorthWest()
		attacks |= bb.SouthEast() | bb.SouthWest()

		kingAttacks[sq] = attacks
	}
}

func initPawnAttacks() {
	for sq := A1; sq <= E5; sq++ {
		bb := SquareBB(sq)

		// White pawn attacks (diagonal captures going up)
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()

		// Black pawn attacks (diagonal captures going down)
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		// Pawn pushes (single push targets)
		pawnPushes[White][sq] = bb.North()
		pawnPushes[Black][sq] = bb.South()
	}
}

func initRayAttacks() {
	for dir := 0; dir < 8; dir++ {
		df, dr := rayDeltas[dir][0], rayDeltas[dir][1]
		for sq := A1; sq <= E5; sq++ {
			var ray Bitboard
			f, r := sq.File()+df, sq.Rank()+dr
			for f >= 0 && f <= 4 && r >= 0 && r <= 4 {
				ray |= SquareBB(NewSquare(f, r))
				f += df
				r += dr
			}
			rayAttacks[dir][sq] = ray
		}
	}
}

// rayAttack returns the attack set along one ray, truncated at the
// first blocker. The blocker square itself stays attackable.
func rayAttack(dir int, sq Square, occupied Bitboard) Bitboard {
	attacks := rayAttacks[dir][sq]
	blockers := attacks & occupied
	if blockers == 0 {
		return attacks
	}
	var first Square
	if dir < dirSouth {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return attacks &^ rayAttacks[dir][first]
}

func diagonalAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttack(dirNorthEast, sq, occupied) |
		rayAttack(dirNorthWest, sq, occupied) |
		rayAttack(dirSouthEast, sq, occupied) |
		rayAttack(dirSouthWest, sq, occupied)
}

func orthogonalAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttack(dirNorth, sq, occupied) |
		rayAttack(dirEast, sq, occupied) |
		rayAttack(dirSouth, sq, occupied) |
		rayAttack(dirWest, sq, occupied)
}

// KnightAttacks returns the knight attack bitboard for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack bitboard for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the pawn attack bitboard for a square and color.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// PawnPushes returns the pawn push target bitboard for a square and color.
func PawnPushes(sq Square, c Color) Bitboard {
	return pawnPushes[c][sq]
}

// BishopAttacks returns the bishop attack bitboard for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return diagonalAttacks(sq, occupied)
}

// QueenAttacks returns the queen attack bitboard for a square with given occupancy.
// The queen covers both diagonal and orthogonal rays; there is no rook in this variant.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return diagonalAttacks(sq, occupied) | orthogonalAttacks(sq, occupied)
}

// AttackersByColor returns a bitboard of pieces of the given color attacking a square.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	enemy := c.Other()
	return (pawnAttacks[enemy][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(diagonalAttacks(sq, occupied) & (p.Pieces[c][Bishop] | p.Pieces[c][Queen])) |
		(orthogonalAttacks(sq, occupied) & p.Pieces[c][Queen])
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersByColor(sq, byColor, p.AllOccupied) != 0
}

// AttackMap returns a bitboard of every square attacked by the given color.
func (p *Position) AttackMap(c Color) Bitboard {
	occupied := p.AllOccupied
	attacks := Empty

	for bb := p.Pieces[c][Pawn]; bb != 0; {
		attacks |= pawnAttacks[c][bb.PopLSB()]
	}
	for bb := p.Pieces[c][Knight]; bb != 0; {
		attacks |= knightAttacks[bb.PopLSB()]
	}
	for bb := p.Pieces[c][Bishop]; bb != 0; {
		attacks |= diagonalAttacks(bb.PopLSB(), occupied)
	}
	for bb := p.Pieces[c][Queen]; bb != 0; {
		attacks |= QueenAttacks(bb.PopLSB(), occupied)
	}
	for bb := p.Pieces[c][King]; bb != 0; {
		attacks |= kingAttacks[bb.PopLSB()]
	}

	return attacks
}
