package board

import "fmt"

// GenerateMoves generates all moves for the side to move. Every generated
// move is playable: there is no check rule in this variant, so the
// pseudo-legal set is the legal set. Moves onto the enemy king's square are
// included; capturing the king is how games are won.
//
// Generation order is fixed and deterministic: Pawn, Knight, Bishop, Queen,
// King, with squares scanned in ascending index within each kind. The rest
// of the system relies on this order for tie-breaking.
func (p *Position) GenerateMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	return ml
}

// GenerateMovesInto clears ml and fills it with all moves for the side to
// move. Same contract as GenerateMoves, without the allocation.
func (p *Position) GenerateMovesInto(ml *MoveList) {
	ml.Clear()
	p.generateAllMoves(ml)
}

// HasLegalMoves returns true if the side to move has any moves.
func (p *Position) HasLegalMoves() bool {
	ml := p.GenerateMoves()
	return ml.Len() > 0
}

// generateAllMoves generates all moves for the side to move.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied
	enemies := p.Occupied[them]

	// Pawn moves
	p.generatePawnMoves(ml, us, enemies, occupied)

	// Knight moves
	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			if enemies.IsSet(to) {
				ml.Add(NewCapture(from, to))
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	// Bishop moves
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			if enemies.IsSet(to) {
				ml.Add(NewCapture(from, to))
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	// Queen moves
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & ^p.Occupied[us]
		for attacks != 0 {
			to := attacks.PopLSB()
			if enemies.IsSet(to) {
				ml.Add(NewCapture(from, to))
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	// King moves
	p.generateKingMoves(ml, us, enemies)
}

// generatePawnMoves generates all pawn moves: single pushes to empty
// squares, then west captures, then east captures. No double push and no
// en passant in this variant. A pawn reaching the far rank promotes to
// Queen unconditionally.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := Universe &^ occupied

	var push, captureWest, captureEast Bitboard
	var promoRank Bitboard
	var pushDir int

	if us == White {
		push = pawns.North() & empty
		captureWest = pawns.NorthWest() & enemies
		captureEast = pawns.NorthEast() & enemies
		promoRank = Rank5
		pushDir = 5
	} else {
		push = pawns.South() & empty
		captureWest = pawns.SouthWest() & enemies
		captureEast = pawns.SouthEast() & enemies
		promoRank = Rank1
		pushDir = -5
	}

	for push != 0 {
		to := push.PopLSB()
		from := Square(int(to) - pushDir)
		if promoRank.IsSet(to) {
			ml.Add(NewPromotion(from, to, false))
		} else {
			ml.Add(NewMove(from, to))
		}
	}

	for captureWest != 0 {
		to := captureWest.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if promoRank.IsSet(to) {
			ml.Add(NewPromotion(from, to, true))
		} else {
			ml.Add(NewCapture(from, to))
		}
	}

	for captureEast != 0 {
		to := captureEast.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if promoRank.IsSet(to) {
			ml.Add(NewPromotion(from, to, true))
		} else {
			ml.Add(NewCapture(from, to))
		}
	}
}

// generateKingMoves generates king moves.
func (p *Position) generateKingMoves(ml *MoveList, us Color, enemies Bitboard) {
	kingBB := p.Pieces[us][King]
	if kingBB == 0 {
		// King already captured: terminal position, nothing to generate
		return
	}
	from := kingBB.LSB()
	attacks := KingAttacks(from) & ^p.Occupied[us]

	for attacks != 0 {
		to := attacks.PopLSB()
		if enemies.IsSet(to) {
			ml.Add(NewCapture(from, to))
		} else {
			ml.Add(NewMove(from, to))
		}
	}
}

// MakeMove applies a move to the position and returns undo information.
// It panics on structurally impossible moves (empty origin, wrong color,
// friendly capture): those are programming errors, not game states.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece: NoPiece,
		HalfMoveClock: p.HalfMoveClock,
		Hash:          p.Hash,
		KingSquare:    p.KingSquare,
		Pieces:        p.Pieces,
		Occupied:      p.Occupied,
		AllOccupied:   p.AllOccupied,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		panic(fmt.Sprintf("make move %s: no piece on %s", m, from))
	}
	if piece.Color() != us {
		panic(fmt.Sprintf("make move %s: %s piece on %s with %s to move", m, piece.Color(), from, us))
	}

	pt := piece.Type()

	// Update hash for side to move
	p.Hash ^= zobristSideToMove

	// Handle captures
	if captured := p.PieceAt(to); captured != NoPiece {
		if captured.Color() == us {
			panic(fmt.Sprintf("make move %s: captures own %s on %s", m, captured.Type(), to))
		}
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	// Move the piece
	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	// Pawns on the far rank always become queens
	if pt == Pawn && to.Rank() == promotionRank(us) {
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][Queen] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][Queen][to]
	}

	// Only captures reset the inactivity clock; pawn pushes do not
	if undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	// Update full-move number
	if us == Black {
		p.FullMoveNumber++
	}

	// Switch side to move
	p.SideToMove = them

	return undo
}

// UnmakeMove undoes a move using the stored undo information.
// Restores the full position state snapshot rather than reversing the
// move piece by piece.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	us := p.SideToMove.Other()

	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}
}
