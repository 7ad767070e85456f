// Package engine implements the minichess AI search engine.
package engine

import (
	"fmt"

	"github.com/hailam/minichess/internal/board"
)

// EvalMode selects the evaluation heuristic used by the search.
type EvalMode int

const (
	EvalMaterial   EvalMode = iota // material count only
	EvalPositional                 // material + piece-square tables
	EvalThreats                    // positional + attack and defence terms
)

var evalModeNames = [...]string{"material", "positional", "threats"}

// String returns the mode name accepted by ParseEvalMode.
func (m EvalMode) String() string {
	if !m.IsValid() {
		return fmt.Sprintf("EvalMode(%d)", int(m))
	}
	return evalModeNames[m]
}

// IsValid reports whether m is one of the defined modes.
func (m EvalMode) IsValid() bool {
	return m >= EvalMaterial && m <= EvalThreats
}

// ParseEvalMode parses a mode name ("material", "positional", "threats").
func ParseEvalMode(s string) (EvalMode, error) {
	switch s {
	case "material":
		return EvalMaterial, nil
	case "positional":
		return EvalPositional, nil
	case "threats":
		return EvalThreats, nil
	}
	return 0, fmt.Errorf("unknown eval mode %q", s)
}

// Threat weights indexed by the attacked piece's type. Attacking and being
// attacked use the same weights, which keeps the evaluation side-symmetric.
var threatWeight = [6]int{10, 30, 30, 90, 120, 0}

// Piece-Square Tables (PST) for positional evaluation.
// Values are from White's perspective; mirrored for Black.
// Index 0 is a1, so the first source row is rank 1. Every row is
// left-right symmetric, which makes the tables invariant under a
// file flip.

// Pawn PST - rewards advancement toward promotion and central files.
// Rank 5 is all zeros: a pawn arriving there becomes a queen.
var pawnPST = [25]int{
	0, 0, 0, 0, 0,
	5, 10, 15, 10, 5,
	10, 20, 25, 20, 10,
	30, 40, 50, 40, 30,
	0, 0, 0, 0, 0,
}

// Knight PST - encourages central positioning
var knightPST = [25]int{
	-30, -20, -10, -20, -30,
	-20, 0, 10, 0, -20,
	-10, 10, 20, 10, -10,
	-20, 0, 10, 0, -20,
	-30, -20, -10, -20, -30,
}

// Bishop PST - encourages central diagonals
var bishopPST = [25]int{
	-10, -5, 0, -5, -10,
	-5, 10, 5, 10, -5,
	0, 5, 15, 5, 0,
	-5, 10, 5, 10, -5,
	-10, -5, 0, -5, -10,
}

// Queen PST - slight central preference
var queenPST = [25]int{
	-10, -5, 0, -5, -10,
	-5, 5, 5, 5, -5,
	0, 5, 10, 5, 0,
	-5, 5, 5, 5, -5,
	-10, -5, 0, -5, -10,
}

// King PST - keeps the king on the back ranks
var kingPST = [25]int{
	10, 5, 0, 5, 10,
	0, -5, -10, -5, 0,
	-10, -15, -20, -15, -10,
	-20, -25, -30, -25, -20,
	-30, -35, -40, -35, -30,
}

// All PSTs combined for easy lookup
var psts = [...][25]int{pawnPST, knightPST, bishopPST, queenPST, kingPST}

// Evaluate returns the static evaluation of pos from the side to move's
// perspective, using the given heuristic mode.
func Evaluate(pos *board.Position, mode EvalMode) int {
	var score int
	switch mode {
	case EvalMaterial:
		score = pos.Material()
	case EvalPositional:
		score = pos.Material() + positionalScore(pos)
	case EvalThreats:
		score = pos.Material() + positionalScore(pos) + threatScore(pos)
	}

	// Negamax convention: the score belongs to the side to move.
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}

// positionalScore sums the piece-square tables for both sides.
// The result is from White's perspective.
func positionalScore(pos *board.Position) int {
	var score int
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}

		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()

				pstSq := sq
				if c == board.Black {
					pstSq = sq.Mirror() // Mirror for black
				}
				score += sign * psts[pt][pstSq]
			}
		}
	}
	return score
}

// threatScore rewards attacking enemy pieces and penalizes leaving own
// pieces attacked, weighted by the attacked piece's type. The result is
// from White's perspective.
func threatScore(pos *board.Position) int {
	whiteAttacks := pos.AttackMap(board.White)
	blackAttacks := pos.AttackMap(board.Black)

	var score int
	for pt := board.Pawn; pt <= board.King; pt++ {
		whiteHit := (pos.Pieces[board.White][pt] & blackAttacks).PopCount()
		blackHit := (pos.Pieces[board.Black][pt] & whiteAttacks).PopCount()
		score += threatWeight[pt] * (blackHit - whiteHit)
	}
	return score
}
