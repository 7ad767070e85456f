package engine

import (
	"time"

	"github.com/hailam/minichess/internal/board"
)

// Search constants
const (
	// Infinity bounds every score the search can produce.
	Infinity = 30000

	// WinScore is the base score for a captured king. A win found at ply p
	// scores WinScore - p, so shorter wins score higher. Static evaluations
	// always stay below WinScore - MaxPly.
	WinScore = 25000

	// MaxPly caps the search depth.
	MaxPly = 64
)

// winFound reports whether score is a king-capture score for either side.
func winFound(score int) bool {
	return abs(score) >= WinScore-MaxPly
}

// searcher holds the state of a single search call. It is not reused
// across calls and not safe for concurrent use.
type searcher struct {
	eval      EvalMode
	alphaBeta bool
	deadline  time.Time

	nodes   uint64
	aborted bool
}

// expired polls the wall-clock deadline. Once it trips, the search is
// aborted and every in-flight recursion unwinds without touching the
// best-so-far result.
func (s *searcher) expired() bool {
	if s.aborted {
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
	}
	return s.aborted
}

// searchRoot runs one fixed-depth pass over the root moves and returns the
// best move and its score. Ties keep the earliest move in generation order.
// The result is meaningless if the searcher aborted mid-pass.
func (s *searcher) searchRoot(pos *board.Position, moves *board.MoveList, depth int) (board.Move, int) {
	if s.expired() {
		return board.NoMove, 0
	}
	s.nodes++

	bestMove := board.NoMove
	bestScore := -Infinity
	alpha, beta := -Infinity, Infinity

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		var score int
		if s.alphaBeta {
			score = -s.alphabeta(pos, depth-1, 1, -beta, -alpha)
		} else {
			score = -s.minimax(pos, depth-1, 1)
		}
		pos.UnmakeMove(m, undo)

		if s.aborted {
			return board.NoMove, 0
		}
		if score > bestScore {
			bestScore = score
			bestMove = m
			if bestScore > alpha {
				alpha = bestScore
			}
		}
	}

	return bestMove, bestScore
}

// minimax is plain negamax with no pruning: every node in the tree is
// visited. Scores are from the side to move's perspective.
func (s *searcher) minimax(pos *board.Position, depth, ply int) int {
	if s.expired() {
		return 0
	}
	s.nodes++

	// A captured king ends the line before anything else is considered.
	if pos.MissingKing(pos.SideToMove) {
		return -(WinScore - ply)
	}
	if pos.MissingKing(pos.SideToMove.Other()) {
		return WinScore - ply
	}

	if depth == 0 {
		return Evaluate(pos, s.eval)
	}

	var ml board.MoveList
	pos.GenerateMovesInto(&ml)
	if ml.Len() == 0 {
		return Evaluate(pos, s.eval)
	}

	best := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := pos.MakeMove(m)
		score := -s.minimax(pos, depth-1, ply+1)
		pos.UnmakeMove(m, undo)

		if s.aborted {
			return 0
		}
		if score > best {
			best = score
		}
	}
	return best
}

// alphabeta is negamax with alpha-beta pruning. Terminal handling, move
// order, and the strictly-greater update match minimax exactly, so both
// return the same move and score; pruning only reduces the nodes visited.
func (s *searcher) alphabeta(pos *board.Position, depth, ply, alpha, beta int) int {
	if s.expired() {
		return 0
	}
	s.nodes++

	if pos.MissingKing(pos.SideToMove) {
		return -(WinScore - ply)
	}
	if pos.MissingKing(pos.SideToMove.Other()) {
		return WinScore - ply
	}

	if depth == 0 {
		return Evaluate(pos, s.eval)
	}

	var ml board.MoveList
	pos.GenerateMovesInto(&ml)
	if ml.Len() == 0 {
		return Evaluate(pos, s.eval)
	}

	best := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := pos.MakeMove(m)
		score := -s.alphabeta(pos, depth-1, ply+1, -beta, -alpha)
		pos.UnmakeMove(m, undo)

		if s.aborted {
			return 0
		}
		if score > best {
			best = score
			if best > alpha {
				alpha = best
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
