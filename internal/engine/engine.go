package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/hailam/minichess/internal/board"
)

// Config fixes an engine's search behavior for its lifetime.
type Config struct {
	AlphaBeta bool     // prune with alpha-beta bounds
	Eval      EvalMode // evaluation heuristic
}

// Limits specifies constraints on a single search call.
type Limits struct {
	Depth    int           // maximum depth (0 = no limit)
	MoveTime time.Duration // wall-clock budget (0 = no limit)
	Infinite bool          // search to MaxPly regardless of time
}

// Result is the outcome of a search call.
type Result struct {
	Move    board.Move    // best move found
	Score   int           // score of Move from the mover's perspective
	Nodes   uint64        // nodes visited, cumulative across depths
	Elapsed time.Duration // wall-clock time spent
	Depth   int           // deepest fully completed depth (0 = fallback move)
}

var (
	// ErrNoMoves reports a root position with no legal moves. The caller
	// decides what that means for the game.
	ErrNoMoves = errors.New("engine: no legal moves")

	// ErrInvalidLimits reports limits with neither a depth nor a time
	// budget.
	ErrInvalidLimits = errors.New("engine: limits must set a depth or a move time")
)

// Engine is the minichess AI engine.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) (*Engine, error) {
	if !cfg.Eval.IsValid() {
		return nil, fmt.Errorf("engine: invalid eval mode %d", int(cfg.Eval))
	}
	return &Engine{cfg: cfg}, nil
}

// Search finds the best move for the side to move in pos.
//
// With a MoveTime budget it deepens iteratively, keeping the result of the
// last fully completed depth; a pass interrupted by the deadline is
// discarded. The result always carries a legal move when one exists, even
// if the budget is too small for a single depth-1 pass. The input position
// is not modified.
func (e *Engine) Search(pos *board.Position, limits Limits) (Result, error) {
	if limits.Depth <= 0 && limits.MoveTime <= 0 && !limits.Infinite {
		return Result{}, ErrInvalidLimits
	}

	tm := NewTimeManager(limits)

	root := pos.Copy()
	moves := root.GenerateMoves()
	if moves.Len() == 0 {
		return Result{}, ErrNoMoves
	}

	// Fallback seed: the first legal move, so an already-expired budget
	// still yields a playable result at Depth 0.
	result := Result{
		Move:  moves.Get(0),
		Score: Evaluate(root, e.cfg.Eval),
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	s := &searcher{
		eval:      e.cfg.Eval,
		alphaBeta: e.cfg.AlphaBeta,
		deadline:  tm.Deadline(),
	}

	// Iterative deepening
	for depth := 1; depth <= maxDepth; depth++ {
		// Check time before starting a new iteration.
		if tm.ShouldStop() {
			break
		}

		move, score := s.searchRoot(root, moves, depth)
		if s.aborted {
			break
		}

		result.Move = move
		result.Score = score
		result.Depth = depth

		// Early termination: a forced king capture cannot improve.
		if winFound(score) {
			break
		}
	}

	result.Nodes = s.nodes
	result.Elapsed = tm.Elapsed()
	return result, nil
}

// Evaluate returns the static evaluation of a position under the engine's
// configured heuristic.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos, e.cfg.Eval)
}

// Perft counts the leaf nodes of the move-generation tree to the given
// depth. The position is restored before returning.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score >= WinScore-MaxPly {
		winIn := (WinScore - score + 1) / 2
		return "Win in " + fmt.Sprint(winIn)
	}
	if score <= -(WinScore - MaxPly) {
		lossIn := (WinScore + score + 1) / 2
		return "Loss in " + fmt.Sprint(lossIn)
	}

	// Centipawns to pawns
	return fmt.Sprintf("%+.2f", float64(score)/100)
}
