// Package game runs minichess games between external and engine players.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

// InactivityLimit is the number of half-moves without a capture after
// which the game is drawn. Only captures reset the count.
const InactivityLimit = 20

// An Outcome is the result of a game.
type Outcome string

const (
	// NoOutcome indicates that a game is in progress.
	NoOutcome Outcome = "*"
	// WhiteWon indicates that White won the game.
	WhiteWon Outcome = "1-0"
	// BlackWon indicates that Black won the game.
	BlackWon Outcome = "0-1"
	// Draw indicates that the game was a draw.
	Draw Outcome = "1/2-1/2"
)

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	return string(o)
}

// A Method is the way an outcome came about.
type Method uint8

const (
	// NoMethod indicates that the game has no outcome yet.
	NoMethod Method = iota
	// KingCapture indicates that a king was captured off the board.
	KingCapture
	// DrawByInactivity indicates that InactivityLimit half-moves passed
	// without a capture.
	DrawByInactivity
	// Stalemate indicates that the side to move had no legal moves.
	Stalemate
	// Resignation indicates that a player resigned.
	Resignation
)

var methodNames = [...]string{"none", "king capture", "inactivity", "stalemate", "resignation"}

// String implements the fmt.Stringer interface.
func (m Method) String() string {
	if int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

var (
	// ErrGameOver is returned when a move is submitted to a finished game.
	ErrGameOver = errors.New("game: game is over")
	// ErrIllegalMove is returned when a move fails validation.
	ErrIllegalMove = errors.New("game: illegal move")
)

// Game holds one minichess game: the authoritative position, the move
// history, and the controllers for each side. It is not safe for
// concurrent use.
type Game struct {
	pos     *board.Position
	history []board.Move
	outcome Outcome
	method  Method

	engines [2]*engine.Engine
	limits  [2]engine.Limits
}

// Option configures a new game.
type Option func(*Game)

// WithEngine puts the given color under engine control with the given
// per-move search limits.
func WithEngine(c board.Color, eng *engine.Engine, limits engine.Limits) Option {
	return func(g *Game) {
		g.engines[c] = eng
		g.limits[c] = limits
	}
}

// WithPosition starts the game from a copy of pos instead of the initial
// layout.
func WithPosition(pos *board.Position) Option {
	return func(g *Game) {
		g.pos = pos.Copy()
	}
}

// New creates a game at the initial layout. Both sides are externally
// controlled unless WithEngine says otherwise.
func New(options ...Option) *Game {
	g := &Game{
		pos:     board.NewPosition(),
		outcome: NoOutcome,
		method:  NoMethod,
	}
	for _, opt := range options {
		opt(g)
	}
	// A position supplied by WithPosition may already be decided.
	g.updateOutcome()
	return g
}

// Apply validates mv against the generated move list, applies it, and
// updates the game state, ending the game on a terminal position.
func (g *Game) Apply(mv board.Move) error {
	if g.outcome != NoOutcome {
		return ErrGameOver
	}
	if !g.pos.GenerateMoves().Contains(mv) {
		return fmt.Errorf("%w: %s", ErrIllegalMove, mv)
	}

	g.pos.MakeMove(mv)
	g.history = append(g.history, mv)
	g.updateOutcome()
	return nil
}

// EngineMove runs the engine controlling the side to move and applies the
// move it picks. A context deadline caps the configured search budget.
func (g *Game) EngineMove(ctx context.Context) (board.Move, engine.Result, error) {
	if g.outcome != NoOutcome {
		return board.NoMove, engine.Result{}, ErrGameOver
	}

	us := g.pos.SideToMove
	eng := g.engines[us]
	if eng == nil {
		return board.NoMove, engine.Result{}, fmt.Errorf("game: %s is not engine-controlled", us)
	}
	if err := ctx.Err(); err != nil {
		return board.NoMove, engine.Result{}, err
	}

	limits := g.limits[us]
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return board.NoMove, engine.Result{}, context.DeadlineExceeded
		}
		if limits.MoveTime <= 0 || remaining < limits.MoveTime {
			limits.MoveTime = remaining
		}
	}

	res, err := eng.Search(g.pos, limits)
	if err != nil {
		if errors.Is(err, engine.ErrNoMoves) {
			g.outcome, g.method = Draw, Stalemate
		}
		return board.NoMove, engine.Result{}, fmt.Errorf("game: engine search: %w", err)
	}

	if err := g.Apply(res.Move); err != nil {
		return board.NoMove, engine.Result{}, err
	}
	return res.Move, res, nil
}

// Resign ends the game in favor of the side that did not resign.
// It does nothing if the game is already over.
func (g *Game) Resign(c board.Color) {
	if g.outcome != NoOutcome || c == board.NoColor {
		return
	}
	if c == board.White {
		g.outcome = BlackWon
	} else {
		g.outcome = WhiteWon
	}
	g.method = Resignation
}

// updateOutcome marks the game finished when the position is terminal.
// A capture resets the inactivity clock before this check, so a capturing
// move never triggers the inactivity draw.
func (g *Game) updateOutcome() {
	if g.outcome != NoOutcome {
		return
	}
	switch {
	case g.pos.MissingKing(board.White):
		g.outcome, g.method = BlackWon, KingCapture
	case g.pos.MissingKing(board.Black):
		g.outcome, g.method = WhiteWon, KingCapture
	case g.pos.HalfMoveClock >= InactivityLimit:
		g.outcome, g.method = Draw, DrawByInactivity
	case !g.pos.HasLegalMoves():
		g.outcome, g.method = Draw, Stalemate
	}
}

// Position returns a snapshot of the current position.
func (g *Game) Position() *board.Position {
	return g.pos.Copy()
}

// History returns the moves played so far, in order.
func (g *Game) History() []board.Move {
	out := make([]board.Move, len(g.history))
	copy(out, g.history)
	return out
}

// Outcome returns the game outcome.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// Method returns the method in which the outcome occurred.
func (g *Game) Method() Method {
	return g.method
}

// Over reports whether the game has finished.
func (g *Game) Over() bool {
	return g.outcome != NoOutcome
}

// SideToMove returns the color to move.
func (g *Game) SideToMove() board.Color {
	return g.pos.SideToMove
}

// EngineControlled reports whether the given color is played by an engine.
func (g *Game) EngineControlled(c board.Color) bool {
	if c != board.White && c != board.Black {
		return false
	}
	return g.engines[c] != nil
}
