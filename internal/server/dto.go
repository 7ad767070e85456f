package server

import (
	"github.com/hailam/minichess/internal/board"
)

// GameState is the wire representation of one game.
type GameState struct {
	ID            string     `json:"id"`
	FEN           string     `json:"fen"`
	Board         [][]string `json:"board"`
	ToMove        string     `json:"toMove"`
	HalfMoveClock int        `json:"halfMoveClock"`
	MoveHistory   []string   `json:"moveHistory"`
	LegalMoves    []string   `json:"legalMoves"`
	LastMove      *string    `json:"lastMove"` // null before the first move
	Outcome       string     `json:"outcome"`
	Method        string     `json:"method,omitempty"`
	MoveTime      string     `json:"moveTime,omitempty"`
	Players       Players    `json:"players"`
}

type Players struct {
	White PlayerInfo `json:"white"`
	Black PlayerInfo `json:"black"`
}

// PlayerInfo describes who controls a side. Engine sides carry their
// search settings; human sides carry the player ID once claimed.
type PlayerInfo struct {
	ID        string `json:"id,omitempty"`
	Engine    bool   `json:"engine"`
	Eval      string `json:"eval,omitempty"`
	AlphaBeta *bool  `json:"alphaBeta,omitempty"`
}

// EngineReply reports the search behind an engine move.
type EngineReply struct {
	Move      string `json:"move"`
	Score     int    `json:"score"`
	ScoreText string `json:"scoreText"`
	Nodes     uint64 `json:"nodes"`
	Depth     int    `json:"depth"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// SideRequest configures one side of a new game.
type SideRequest struct {
	Control   string `json:"control,omitempty"` // "human" or "engine"
	Eval      string `json:"eval,omitempty"`
	AlphaBeta *bool  `json:"alphaBeta,omitempty"`
}

// CreateGameRequest configures a new game. An empty body gives the
// default pairing: a human White against the engine as Black.
type CreateGameRequest struct {
	White    SideRequest `json:"white"`
	Black    SideRequest `json:"black"`
	MoveTime string      `json:"moveTime,omitempty"`
}

// CreateGameResponse returns the new game plus the creator's seat. Engine
// holds White's opening move when White is engine-controlled.
type CreateGameResponse struct {
	ID     string       `json:"id"`
	Color  string       `json:"color,omitempty"`
	State  GameState    `json:"state"`
	Engine *EngineReply `json:"engine,omitempty"`
}

// MoveRequest submits a move. An empty move asks the engine controlling
// the side to move to play instead.
type MoveRequest struct {
	Move string `json:"move"`
}

// MoveResponse returns the game after a move, plus the engine's reply
// when an engine side moved.
type MoveResponse struct {
	State  GameState    `json:"state"`
	Engine *EngineReply `json:"engine,omitempty"`
}

// ResignRequest names the side giving up. The color may be omitted when
// the caller controls exactly one side.
type ResignRequest struct {
	Color string `json:"color,omitempty"`
}

// AnalysisResponse is an engine evaluation of the current position.
type AnalysisResponse struct {
	Move      string `json:"move"`
	Score     int    `json:"score"`
	ScoreText string `json:"scoreText"`
	Nodes     uint64 `json:"nodes"`
	Depth     int    `json:"depth"`
	ElapsedMs int64  `json:"elapsedMs"`
	Eval      string `json:"eval"`
	AlphaBeta bool   `json:"alphaBeta"`
	Cached    bool   `json:"cached"`
}

// PreferencesDTO carries the default engine settings over the wire.
type PreferencesDTO struct {
	MoveTime  string `json:"moveTime"`
	AlphaBeta *bool  `json:"alphaBeta,omitempty"`
	Eval      string `json:"eval,omitempty"`
}

// boardCells renders the position as rows of piece letters, top rank
// first, with empty squares as empty strings.
func boardCells(pos *board.Position) [][]string {
	cells := make([][]string, 5)
	for r := 4; r >= 0; r-- {
		row := make([]string, 5)
		for f := 0; f < 5; f++ {
			if p := pos.PieceAt(board.NewSquare(f, r)); p != board.NoPiece {
				row[f] = p.String()
			}
		}
		cells[4-r] = row
	}
	return cells
}

// moveStrings converts a move history to algebraic strings.
func moveStrings(moves []board.Move) []string {
	out := make([]string, len(moves))
	for i, mv := range moves {
		out[i] = mv.String()
	}
	return out
}

// legalMoveStrings lists the legal moves in the position.
func legalMoveStrings(pos *board.Position) []string {
	ml := pos.GenerateMoves()
	out := make([]string, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		out = append(out, ml.Get(i).String())
	}
	return out
}
