package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/game"
	"github.com/hailam/minichess/internal/storage"
)

var (
	// ErrGameNotFound is returned for unknown or evicted game IDs.
	ErrGameNotFound = errors.New("server: game not found")
	// ErrInvalidMove is returned when a move string cannot be parsed.
	ErrInvalidMove = errors.New("server: invalid move")
	// ErrInvalidConfig is returned for bad game or analysis settings.
	ErrInvalidConfig = errors.New("server: invalid configuration")
	// ErrWrongPlayer is returned when a side is claimed by another player.
	ErrWrongPlayer = errors.New("server: side belongs to another player")
	// ErrNoSide is returned when the caller controls no side of the game.
	ErrNoSide = errors.New("server: player controls no side")
	// ErrEngineSide is returned when a player acts for an engine side.
	ErrEngineSide = errors.New("server: side is engine-controlled")
	// ErrHumanSide is returned when an engine move is requested for a
	// side under external control.
	ErrHumanSide = errors.New("server: side to move is not engine-controlled")
	// ErrNeedColor is returned when a resignation is ambiguous.
	ErrNeedColor = errors.New("server: color required")
)

const (
	analysisDefaultDepth = 5
	analysisMaxDepth     = 10

	// Finished games stay readable for a while before the reaper
	// removes them.
	retainFinished = time.Hour
	reapInterval   = 10 * time.Minute
)

// side records who controls one color of a game.
type side struct {
	engine    bool
	eval      engine.EvalMode
	alphaBeta bool
	playerID  string // human sides; empty until claimed by a move
}

// managedGame couples a game with its controllers and subscribers.
type managedGame struct {
	id       string
	created  time.Time
	moveTime time.Duration

	mu         sync.Mutex
	game       *game.Game
	sides      [2]side
	recorded   bool
	finishedAt time.Time

	connMu sync.RWMutex
	conns  map[string]*wsConn
}

// GameManager owns every live game. All game access goes through it.
type GameManager struct {
	log   zerolog.Logger
	store *storage.Storage
	cache bool

	mu    sync.RWMutex
	games map[string]*managedGame

	done chan struct{}
}

// NewGameManager creates a manager and starts its background reaper.
func NewGameManager(log zerolog.Logger, store *storage.Storage, cacheAnalysis bool) *GameManager {
	gm := &GameManager{
		log:   log,
		store: store,
		cache: cacheAnalysis,
		games: make(map[string]*managedGame),
		done:  make(chan struct{}),
	}
	go gm.reapLoop()
	return gm
}

// Close stops the background reaper.
func (gm *GameManager) Close() {
	close(gm.done)
}

// Create builds a new game. The creator claims the first human side;
// when White is engine-controlled its opening move is played immediately.
func (gm *GameManager) Create(playerID string, req CreateGameRequest) (*CreateGameResponse, error) {
	prefs, err := gm.store.LoadPreferences()
	if err != nil {
		gm.log.Warn().Err(err).Msg("load preferences failed, using defaults")
		prefs = storage.DefaultPreferences()
	}

	moveTime := prefs.MoveTime
	if req.MoveTime != "" {
		moveTime, err = time.ParseDuration(req.MoveTime)
		if err != nil {
			return nil, fmt.Errorf("%w: moveTime: %v", ErrInvalidConfig, err)
		}
	}
	if moveTime <= 0 {
		return nil, fmt.Errorf("%w: moveTime must be positive, got %s", ErrInvalidConfig, moveTime)
	}

	whiteSide, err := resolveSide(req.White, "human", prefs)
	if err != nil {
		return nil, err
	}
	blackSide, err := resolveSide(req.Black, "engine", prefs)
	if err != nil {
		return nil, err
	}

	var options []game.Option
	for c, s := range [2]side{whiteSide, blackSide} {
		if !s.engine {
			continue
		}
		eng, err := engine.NewEngine(engine.Config{AlphaBeta: s.alphaBeta, Eval: s.eval})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		options = append(options, game.WithEngine(board.Color(c), eng, engine.Limits{MoveTime: moveTime}))
	}

	mg := &managedGame{
		id:       uuid.New().String(),
		created:  time.Now(),
		moveTime: moveTime,
		game:     game.New(options...),
		sides:    [2]side{whiteSide, blackSide},
		conns:    make(map[string]*wsConn),
	}

	claimed := ""
	if !mg.sides[board.White].engine {
		mg.sides[board.White].playerID = playerID
		claimed = "white"
	} else if !mg.sides[board.Black].engine {
		mg.sides[board.Black].playerID = playerID
		claimed = "black"
	}

	gm.mu.Lock()
	gm.games[mg.id] = mg
	gm.mu.Unlock()

	gm.log.Info().
		Str("game", mg.id).
		Str("player", playerID).
		Bool("whiteEngine", whiteSide.engine).
		Bool("blackEngine", blackSide.engine).
		Dur("moveTime", moveTime).
		Msg("game created")

	mg.mu.Lock()
	defer mg.mu.Unlock()

	var reply *EngineReply
	if mg.game.EngineControlled(board.White) {
		reply, err = gm.engineMoveLocked(mg)
		if err != nil {
			return nil, err
		}
	}

	return &CreateGameResponse{
		ID:     mg.id,
		Color:  claimed,
		State:  mg.stateLocked(),
		Engine: reply,
	}, nil
}

// resolveSide turns a side request into a controller, filling gaps from
// the stored preferences.
func resolveSide(req SideRequest, defaultControl string, prefs *storage.Preferences) (side, error) {
	control := req.Control
	if control == "" {
		control = defaultControl
	}

	switch control {
	case "human":
		return side{}, nil
	case "engine":
		evalStr := req.Eval
		if evalStr == "" {
			evalStr = prefs.Eval
		}
		mode, err := engine.ParseEvalMode(evalStr)
		if err != nil {
			return side{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		alphaBeta := prefs.AlphaBeta
		if req.AlphaBeta != nil {
			alphaBeta = *req.AlphaBeta
		}
		return side{engine: true, eval: mode, alphaBeta: alphaBeta}, nil
	default:
		return side{}, fmt.Errorf("%w: unknown control %q", ErrInvalidConfig, control)
	}
}

func (gm *GameManager) get(gameID string) (*managedGame, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	mg, ok := gm.games[gameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return mg, nil
}

// State returns a snapshot of one game.
func (gm *GameManager) State(gameID string) (GameState, error) {
	mg, err := gm.get(gameID)
	if err != nil {
		return GameState{}, err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()
	return mg.stateLocked(), nil
}

// Move applies a player move, or one engine move when moveStr is empty.
// When the applied move hands the turn to an engine side, the engine
// replies within the same call.
func (gm *GameManager) Move(gameID, playerID, moveStr string) (GameState, *EngineReply, error) {
	mg, err := gm.get(gameID)
	if err != nil {
		return GameState{}, nil, err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()

	var reply *EngineReply
	if moveStr == "" {
		if mg.game.Over() {
			return GameState{}, nil, game.ErrGameOver
		}
		if !mg.game.EngineControlled(mg.game.SideToMove()) {
			return GameState{}, nil, ErrHumanSide
		}
		reply, err = gm.engineMoveLocked(mg)
		if err != nil {
			return GameState{}, nil, err
		}
	} else {
		if mg.game.Over() {
			return GameState{}, nil, game.ErrGameOver
		}
		mover := mg.game.SideToMove()
		if err := mg.canActLocked(playerID, mover); err != nil {
			return GameState{}, nil, err
		}

		mv, perr := board.ParseMove(moveStr, mg.game.Position())
		if perr != nil {
			return GameState{}, nil, fmt.Errorf("%w: %v", ErrInvalidMove, perr)
		}
		if err := mg.game.Apply(mv); err != nil {
			return GameState{}, nil, err
		}
		mg.claimLocked(playerID, mover)
		mg.broadcast(newMessage(MessageTypeMove, MovePayload{Move: mv.String(), Color: colorName(mover)}))

		if next := mg.game.SideToMove(); !mg.game.Over() && mg.game.EngineControlled(next) {
			reply, err = gm.engineMoveLocked(mg)
			if err != nil {
				return GameState{}, nil, err
			}
		}
	}

	state := mg.stateLocked()
	mg.broadcast(newMessage(MessageTypeState, state))
	if mg.game.Over() {
		gm.finishLocked(mg)
	}
	return state, reply, nil
}

// Resign ends the game against the resigning side. The color may be
// blank when the caller controls exactly one side.
func (gm *GameManager) Resign(gameID, playerID, colorStr string) (GameState, error) {
	mg, err := gm.get(gameID)
	if err != nil {
		return GameState{}, err
	}

	mg.mu.Lock()
	defer mg.mu.Unlock()

	if mg.game.Over() {
		return GameState{}, game.ErrGameOver
	}

	var c board.Color
	switch colorStr {
	case "white":
		c = board.White
	case "black":
		c = board.Black
	case "":
		c, err = mg.sideOfLocked(playerID)
		if err != nil {
			return GameState{}, err
		}
	default:
		return GameState{}, fmt.Errorf("%w: unknown color %q", ErrInvalidConfig, colorStr)
	}

	if err := mg.canActLocked(playerID, c); err != nil {
		return GameState{}, err
	}

	mg.game.Resign(c)
	mg.claimLocked(playerID, c)
	state := mg.stateLocked()
	mg.broadcast(newMessage(MessageTypeState, state))
	gm.finishLocked(mg)
	return state, nil
}

// Analyze evaluates the current position of a game at a fixed depth,
// consulting the cache first. Cached results are exact because
// fixed-depth searches are deterministic.
func (gm *GameManager) Analyze(gameID string, depth int, mode engine.EvalMode, alphaBeta bool) (*storage.Analysis, bool, error) {
	mg, err := gm.get(gameID)
	if err != nil {
		return nil, false, err
	}

	mg.mu.Lock()
	pos := mg.game.Position()
	mg.mu.Unlock()

	key := storage.AnalysisKey(pos.Hash, mode.String(), alphaBeta, depth)
	if gm.cache {
		a, ok, err := gm.store.LoadAnalysis(key)
		if err != nil {
			gm.log.Warn().Err(err).Msg("analysis cache read failed")
		} else if ok {
			return a, true, nil
		}
	}

	eng, err := engine.NewEngine(engine.Config{AlphaBeta: alphaBeta, Eval: mode})
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	res, err := eng.Search(pos, engine.Limits{Depth: depth})
	if err != nil {
		return nil, false, err
	}

	a := &storage.Analysis{
		Move:    res.Move.String(),
		Score:   res.Score,
		Nodes:   res.Nodes,
		Depth:   res.Depth,
		Elapsed: res.Elapsed,
	}
	if gm.cache {
		if err := gm.store.SaveAnalysis(key, a); err != nil {
			gm.log.Warn().Err(err).Msg("analysis cache write failed")
		}
	}
	return a, false, nil
}

// engineMoveLocked plays one engine move and announces it.
func (gm *GameManager) engineMoveLocked(mg *managedGame) (*EngineReply, error) {
	mover := mg.game.SideToMove()
	mv, res, err := mg.game.EngineMove(context.Background())
	if err != nil {
		return nil, err
	}

	reply := &EngineReply{
		Move:      mv.String(),
		Score:     res.Score,
		ScoreText: engine.ScoreToString(res.Score),
		Nodes:     res.Nodes,
		Depth:     res.Depth,
		ElapsedMs: res.Elapsed.Milliseconds(),
	}
	gm.log.Debug().
		Str("game", mg.id).
		Str("move", reply.Move).
		Str("score", reply.ScoreText).
		Uint64("nodes", reply.Nodes).
		Int("depth", reply.Depth).
		Msg("engine move")

	mg.broadcast(newMessage(MessageTypeMove, MovePayload{Move: reply.Move, Color: colorName(mover)}))
	return reply, nil
}

// finishLocked records a finished game once and tells the subscribers.
func (gm *GameManager) finishLocked(mg *managedGame) {
	if mg.recorded {
		return
	}
	mg.recorded = true
	mg.finishedAt = time.Now()

	outcome := mg.game.Outcome().String()
	method := mg.game.Method().String()
	rec := storage.GameRecord{
		Outcome:  outcome,
		Method:   method,
		Plies:    len(mg.game.History()),
		Duration: time.Since(mg.created),
	}
	if err := gm.store.RecordGame(rec); err != nil {
		gm.log.Warn().Err(err).Str("game", mg.id).Msg("record game failed")
	}

	gm.log.Info().
		Str("game", mg.id).
		Str("outcome", outcome).
		Str("method", method).
		Int("plies", rec.Plies).
		Msg("game finished")

	mg.broadcast(newMessage(MessageTypeGameOver, GameOverPayload{Outcome: outcome, Method: method}))
}

func (gm *GameManager) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.reapOnce(time.Now())
		}
	}
}

// reapOnce drops finished games past their retention window.
func (gm *GameManager) reapOnce(now time.Time) int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	evicted := 0
	for id, mg := range gm.games {
		mg.mu.Lock()
		expired := mg.recorded && now.Sub(mg.finishedAt) > retainFinished
		mg.mu.Unlock()
		if expired {
			delete(gm.games, id)
			mg.closeConns()
			evicted++
		}
	}

	if evicted > 0 {
		gm.log.Info().Int("games", evicted).Msg("evicted finished games")
	}
	return evicted
}

// canActLocked reports whether the player may act for the side.
func (mg *managedGame) canActLocked(playerID string, c board.Color) error {
	s := mg.sides[c]
	if s.engine {
		return ErrEngineSide
	}
	if s.playerID != "" && s.playerID != playerID {
		return ErrWrongPlayer
	}
	return nil
}

// claimLocked binds an unclaimed human side to the acting player. A
// side is claimed by the first action that actually lands on it.
func (mg *managedGame) claimLocked(playerID string, c board.Color) {
	if s := &mg.sides[c]; s.playerID == "" {
		s.playerID = playerID
	}
}

// sideOfLocked finds the single side the player controls.
func (mg *managedGame) sideOfLocked(playerID string) (board.Color, error) {
	white := !mg.sides[board.White].engine && mg.sides[board.White].playerID == playerID
	black := !mg.sides[board.Black].engine && mg.sides[board.Black].playerID == playerID
	switch {
	case white && black:
		return board.NoColor, ErrNeedColor
	case white:
		return board.White, nil
	case black:
		return board.Black, nil
	}
	return board.NoColor, ErrNoSide
}

// stateLocked builds the wire snapshot of the game.
func (mg *managedGame) stateLocked() GameState {
	pos := mg.game.Position()
	history := mg.game.History()

	var lastMove *string
	if len(history) > 0 {
		s := history[len(history)-1].String()
		lastMove = &s
	}

	legal := []string{}
	if !mg.game.Over() {
		legal = legalMoveStrings(pos)
	}

	state := GameState{
		ID:            mg.id,
		FEN:           pos.ToFEN(),
		Board:         boardCells(pos),
		ToMove:        colorName(pos.SideToMove),
		HalfMoveClock: pos.HalfMoveClock,
		MoveHistory:   moveStrings(history),
		LegalMoves:    legal,
		LastMove:      lastMove,
		Outcome:       mg.game.Outcome().String(),
		Players:       mg.playersLocked(),
	}
	if m := mg.game.Method(); m != game.NoMethod {
		state.Method = m.String()
	}
	if mg.sides[board.White].engine || mg.sides[board.Black].engine {
		state.MoveTime = mg.moveTime.String()
	}
	return state
}

func (mg *managedGame) playersLocked() Players {
	info := func(c board.Color) PlayerInfo {
		s := mg.sides[c]
		if !s.engine {
			return PlayerInfo{ID: s.playerID}
		}
		alphaBeta := s.alphaBeta
		return PlayerInfo{Engine: true, Eval: s.eval.String(), AlphaBeta: &alphaBeta}
	}
	return Players{White: info(board.White), Black: info(board.Black)}
}

func colorName(c board.Color) string {
	if c == board.Black {
		return "black"
	}
	return "white"
}

// wsConn serializes writes to one WebSocket connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// addConn subscribes a connection, replacing any earlier one from the
// same player.
func (mg *managedGame) addConn(playerID string, conn *websocket.Conn) *wsConn {
	wc := &wsConn{conn: conn}

	mg.connMu.Lock()
	defer mg.connMu.Unlock()
	if old, ok := mg.conns[playerID]; ok {
		old.Close()
	}
	mg.conns[playerID] = wc
	return wc
}

func (mg *managedGame) removeConn(playerID string, wc *wsConn) {
	mg.connMu.Lock()
	defer mg.connMu.Unlock()
	if cur, ok := mg.conns[playerID]; ok && cur == wc {
		delete(mg.conns, playerID)
	}
}

// broadcast sends one message to every subscriber, dropping connections
// that fail. Writes happen outside the connection lock snapshot.
func (mg *managedGame) broadcast(msg Message) {
	type target struct {
		id string
		wc *wsConn
	}

	mg.connMu.RLock()
	targets := make([]target, 0, len(mg.conns))
	for id, wc := range mg.conns {
		targets = append(targets, target{id: id, wc: wc})
	}
	mg.connMu.RUnlock()

	for _, t := range targets {
		if err := t.wc.WriteJSON(msg); err != nil {
			mg.removeConn(t.id, t.wc)
			t.wc.Close()
		}
	}
}

func (mg *managedGame) closeConns() {
	mg.connMu.Lock()
	defer mg.connMu.Unlock()
	for id, wc := range mg.conns {
		wc.Close()
		delete(mg.conns, id)
	}
}
