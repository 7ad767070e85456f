package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{}
	cfg.Data.Cache = true

	srv := New(cfg, zerolog.Nop(), store)
	t.Cleanup(srv.manager.Close)
	return srv
}

// doJSON performs one request against the app and returns the response
// with its body drained.
func doJSON(t *testing.T, app *fiber.App, method, path, playerID string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	return resp, data
}

func decodeJSON(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func TestCreateAndGetGame(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("X-Player-ID"); got != "alice" {
		t.Errorf("X-Player-ID echo = %q, want alice", got)
	}

	var created CreateGameResponse
	decodeJSON(t, body, &created)

	if created.ID == "" {
		t.Fatal("created game has no ID")
	}
	if created.Color != "white" {
		t.Errorf("creator seat = %q, want white", created.Color)
	}
	if created.Engine != nil {
		t.Errorf("unexpected engine reply for human White: %+v", created.Engine)
	}

	state := created.State
	if state.FEN != board.StartFEN {
		t.Errorf("FEN = %q, want start position", state.FEN)
	}
	if state.ToMove != "white" {
		t.Errorf("toMove = %q, want white", state.ToMove)
	}
	if state.Outcome != "*" {
		t.Errorf("outcome = %q, want *", state.Outcome)
	}
	if state.LastMove != nil {
		t.Errorf("lastMove = %q, want null", *state.LastMove)
	}
	if len(state.LegalMoves) != 13 {
		t.Errorf("legal moves = %d, want 13", len(state.LegalMoves))
	}
	if state.MoveTime == "" {
		t.Error("moveTime missing for a game with an engine side")
	}

	if state.Players.White.Engine || state.Players.White.ID != "alice" {
		t.Errorf("white player = %+v, want human alice", state.Players.White)
	}
	if !state.Players.Black.Engine {
		t.Errorf("black player = %+v, want engine", state.Players.Black)
	}

	if len(state.Board) != 5 || len(state.Board[0]) != 5 {
		t.Fatalf("board shape = %dx%d, want 5x5", len(state.Board), len(state.Board[0]))
	}
	top := state.Board[0]
	if top[0] != "k" || top[1] != "q" || top[2] != "b" || top[3] != "n" || top[4] != "" {
		t.Errorf("top rank = %q", top)
	}
	bottom := state.Board[4]
	if bottom[0] != "" || bottom[1] != "N" || bottom[2] != "B" || bottom[3] != "Q" || bottom[4] != "K" {
		t.Errorf("bottom rank = %q", bottom)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/games/"+created.ID, "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Player-ID"); got == "" {
		t.Error("no player ID minted for anonymous client")
	}

	var fetched GameState
	decodeJSON(t, body, &fetched)
	if fetched.ID != created.ID || fetched.FEN != state.FEN {
		t.Errorf("fetched game = %s %s, want %s %s", fetched.ID, fetched.FEN, created.ID, state.FEN)
	}

	resp, _ = doJSON(t, app, http.MethodGet, "/api/games/no-such-game", "alice", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", resp.StatusCode)
	}
}

func TestMoveWithEngineReply(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice",
		map[string]any{"moveTime": "50ms"})
	var created CreateGameResponse
	decodeJSON(t, body, &created)

	resp, body := doJSON(t, app, http.MethodPost, "/api/games/"+created.ID+"/moves", "alice",
		map[string]any{"move": "b2b3"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("move status = %d, body %s", resp.StatusCode, body)
	}

	var mr MoveResponse
	decodeJSON(t, body, &mr)

	if mr.Engine == nil {
		t.Fatal("no engine reply after handing the turn to the engine")
	}
	if mr.Engine.Move == "" || mr.Engine.Nodes == 0 || mr.Engine.Depth < 1 {
		t.Errorf("engine reply = %+v", mr.Engine)
	}

	state := mr.State
	if len(state.MoveHistory) != 2 {
		t.Fatalf("history = %v, want 2 plies", state.MoveHistory)
	}
	if state.MoveHistory[0] != "b2b3" {
		t.Errorf("first ply = %q, want b2b3", state.MoveHistory[0])
	}
	if state.MoveHistory[1] != mr.Engine.Move {
		t.Errorf("second ply = %q, engine played %q", state.MoveHistory[1], mr.Engine.Move)
	}
	if state.LastMove == nil || *state.LastMove != mr.Engine.Move {
		t.Errorf("lastMove = %v, want %q", state.LastMove, mr.Engine.Move)
	}
	if state.ToMove != "white" {
		t.Errorf("toMove = %q, want white after the engine reply", state.ToMove)
	}
}

func TestMoveRejections(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice",
		map[string]any{"moveTime": "50ms"})
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	moves := "/api/games/" + created.ID + "/moves"

	// Unparseable move.
	resp, _ := doJSON(t, app, http.MethodPost, moves, "alice", map[string]any{"move": "zz9x"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad move string status = %d, want 400", resp.StatusCode)
	}

	// The d-file is blocked by the pawn on d4.
	resp, _ = doJSON(t, app, http.MethodPost, moves, "alice", map[string]any{"move": "d1d5"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("illegal move status = %d, want 400", resp.StatusCode)
	}

	// Rejected moves must not claim the side for alice.
	resp, body = doJSON(t, app, http.MethodPost, moves, "bob", map[string]any{"move": "b2b3"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bob's move status = %d, body %s", resp.StatusCode, body)
	}

	// Now White belongs to bob.
	resp, _ = doJSON(t, app, http.MethodPost, moves, "alice", map[string]any{"move": "c2c3"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("alice moving bob's side status = %d, want 403", resp.StatusCode)
	}

	// An engine advance needs an engine side to move.
	var mr MoveResponse
	decodeJSON(t, body, &mr)
	if mr.State.ToMove != "white" {
		t.Fatalf("toMove = %q, want white", mr.State.ToMove)
	}
	resp, _ = doJSON(t, app, http.MethodPost, moves, "bob", map[string]any{"move": ""})
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("engine move for human side status = %d, want 409", resp.StatusCode)
	}
}

func TestResignEndpoint(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	resign := "/api/games/" + created.ID + "/resign"

	// Alice controls only White, so the color may be omitted.
	resp, body := doJSON(t, app, http.MethodPost, resign, "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("resign status = %d, body %s", resp.StatusCode, body)
	}

	var state GameState
	decodeJSON(t, body, &state)
	if state.Outcome != "0-1" || state.Method != "resignation" {
		t.Errorf("after resign: outcome %q method %q, want 0-1 resignation", state.Outcome, state.Method)
	}
	if len(state.LegalMoves) != 0 {
		t.Errorf("finished game still lists %d legal moves", len(state.LegalMoves))
	}

	resp, _ = doJSON(t, app, http.MethodPost, resign, "alice", nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("second resign status = %d, want 409", resp.StatusCode)
	}
}

func TestResignNeedsASide(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice",
		map[string]any{"white": map[string]any{"control": "human"}, "black": map[string]any{"control": "human"}})
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	resign := "/api/games/" + created.ID + "/resign"

	// Charlie controls nothing and names no color.
	resp, _ := doJSON(t, app, http.MethodPost, resign, "charlie", nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("resign without a side status = %d, want 403", resp.StatusCode)
	}

	// Naming an unclaimed color claims it.
	resp, body = doJSON(t, app, http.MethodPost, resign, "charlie", map[string]any{"color": "black"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("resign black status = %d, body %s", resp.StatusCode, body)
	}
	var state GameState
	decodeJSON(t, body, &state)
	if state.Outcome != "1-0" || state.Players.Black.ID != "charlie" {
		t.Errorf("outcome %q black %+v, want 1-0 charlie", state.Outcome, state.Players.Black)
	}
}

func TestEmptyMoveAdvancesEngine(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	resp, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", map[string]any{
		"white":    map[string]any{"control": "engine", "eval": "material"},
		"black":    map[string]any{"control": "engine", "eval": "threats"},
		"moveTime": "50ms",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status = %d, body %s", resp.StatusCode, body)
	}

	var created CreateGameResponse
	decodeJSON(t, body, &created)

	if created.Color != "" {
		t.Errorf("creator seat = %q, want none in an engine-only game", created.Color)
	}
	if created.Engine == nil {
		t.Fatal("no opening reply from the White engine")
	}
	if len(created.State.MoveHistory) != 1 {
		t.Fatalf("history after create = %v, want White's opening ply", created.State.MoveHistory)
	}
	if created.State.ToMove != "black" {
		t.Fatalf("toMove = %q, want black", created.State.ToMove)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/games/"+created.ID+"/moves", "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("empty move status = %d, body %s", resp.StatusCode, body)
	}

	var mr MoveResponse
	decodeJSON(t, body, &mr)
	if mr.Engine == nil {
		t.Fatal("no engine reply for the advanced ply")
	}
	if len(mr.State.MoveHistory) != 2 || mr.State.ToMove != "white" {
		t.Errorf("state after advance = %v to move %q", mr.State.MoveHistory, mr.State.ToMove)
	}

	// Engine sides accept no human moves.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/games/"+created.ID+"/moves", "alice",
		map[string]any{"move": "b2b3"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("human move for engine side status = %d, want 403", resp.StatusCode)
	}
}

func TestCreateGameValidation(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad move time", map[string]any{"moveTime": "fast"}},
		{"negative move time", map[string]any{"moveTime": "-1s"}},
		{"unknown control", map[string]any{"white": map[string]any{"control": "alien"}}},
		{"unknown eval", map[string]any{"black": map[string]any{"control": "engine", "eval": "psychic"}}},
	}
	for _, tc := range cases {
		resp, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", tc.body)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400 (body %s)", tc.name, resp.StatusCode, body)
		}
	}
}

func TestAnalysisEndpointCaches(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	analysis := "/api/games/" + created.ID + "/analysis?depth=3&eval=material&alphabeta=true"

	resp, body := doJSON(t, app, http.MethodGet, analysis, "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("analysis status = %d, body %s", resp.StatusCode, body)
	}

	var first AnalysisResponse
	decodeJSON(t, body, &first)
	if first.Cached {
		t.Error("first analysis reported as cached")
	}
	if first.Move == "" || first.Nodes == 0 || first.Depth != 3 {
		t.Errorf("analysis = %+v", first)
	}
	if first.Eval != "material" || !first.AlphaBeta {
		t.Errorf("analysis settings = %s alphaBeta %t", first.Eval, first.AlphaBeta)
	}

	resp, body = doJSON(t, app, http.MethodGet, analysis, "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("second analysis status = %d", resp.StatusCode)
	}

	var second AnalysisResponse
	decodeJSON(t, body, &second)
	if !second.Cached {
		t.Error("repeat analysis not served from the cache")
	}
	if second.Move != first.Move || second.Score != first.Score {
		t.Errorf("cached analysis %s %d, want %s %d", second.Move, second.Score, first.Move, first.Score)
	}

	resp, _ = doJSON(t, app, http.MethodGet,
		"/api/games/"+created.ID+"/analysis?depth=99", "alice", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("oversized depth status = %d, want 400", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	doJSON(t, app, http.MethodPost, "/api/games/"+created.ID+"/resign", "alice", nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/stats", "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}

	var stats storage.Stats
	decodeJSON(t, body, &stats)
	if stats.GamesPlayed != 1 || stats.BlackWins != 1 {
		t.Errorf("stats = %+v, want one black win", stats)
	}
	if stats.ByMethod["resignation"] != 1 {
		t.Errorf("byMethod = %v, want one resignation", stats.ByMethod)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	resp, body := doJSON(t, app, http.MethodGet, "/api/preferences", "alice", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("get preferences status = %d", resp.StatusCode)
	}

	var prefs PreferencesDTO
	decodeJSON(t, body, &prefs)
	if prefs.MoveTime != "5s" || prefs.Eval != "threats" || prefs.AlphaBeta == nil || !*prefs.AlphaBeta {
		t.Errorf("default preferences = %+v", prefs)
	}

	resp, body = doJSON(t, app, http.MethodPut, "/api/preferences", "alice",
		map[string]any{"moveTime": "250ms", "eval": "material", "alphaBeta": false})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("put preferences status = %d, body %s", resp.StatusCode, body)
	}
	decodeJSON(t, body, &prefs)
	if prefs.MoveTime != "250ms" || prefs.Eval != "material" || *prefs.AlphaBeta {
		t.Errorf("updated preferences = %+v", prefs)
	}

	// New games pick the stored settings up as defaults.
	_, body = doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	var created CreateGameResponse
	decodeJSON(t, body, &created)
	black := created.State.Players.Black
	if created.State.MoveTime != "250ms" || black.Eval != "material" {
		t.Errorf("game defaults = moveTime %q black %+v", created.State.MoveTime, black)
	}
	if black.AlphaBeta == nil || *black.AlphaBeta {
		t.Errorf("black alphaBeta = %v, want false", black.AlphaBeta)
	}

	for _, bad := range []map[string]any{
		{"eval": "psychic"},
		{"moveTime": "soon"},
		{"moveTime": "-2s"},
	} {
		resp, _ = doJSON(t, app, http.MethodPut, "/api/preferences", "alice", bad)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("put %v status = %d, want 400", bad, resp.StatusCode)
		}
	}
}

func TestReapFinishedGames(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	_, body := doJSON(t, app, http.MethodPost, "/api/games", "alice", nil)
	var finished CreateGameResponse
	decodeJSON(t, body, &finished)
	doJSON(t, app, http.MethodPost, "/api/games/"+finished.ID+"/resign", "alice", nil)

	_, body = doJSON(t, app, http.MethodPost, "/api/games", "bob", nil)
	var live CreateGameResponse
	decodeJSON(t, body, &live)

	if n := srv.manager.reapOnce(time.Now().Add(2 * time.Hour)); n != 1 {
		t.Fatalf("reaped %d games, want 1", n)
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/games/"+finished.ID, "alice", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("reaped game status = %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodGet, "/api/games/"+live.ID, "bob", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("live game status = %d, want 200", resp.StatusCode)
	}
}

func TestWebSocketUpgradeRequired(t *testing.T) {
	srv := newTestServer(t)
	app := srv.App()

	resp, _ := doJSON(t, app, http.MethodGet, "/ws/games/some-game", "alice", nil)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("plain GET on ws route status = %d, want 426", resp.StatusCode)
	}
}
