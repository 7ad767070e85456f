package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hailam/minichess/internal/engine"
	"github.com/hailam/minichess/internal/game"
	"github.com/hailam/minichess/internal/storage"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidMove),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrNeedColor),
		errors.Is(err, game.ErrIllegalMove):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrWrongPlayer),
		errors.Is(err, ErrEngineSide),
		errors.Is(err, ErrNoSide):
		return fiber.StatusForbidden
	case errors.Is(err, game.ErrGameOver),
		errors.Is(err, ErrHumanSide),
		errors.Is(err, engine.ErrNoMoves):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) jsonError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// handleCreateGame starts a new game. An empty body pairs a human White
// against the engine as Black with the stored preferences.
func (s *Server) handleCreateGame(c *fiber.Ctx) error {
	playerID, _ := c.Locals("playerID").(string)

	var req CreateGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		}
	}

	resp, err := s.manager.Create(playerID, req)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) handleGetGame(c *fiber.Ctx) error {
	state, err := s.manager.State(c.Params("gameId"))
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(state)
}

// handleMove applies a move for the calling player. An empty move asks
// the engine controlling the side to move to play one ply instead.
func (s *Server) handleMove(c *fiber.Ctx) error {
	playerID, _ := c.Locals("playerID").(string)

	var req MoveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidMove, err))
		}
	}

	state, reply, err := s.manager.Move(c.Params("gameId"), playerID, req.Move)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(MoveResponse{State: state, Engine: reply})
}

func (s *Server) handleResign(c *fiber.Ctx) error {
	playerID, _ := c.Locals("playerID").(string)

	var req ResignRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		}
	}

	state, err := s.manager.Resign(c.Params("gameId"), playerID, req.Color)
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(state)
}

// handleAnalysis searches the current position at a fixed depth. The
// depth, eval and alphabeta query parameters tune the search.
func (s *Server) handleAnalysis(c *fiber.Ctx) error {
	depth := analysisDefaultDepth
	if q := c.Query("depth"); q != "" {
		d, err := strconv.Atoi(q)
		if err != nil {
			return s.jsonError(c, fmt.Errorf("%w: depth: %v", ErrInvalidConfig, err))
		}
		depth = d
	}
	if depth < 1 || depth > analysisMaxDepth {
		return s.jsonError(c, fmt.Errorf("%w: depth must be between 1 and %d", ErrInvalidConfig, analysisMaxDepth))
	}

	mode, err := engine.ParseEvalMode(c.Query("eval", "threats"))
	if err != nil {
		return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	alphaBeta := true
	if q := c.Query("alphabeta"); q != "" {
		alphaBeta, err = strconv.ParseBool(q)
		if err != nil {
			return s.jsonError(c, fmt.Errorf("%w: alphabeta: %v", ErrInvalidConfig, err))
		}
	}

	a, cached, err := s.manager.Analyze(c.Params("gameId"), depth, mode, alphaBeta)
	if err != nil {
		return s.jsonError(c, err)
	}

	return c.JSON(AnalysisResponse{
		Move:      a.Move,
		Score:     a.Score,
		ScoreText: engine.ScoreToString(a.Score),
		Nodes:     a.Nodes,
		Depth:     a.Depth,
		ElapsedMs: a.Elapsed.Milliseconds(),
		Eval:      mode.String(),
		AlphaBeta: alphaBeta,
		Cached:    cached,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.store.LoadStats()
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(stats)
}

func preferencesDTO(p *storage.Preferences) PreferencesDTO {
	alphaBeta := p.AlphaBeta
	return PreferencesDTO{
		MoveTime:  p.MoveTime.String(),
		AlphaBeta: &alphaBeta,
		Eval:      p.Eval,
	}
}

func (s *Server) handleGetPreferences(c *fiber.Ctx) error {
	prefs, err := s.store.LoadPreferences()
	if err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(preferencesDTO(prefs))
}

// handlePutPreferences updates the stored engine defaults. Absent
// fields keep their current values.
func (s *Server) handlePutPreferences(c *fiber.Ctx) error {
	var req PreferencesDTO
	if err := c.BodyParser(&req); err != nil {
		return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	prefs, err := s.store.LoadPreferences()
	if err != nil {
		return s.jsonError(c, err)
	}

	if req.MoveTime != "" {
		mt, err := time.ParseDuration(req.MoveTime)
		if err != nil {
			return s.jsonError(c, fmt.Errorf("%w: moveTime: %v", ErrInvalidConfig, err))
		}
		if mt <= 0 {
			return s.jsonError(c, fmt.Errorf("%w: moveTime must be positive, got %s", ErrInvalidConfig, mt))
		}
		prefs.MoveTime = mt
	}
	if req.AlphaBeta != nil {
		prefs.AlphaBeta = *req.AlphaBeta
	}
	if req.Eval != "" {
		if _, err := engine.ParseEvalMode(req.Eval); err != nil {
			return s.jsonError(c, fmt.Errorf("%w: %v", ErrInvalidConfig, err))
		}
		prefs.Eval = req.Eval
	}

	if err := s.store.SavePreferences(prefs); err != nil {
		return s.jsonError(c, err)
	}
	return c.JSON(preferencesDTO(prefs))
}
