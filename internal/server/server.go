// Package server exposes minichess games, engine analysis and stored
// preferences over an HTTP and WebSocket API.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/storage"
)

// Server ties the HTTP API, the WebSocket subscribers and the game
// manager together.
type Server struct {
	app     *fiber.App
	log     zerolog.Logger
	store   *storage.Storage
	manager *GameManager
}

// New assembles the server with its middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, store *storage.Storage) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "minichess",
		DisableStartupMessage: true,
	})

	s := &Server{
		app:     app,
		log:     log,
		store:   store,
		manager: NewGameManager(log, store, cfg.Data.Cache),
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods: "GET, POST, PUT, OPTIONS",
	}))
	app.Use(RequestLogger(log))

	app.Use("/ws", EnsurePlayerID(), WebSocketUpgrade())
	app.Get("/ws/games/:gameId", websocket.New(s.handleWS, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}))

	api := app.Group("/api", EnsurePlayerID())
	api.Post("/games", s.handleCreateGame)
	api.Get("/games/:gameId", s.handleGetGame)
	api.Post("/games/:gameId/moves", s.handleMove)
	api.Post("/games/:gameId/resign", s.handleResign)
	api.Get("/games/:gameId/analysis", s.handleAnalysis)
	api.Get("/stats", s.handleStats)
	api.Get("/preferences", s.handleGetPreferences)
	api.Put("/preferences", s.handlePutPreferences)

	return s
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("server listening")
	return s.app.Listen(addr)
}

// Shutdown stops the game manager and drains the HTTP server.
func (s *Server) Shutdown() error {
	s.manager.Close()
	return s.app.Shutdown()
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
