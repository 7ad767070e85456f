// minichess-server serves minichess games over HTTP and WebSocket.
package main

import (
	"log"
	"os"

	"github.com/hailam/minichess/internal/config"
	"github.com/hailam/minichess/internal/logging"
	"github.com/hailam/minichess/internal/server"
	"github.com/hailam/minichess/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Logs, os.Stderr)
	if err != nil {
		log.Fatalf("set up logging: %v", err)
	}

	store, err := storage.Open(cfg.Data.Dir)
	if err != nil {
		logger.Fatal().Err(err).Msg("open storage")
	}
	defer store.Close()

	if err := seedPreferences(cfg, store); err != nil {
		logger.Warn().Err(err).Msg("seed preferences")
	}

	srv := server.New(cfg, logger, store)
	if err := srv.Listen(cfg.Server.Addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// seedPreferences copies the environment defaults into storage on the
// first run. Changes made through the API afterwards take precedence,
// so this runs only when nothing was saved yet.
func seedPreferences(cfg *config.Config, store *storage.Storage) error {
	saved, err := store.HasPreferences()
	if err != nil || saved {
		return err
	}

	prefs := storage.DefaultPreferences()
	prefs.MoveTime = cfg.Engine.MoveTime
	prefs.AlphaBeta = cfg.Engine.AlphaBeta
	prefs.Eval = cfg.Engine.Eval.String()
	return store.SavePreferences(prefs)
}
