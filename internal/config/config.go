// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"

	"github.com/hailam/minichess/internal/engine"
)

// Config holds everything the server needs to start.
type Config struct {
	Logs   LogConfig
	Server ServerConfig
	Engine EngineConfig
	Data   DataConfig
}

type LogConfig struct {
	Style string // "console" or "json"
	Level string
}

type ServerConfig struct {
	Addr string
}

type EngineConfig struct {
	MoveTime  time.Duration
	AlphaBeta bool
	Eval      engine.EvalMode
}

type DataConfig struct {
	Dir   string // empty means the platform default
	Cache bool
}

// Load reads the MINICHESS_* environment variables, applying defaults for
// anything unset.
func Load() (*Config, error) {
	moveTime, err := time.ParseDuration(getenv("MINICHESS_MOVE_TIME", "5s"))
	if err != nil {
		return nil, fmt.Errorf("config: parse MINICHESS_MOVE_TIME: %w", err)
	}
	if moveTime <= 0 {
		return nil, fmt.Errorf("config: MINICHESS_MOVE_TIME must be positive, got %s", moveTime)
	}

	alphaBeta, err := strconv.ParseBool(getenv("MINICHESS_ALPHA_BETA", "true"))
	if err != nil {
		return nil, fmt.Errorf("config: parse MINICHESS_ALPHA_BETA: %w", err)
	}

	eval, err := engine.ParseEvalMode(getenv("MINICHESS_EVAL", "threats"))
	if err != nil {
		return nil, fmt.Errorf("config: parse MINICHESS_EVAL: %w", err)
	}

	cache, err := strconv.ParseBool(getenv("MINICHESS_CACHE", "true"))
	if err != nil {
		return nil, fmt.Errorf("config: parse MINICHESS_CACHE: %w", err)
	}

	cfg := &Config{
		Logs: LogConfig{
			Style: getenv("MINICHESS_LOG_STYLE", "console"),
			Level: getenv("MINICHESS_LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Addr: getenv("MINICHESS_ADDR", ":3000"),
		},
		Engine: EngineConfig{
			MoveTime:  moveTime,
			AlphaBeta: alphaBeta,
			Eval:      eval,
		},
		Data: DataConfig{
			Dir:   os.Getenv("MINICHESS_DATA_DIR"),
			Cache: cache,
		},
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
