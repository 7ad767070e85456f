package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	prefixAnalysis = "analysis:"
)

// Preferences stores the default engine settings for new games.
type Preferences struct {
	MoveTime    time.Duration `json:"move_time"`
	AlphaBeta   bool          `json:"alpha_beta"`
	Eval        string        `json:"eval"`
	LastUpdated time.Time     `json:"last_updated"`
}

// DefaultPreferences returns the preferences used until a client saves its own.
func DefaultPreferences() *Preferences {
	return &Preferences{
		MoveTime:  5 * time.Second,
		AlphaBeta: true,
		Eval:      "threats",
	}
}

// Stats stores aggregate statistics over finished games.
type Stats struct {
	GamesPlayed   int            `json:"games_played"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	ByMethod      map[string]int `json:"by_method"`
	TotalPlies    int            `json:"total_plies"`
	TotalDuration time.Duration  `json:"total_duration"`
}

// NewStats returns empty statistics.
func NewStats() *Stats {
	return &Stats{
		ByMethod: make(map[string]int),
	}
}

// DecisiveRate returns the percentage of games that did not end in a draw.
func (s *Stats) DecisiveRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WhiteWins+s.BlackWins) / float64(s.GamesPlayed) * 100
}

// GameRecord describes one finished game for the statistics.
type GameRecord struct {
	Outcome  string // "1-0", "0-1" or "1/2-1/2"
	Method   string
	Plies    int
	Duration time.Duration
}

// Analysis is a cached engine search result for one position.
type Analysis struct {
	Move    string        `json:"move"`
	Score   int           `json:"score"`
	Nodes   uint64        `json:"nodes"`
	Depth   int           `json:"depth"`
	Elapsed time.Duration `json:"elapsed"`
}

// AnalysisKey builds the cache key for a position analyzed with the given
// settings. Fixed-depth searches are deterministic, so the key pins down
// the result exactly.
func AnalysisKey(hash uint64, eval string, alphaBeta bool, depth int) string {
	return fmt.Sprintf("%s%016x:%s:%t:%d", prefixAnalysis, hash, eval, alphaBeta, depth)
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// Open opens the database under dir, falling back to the platform data
// directory when dir is empty.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		dir, err = GetDatabaseDir()
		if err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves the engine preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastUpdated = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the engine preferences, returning defaults if none
// were saved yet.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// HasPreferences returns true if preferences were saved before.
func (s *Storage) HasPreferences() (bool, error) {
	var saved bool

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			saved = false
			return nil
		}
		if err != nil {
			return err
		}
		saved = true
		return nil
	})

	return saved, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*Stats, error) {
	stats := NewStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if err == badger.ErrKeyNotFound {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			err := json.Unmarshal(val, stats)
			if stats.ByMethod == nil {
				stats.ByMethod = make(map[string]int)
			}
			return err
		})
	})

	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(rec GameRecord) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += rec.Plies
	stats.TotalDuration += rec.Duration

	switch rec.Outcome {
	case "1-0":
		stats.WhiteWins++
	case "0-1":
		stats.BlackWins++
	default:
		stats.Draws++
	}
	if rec.Method != "" {
		stats.ByMethod[rec.Method]++
	}

	return s.SaveStats(stats)
}

// LoadAnalysis looks up a cached analysis. ok is false on a cache miss.
func (s *Storage) LoadAnalysis(key string) (a *Analysis, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			a = new(Analysis)
			if err := json.Unmarshal(val, a); err != nil {
				a = nil
				return err
			}
			ok = true
			return nil
		})
	})

	return a, ok, err
}

// SaveAnalysis caches an analysis result under the given key.
func (s *Storage) SaveAnalysis(key string, a *Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
