// minichess-bench measures move generation and search speed over a
// fixed set of positions.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/hailam/minichess/internal/board"
	"github.com/hailam/minichess/internal/engine"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depth      = flag.Int("depth", 5, "search depth per position")
	perftDepth = flag.Int("perft", 4, "perft depth per position")
	evalFlag   = flag.String("eval", "threats", "evaluation: material, positional or threats")
	alphaBeta  = flag.Bool("alphabeta", true, "prune with alpha-beta")
)

// The start position plus a few middlegame and endgame layouts.
var fens = []string{
	board.StartFEN,
	"kqbn1/2pp1/1P3/2P2/1NBQK b 1 1",
	"kqbn1/3p1/1Pp2/2P2/1NBQK w 2 2",
	"k3q/5/2K2/5/Q4 w 10 30",
	"k4/p4/5/P4/K4 w 0 1",
}

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	mode, err := engine.ParseEvalMode(*evalFlag)
	if err != nil {
		log.Fatal(err)
	}
	eng, err := engine.NewEngine(engine.Config{AlphaBeta: *alphaBeta, Eval: mode})
	if err != nil {
		log.Fatal(err)
	}

	var totalPerft, totalNodes uint64
	var perftTime, searchTime time.Duration

	for _, fen := range fens {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			log.Fatalf("parse %q: %v", fen, err)
		}

		start := time.Now()
		count := eng.Perft(pos, *perftDepth)
		elapsed := time.Since(start)
		totalPerft += count
		perftTime += elapsed
		fmt.Printf("perft  %-34s depth %d %12d moves %10s\n",
			fen, *perftDepth, count, elapsed.Round(time.Microsecond))

		res, err := eng.Search(pos, engine.Limits{Depth: *depth})
		if err != nil {
			log.Fatalf("search %q: %v", fen, err)
		}
		totalNodes += res.Nodes
		searchTime += res.Elapsed
		fmt.Printf("search %-34s depth %d %12d nodes %10s  %s %s\n",
			fen, res.Depth, res.Nodes, res.Elapsed.Round(time.Microsecond),
			res.Move, engine.ScoreToString(res.Score))
	}

	fmt.Printf("\nperft:  %d moves in %s (%.0f moves/s)\n",
		totalPerft, perftTime.Round(time.Millisecond), float64(totalPerft)/perftTime.Seconds())
	fmt.Printf("search: %d nodes in %s (%.0f nodes/s)\n",
		totalNodes, searchTime.Round(time.Millisecond), float64(totalNodes)/searchTime.Seconds())
}
