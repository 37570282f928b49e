package main

/*
Plays a series of games between two players and prints the score.

	gomoku-bench -games 20 -workers 4 -p1 mcts:500 -p2 mcts:100
	gomoku-bench -p1 mcts:200 -p2 random -json

A player is either 'random' or 'mcts:<budget ms>', optionally followed by
':alt' to use the alternating reward strategy.
*/

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/internal/logging"
	"github.com/IlikeChooros/gomoku-mcts/pkg/bench"
	"github.com/IlikeChooros/gomoku-mcts/pkg/config"
	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

var (
	flagGames    = flag.Int("games", 20, "Total number of games")
	flagWorkers  = flag.Int("workers", max(runtime.NumCPU()/2, 1), "Games played at the same time")
	flagP1       = flag.String("p1", "mcts:500", "First player")
	flagP2       = flag.String("p2", "random", "Second player")
	flagNotation = flag.String("notation", "", "Starting position of every game (default: empty board)")
	flagBoards   = flag.Bool("boards", false, "Print the final board of every game")
	flagJSON     = flag.Bool("json", false, "Print the summary as JSON")
	flagLogLevel = flag.String("log-level", "", "Log level (default: log_level from the config)")
)

func main() {
	flag.Parse()

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if *flagLogLevel != "" {
		level = *flagLogLevel
	}
	if err := logging.Setup(level, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p1, err := parsePlayer(*flagP1, "p1", cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid-player")
	}
	p2, err := parsePlayer(*flagP2, "p2", cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid-player")
	}

	position := gomoku.Board{}
	if *flagNotation != "" {
		if position, err = gomoku.FromNotation(*flagNotation); err != nil {
			log.Fatal().Err(err).Msg("invalid-notation")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	arena := bench.NewVersusArena(position, p1, p2).
		WithContext(ctx).
		Setup(*flagGames, *flagWorkers)

	var listener bench.ListenerLike = bench.LogListener{}
	if !*flagJSON && isatty.IsTerminal(os.Stdout.Fd()) {
		listener = bench.NewTerminalListener(os.Stdout, arena.NWorkers, termenv.EnvColorProfile()).
			ShowBoards(*flagBoards)
	}

	summary, err := arena.Run(listener)
	if err != nil {
		log.Error().Err(err).Msg("arena-interrupted")
	}

	if *flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			log.Fatal().Err(err).Msg("encode-summary-failed")
		}
	}
}

// 'random' or 'mcts:<budget ms>[:alt]'
func parsePlayer(s, name string, cfg *config.Config) (bench.Player, error) {
	parts := strings.Split(s, ":")
	switch parts[0] {
	case "random":
		return bench.NewRandomPlayer(name + "-random"), nil
	case "mcts":
		budget := cfg.SearchBudgetMs
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid budget in %q", s)
			}
			budget = n
		}

		opts := []engine.Option{engine.WithMaxTreeMb(cfg.MaxTreeMb)}
		if len(parts) > 2 && parts[2] == "alt" {
			opts = append(opts, engine.WithStrategy(mcts.AlternatingReward{}))
		}
		return bench.NewEnginePlayer(fmt.Sprintf("%s-%s", name, strings.Join(parts, "-")), budget, opts...), nil
	}
	return nil, fmt.Errorf("unknown player %q", s)
}
