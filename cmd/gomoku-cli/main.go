package main

/*
Command line front end of the engine.

	gomoku-cli analyze -notation 15/15/15/15/15/15/15/7x7/15/15/15/15/15/15/15 -budget 3000
	gomoku-cli selfplay -budget 500

'analyze' searches a single position and prints the search progress,
'selfplay' lets the engine play against itself until the game ends.
*/

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/internal/logging"
	"github.com/IlikeChooros/gomoku-mcts/pkg/config"
	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

var (
	flagNotation  = flag.String("notation", "", "Starting position in board notation (default: empty board)")
	flagBudget    = flag.Int("budget", -1, "Search budget per move in ms (default: search_budget_ms from the config)")
	flagMultiPv   = flag.Int("multipv", 3, "Number of lines printed by 'analyze'")
	flagInterval  = flag.Int("interval", 20000, "Cycles between two progress lines of 'analyze'")
	flagMaxMoves  = flag.Int("max-moves", gomoku.NumCells, "Maximum number of moves played by 'selfplay'")
	flagAlternate = flag.Bool("alternating", false, "Use the alternating reward strategy")
	flagNoColor   = flag.Bool("no-color", false, "Disable colored output")
	flagLogLevel  = flag.String("log-level", "", "Log level (default: log_level from the config)")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] analyze|selfplay\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

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

	budget := cfg.SearchBudgetMs
	if *flagBudget >= 0 {
		budget = *flagBudget
	}

	board := gomoku.Board{}
	if *flagNotation != "" {
		board, err = gomoku.FromNotation(*flagNotation)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid-notation")
		}
	}

	opts := []engine.Option{
		engine.WithMaxTreeMb(cfg.MaxTreeMb),
		engine.WithMultiPv(*flagMultiPv),
		engine.WithSeed(cfg.Seed),
	}
	if *flagAlternate {
		opts = append(opts, engine.WithStrategy(mcts.AlternatingReward{}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		w:       os.Stdout,
		profile: colorProfile(),
		engine:  engine.New(opts...),
		budget:  budget,
	}

	switch cmd := flag.Arg(0); cmd {
	case "analyze":
		err = c.analyze(ctx, board)
	case "selfplay":
		err = c.selfplay(ctx, board, *flagMaxMoves)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("command-failed")
	}
}

func colorProfile() termenv.Profile {
	if *flagNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

type cli struct {
	w       io.Writer
	profile termenv.Profile
	engine  *engine.Engine
	budget  int
}

func (c *cli) analyze(ctx context.Context, board gomoku.Board) error {
	req := engine.Request{Board: board, SearchBudgetMs: c.budget}

	listener := mcts.NewStatsListener()
	listener.
		SetCycleInterval(*flagInterval).
		OnCycle(func(stats mcts.ListenerTreeStats) {
			c.printStats(stats)
		}).
		OnStop(func(stats mcts.ListenerTreeStats) {
			c.printStats(stats)
			fmt.Fprintf(c.w, "search stopped: %s\n", stats.StopReason)
		})

	resp, err := c.engine.Analyze(ctx, req, listener)
	if err != nil {
		return err
	}

	after := board.Apply(resp.Move, req.SideToMove())
	fmt.Fprintf(c.w, "bestmove %s (%s), win rate %.3f, simulations %d, %dms\n",
		resp.Move, resp.Status, resp.WinRate, resp.SimulationsRun, resp.ElapsedMs)
	return c.render(&after, resp.Move)
}

func (c *cli) printStats(stats mcts.ListenerTreeStats) {
	fmt.Fprintf(c.w, "depth %d cycles %d cps %d time %dms nodes %d\n",
		stats.Maxdepth, stats.Cycles, stats.Cps, stats.TimeMs, stats.Size)
	for i, line := range stats.Lines {
		pv := make([]string, len(line.Moves))
		for j, m := range line.Moves {
			pv[j] = m.String()
		}
		mark := ""
		if line.Terminal {
			mark = " #"
		}
		fmt.Fprintf(c.w, "  %d. %-4s eval %.3f visits %-8d pv %s%s\n",
			i+1, line.BestMove, line.Eval, line.Visits, strings.Join(pv, " "), mark)
	}
}

func (c *cli) selfplay(ctx context.Context, board gomoku.Board, maxMoves int) error {
	for ply := 0; ply < maxMoves; ply++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		side := board.SideToMove()
		resp, err := c.engine.Think(engine.Request{Board: board, SearchBudgetMs: c.budget})
		if err != nil {
			return err
		}
		board.Set(resp.Move, side)

		fmt.Fprintf(c.w, "%d. %s plays %s (win rate %.3f, %d simulations)\n",
			ply+1, side, resp.Move, resp.WinRate, resp.SimulationsRun)
		if line := gomoku.WinningLine(&board, resp.Move); line != nil {
			fmt.Fprintf(c.w, "%s wins\n", side)
			return gomoku.Render(c.w, &board, gomoku.RenderOptions{Profile: c.profile, Last: &resp.Move, Highlight: line})
		}
		if board.IsFull() {
			fmt.Fprintln(c.w, "draw, the board is full")
			break
		}
		if err := c.render(&board, resp.Move); err != nil {
			return err
		}
	}

	fmt.Fprintln(c.w, board.Notation())
	return nil
}

func (c *cli) render(board *gomoku.Board, last gomoku.Move) error {
	return gomoku.Render(c.w, board, gomoku.RenderOptions{Profile: c.profile, Last: &last})
}
