package bench

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

// ANSI codes
const (
	ansiClearLine  = "\033[2K"
	ansiCursorHide = "\033[?25l"
	ansiCursorShow = "\033[?25h"
	ansiCursorUp   = "\033[%dA"
	ansiCursorDown = "\033[%dB"
)

// Arena callbacks, called concurrently from every worker
type ListenerLike interface {
	OnMoveMade(info VersusWorkerInfo)
	OnFinishedGame(info VersusWorkerInfo)
	OnFinishedWork(info VersusWorkerInfo)
	Summary(info VersusSummaryInfo)
}

// Ignores everything
type DefaultListener struct{}

func (DefaultListener) OnMoveMade(VersusWorkerInfo)     {}
func (DefaultListener) OnFinishedGame(VersusWorkerInfo) {}
func (DefaultListener) OnFinishedWork(VersusWorkerInfo) {}
func (DefaultListener) Summary(VersusSummaryInfo)       {}

// Live view for a terminal: one line per worker, redrawn in place, and the
// board of every finished game with its winning line highlighted
type TerminalListener struct {
	mu         sync.Mutex
	w          io.Writer
	out        *termenv.Output
	profile    termenv.Profile
	rows       int
	showBoards bool
	started    bool
}

func NewTerminalListener(w io.Writer, nWorkers int, profile termenv.Profile) *TerminalListener {
	return &TerminalListener{
		w:       w,
		out:     termenv.NewOutput(w, termenv.WithProfile(profile)),
		profile: profile,
		rows:    max(nWorkers, 1),
	}
}

// Print the final board of every game above the worker lines
func (tl *TerminalListener) ShowBoards(show bool) *TerminalListener {
	tl.showBoards = show
	return tl
}

func (tl *TerminalListener) OnMoveMade(info VersusWorkerInfo) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.printRow(info.WorkerID, fmt.Sprintf("worker %d: game %d/%d, move %d, %s %d - %d %s, draws %d",
		info.WorkerID, info.FinishedGames+1, info.NGames, info.GameMoveNum,
		info.P1Name, info.P1Wins, info.P2Wins, info.P2Name, info.Draws))
}

func (tl *TerminalListener) OnFinishedGame(info VersusWorkerInfo) {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.showBoards && tl.started {
		// Push the worker lines down, the board goes in their place
		fmt.Fprintf(tl.w, ansiCursorUp, tl.rows)
		for range tl.rows {
			fmt.Fprint(tl.w, ansiClearLine+"\n")
		}
		fmt.Fprintf(tl.w, ansiCursorUp, tl.rows)
		tl.started = false

		fmt.Fprintf(tl.w, "worker %d, game %d: %s\n", info.WorkerID, info.FinishedGames, info.Result)
		var last *gomoku.Move
		if n := len(info.Moves); n > 0 {
			last = &info.Moves[n-1]
		}
		_ = gomoku.Render(tl.w, &info.Board, gomoku.RenderOptions{
			Profile:   tl.profile,
			Last:      last,
			Highlight: info.WinningLine,
		})
	}

	tl.printRow(info.WorkerID, fmt.Sprintf("worker %d: game %d/%d finished (%s), %s %d - %d %s, draws %d",
		info.WorkerID, info.FinishedGames, info.NGames, info.Result,
		info.P1Name, info.P1Wins, info.P2Wins, info.P2Name, info.Draws))
}

func (tl *TerminalListener) OnFinishedWork(info VersusWorkerInfo) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.printRow(info.WorkerID, fmt.Sprintf("worker %d: done, %d games, %s %d - %d %s, draws %d",
		info.WorkerID, info.FinishedGames, info.P1Name, info.P1Wins, info.P2Wins, info.P2Name, info.Draws))
}

func (tl *TerminalListener) Summary(info VersusSummaryInfo) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.started {
		fmt.Fprint(tl.w, ansiCursorShow)
	}

	title := tl.out.String("Summary").Bold()
	fmt.Fprintf(tl.w, "%s (%d games, %d workers, %.1fs)\n", title, info.TotalGames, info.Workers, float64(info.ElapsedMs)/1000)
	fmt.Fprintf(tl.w, "  %-16s %d wins\n", info.P1Name, info.P1Wins)
	fmt.Fprintf(tl.w, "  %-16s %d wins\n", info.P2Name, info.P2Wins)
	fmt.Fprintf(tl.w, "  %-16s %d\n", "draws", info.Draws)
	fmt.Fprintf(tl.w, "  first to move won %d, second to move won %d\n", info.FirstToMoveWins, info.SecondToMoveWins)
}

// Redraws a single worker line, the cursor always rests below the last line
func (tl *TerminalListener) printRow(row int, text string) {
	if !tl.started {
		fmt.Fprint(tl.w, ansiCursorHide)
		for range tl.rows {
			fmt.Fprintln(tl.w)
		}
		tl.started = true
	}

	row = min(max(row, 0), tl.rows-1)
	up := tl.rows - row
	fmt.Fprintf(tl.w, ansiCursorUp, up)
	fmt.Fprint(tl.w, ansiClearLine+"\r"+text)
	fmt.Fprintf(tl.w, ansiCursorDown, up)
	fmt.Fprint(tl.w, "\r")
}

// Structured log lines instead of a live view, for non-terminal output
type LogListener struct{}

func (LogListener) OnMoveMade(VersusWorkerInfo) {}

func (LogListener) OnFinishedGame(info VersusWorkerInfo) {
	log.Info().
		Int("worker", info.WorkerID).
		Int("game", info.FinishedGames).
		Int("moves", info.GameMoveNum).
		Stringer("result", info.Result).
		Msg("game-finished")
}

func (LogListener) OnFinishedWork(info VersusWorkerInfo) {
	log.Debug().
		Int("worker", info.WorkerID).
		Int("p1-wins", info.P1Wins).
		Int("p2-wins", info.P2Wins).
		Int("draws", info.Draws).
		Msg("worker-done")
}

func (LogListener) Summary(info VersusSummaryInfo) {
	log.Info().
		Int("games", info.TotalGames).
		Str("p1", info.P1Name).
		Int("p1-wins", info.P1Wins).
		Str("p2", info.P2Name).
		Int("p2-wins", info.P2Wins).
		Int("draws", info.Draws).
		Int("first-to-move-wins", info.FirstToMoveWins).
		Int("second-to-move-wins", info.SecondToMoveWins).
		Int64("elapsed-ms", info.ElapsedMs).
		Msg("arena-summary")
}
