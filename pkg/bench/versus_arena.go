package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

/*
Arena benchmark subpackage, plays a series of games between two players
(engines with different budgets, strategies or a random baseline) starting
from the same position. Who moves first is drawn at random for every game.
*/

var ErrFinishedPosition = errors.New("bench: starting position is already finished")

type VersusArena struct {
	VersusArenaStats
	Player1  Player
	Player2  Player
	NGames   int
	NWorkers int
	Position gomoku.Board
	ctx      context.Context
}

func NewVersusArena(position gomoku.Board, p1, p2 Player) *VersusArena {
	return &VersusArena{
		Player1:  p1,
		Player2:  p2,
		NGames:   100,
		NWorkers: 2,
		Position: position,
		ctx:      context.Background(),
	}
}

func (va *VersusArena) WithContext(ctx context.Context) *VersusArena {
	va.ctx = ctx
	return va
}

func (va *VersusArena) Setup(nGames, nWorkers int) *VersusArena {
	va.NGames = nGames
	va.NWorkers = max(nWorkers, 1)
	return va
}

// Play all of the games, distributed equally between the workers. Blocks
// until every game is done or the context is cancelled, the summary always
// reflects the finished games.
func (va *VersusArena) Run(listener ListenerLike) (VersusSummaryInfo, error) {
	if listener == nil {
		listener = DefaultListener{}
	}
	if gomoku.Winner(&va.Position) != gomoku.Empty || va.Position.IsFull() {
		return VersusSummaryInfo{}, ErrFinishedPosition
	}

	start := time.Now()
	nWorkers := max(min(va.NWorkers, va.NGames), 1)
	nGames := va.NGames / nWorkers
	rest := va.NGames % nWorkers

	g, ctx := errgroup.WithContext(va.ctx)
	for i := range nWorkers {
		delta := 0
		if rest > 0 {
			delta = 1
			rest--
		}
		id := i
		games := nGames + delta
		g.Go(func() error {
			return va.worker(ctx, id, games, listener)
		})
	}
	err := g.Wait()

	summary := VersusSummaryInfo{
		TotalGames:       va.Total(),
		P1Wins:           va.P1Wins(),
		P2Wins:           va.P2Wins(),
		FirstToMoveWins:  va.FirstToMoveWins(),
		SecondToMoveWins: va.SecondToMoveWins(),
		Draws:            va.Draws(),
		Workers:          nWorkers,
		P1Name:           va.Player1.Name(),
		P2Name:           va.Player2.Name(),
		ElapsedMs:        time.Since(start).Milliseconds(),
	}
	listener.Summary(summary)

	log.Debug().
		Int("games", summary.TotalGames).
		Int("p1-wins", summary.P1Wins).
		Int("p2-wins", summary.P2Wins).
		Int("draws", summary.Draws).
		Err(err).
		Msg("arena-done")
	return summary, err
}

func (va *VersusArena) worker(ctx context.Context, id, nGames int, listener ListenerLike) error {
	r := rand.New(rand.NewSource(mcts.SeedGeneratorFn() + int64(id)))
	local := VersusWorkerInfo{
		WorkerID: id,
		NGames:   nGames,
		P1Name:   va.Player1.Name(),
		P2Name:   va.Player2.Name(),
	}

	for range nGames {
		p1WentFirst := r.Intn(2) == 0
		first, second := va.Player1, va.Player2
		if !p1WentFirst {
			first, second = second, first
		}

		outcome, err := va.playGame(ctx, first, second, &local, listener)
		if err != nil {
			return err
		}

		result := toAgentResult(outcome, p1WentFirst)
		va.record(result, outcome)
		switch result {
		case VersusPl1Win:
			local.P1Wins++
		case VersusPl2Win:
			local.P2Wins++
		default:
			local.Draws++
		}
		local.FinishedGames++
		local.Result = result
		local.WinningLine = outcome.WinningLine
		listener.OnFinishedGame(local)
	}

	listener.OnFinishedWork(local)
	return nil
}

// Alternate 'first' and 'second' from the arena's position until the game
// ends. 'info' is updated after every move.
func (va *VersusArena) playGame(ctx context.Context, first, second Player, info *VersusWorkerInfo, listener ListenerLike) (GameOutcome, error) {
	board := va.Position
	startSide := board.SideToMove()
	side := startSide
	players := [2]Player{first, second}

	info.Moves = make([]gomoku.Move, 0, 64)
	info.Result = VersusDraw
	info.WinningLine = nil

	for ply := 0; ; ply++ {
		player := players[ply%2]
		m, err := player.Move(ctx, board)
		if err != nil {
			return GameOutcome{}, fmt.Errorf("%s: %w", player.Name(), err)
		}
		if !board.IsLegal(m) && !(board.IsEmpty() && m.Valid()) {
			return GameOutcome{}, fmt.Errorf("%s: illegal move %v", player.Name(), m)
		}

		board.Set(m, side)
		info.Moves = append(info.Moves, m)
		info.GameMoveNum = len(info.Moves)
		info.Board = board
		listener.OnMoveMade(*info)

		if outcome, over := computeOutcome(&board, m, startSide); over {
			return outcome, nil
		}
		side = side.Opponent()
	}
}
