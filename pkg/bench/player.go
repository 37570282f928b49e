package bench

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

// Anything that can pick a move for the side to move on 'board'. Players are
// shared between arena workers, so Move must be safe for concurrent use.
type Player interface {
	Name() string
	Move(ctx context.Context, board gomoku.Board) (gomoku.Move, error)
}

// Plays through a supervised engine with a fixed search budget, the same way
// moves are served over HTTP
type EnginePlayer struct {
	name       string
	budgetMs   int
	supervisor *engine.Supervisor
}

func NewEnginePlayer(name string, budgetMs int, opts ...engine.Option) *EnginePlayer {
	if name == "" {
		name = fmt.Sprintf("mcts-%dms", budgetMs)
	}
	return &EnginePlayer{
		name:     name,
		budgetMs: budgetMs,
		supervisor: engine.NewSupervisor(func() engine.Thinker {
			return engine.New(opts...)
		}, engine.DefaultGrace),
	}
}

func (p *EnginePlayer) Name() string {
	return p.name
}

func (p *EnginePlayer) Supervisor() *engine.Supervisor {
	return p.supervisor
}

func (p *EnginePlayer) Move(ctx context.Context, board gomoku.Board) (gomoku.Move, error) {
	resp, err := p.supervisor.Move(ctx, engine.Request{
		Board:          board,
		SearchBudgetMs: p.budgetMs,
	})
	return resp.Move, err
}

// Uniformly random legal move, a baseline for the engine players
type RandomPlayer struct {
	name string
	mu   sync.Mutex
	rand *rand.Rand
}

func NewRandomPlayer(name string) *RandomPlayer {
	if name == "" {
		name = "random"
	}
	return &RandomPlayer{
		name: name,
		rand: rand.New(rand.NewSource(mcts.SeedGeneratorFn())),
	}
}

func (p *RandomPlayer) Name() string {
	return p.name
}

func (p *RandomPlayer) Move(ctx context.Context, board gomoku.Board) (gomoku.Move, error) {
	if err := ctx.Err(); err != nil {
		return gomoku.Move{}, err
	}
	if board.IsEmpty() {
		return gomoku.Center, nil
	}

	legal := board.LegalMoves()
	if len(legal) == 0 {
		return gomoku.Move{}, engine.ErrBoardFull
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return legal[p.rand.Intn(len(legal))], nil
}
