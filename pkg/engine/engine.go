package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

// Anything that answers engine requests, the supervisor only needs this
type Thinker interface {
	ID() string
	Think(req Request) (Response, error)
}

type Option func(*Engine)

// Cap the tree's memory, once reached the tree stops growing and the
// remaining budget is spent on rollouts. Non-positive means no cap.
func WithMaxTreeBytes(n int64) Option {
	return func(e *Engine) {
		e.maxTreeBytes = n
	}
}

func WithMaxTreeMb(mb int) Option {
	return WithMaxTreeBytes(int64(mb) << 20)
}

// Backpropagation strategy of every search, mcts.FixedSideReward by default
func WithStrategy(strategy mcts.StrategyLike) Option {
	return func(e *Engine) {
		e.strategy = strategy
	}
}

// Fixed seed of the search randomness, 0 keeps mcts.SeedGeneratorFn
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// Number of principal variations reported to listeners
func WithMultiPv(n int) Option {
	return func(e *Engine) {
		e.multiPv = n
	}
}

// MCTS engine instance. Every request builds its own tree, so an Engine can
// serve concurrent requests.
type Engine struct {
	id           string
	maxTreeBytes int64
	strategy     mcts.StrategyLike
	seed         int64
	multiPv      int
}

func New(opts ...Option) *Engine {
	e := &Engine{
		id:       uuid.NewString(),
		strategy: mcts.FixedSideReward{},
		multiPv:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ID() string {
	return e.id
}

// Search for the best move within the request's budget
func (e *Engine) Think(req Request) (Response, error) {
	return e.think(context.Background(), req, nil)
}

// Like Think, but reports the search progress to 'listener' and stops early
// once 'ctx' is done
func (e *Engine) Analyze(ctx context.Context, req Request, listener mcts.StatsListener) (Response, error) {
	return e.think(ctx, req, &listener)
}

func (e *Engine) think(ctx context.Context, req Request, listener *mcts.StatsListener) (Response, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	resp := Response{EngineID: e.id}
	board := req.Board

	switch {
	case board.IsEmpty():
		// Nothing is adjacent to a stone yet, take the centre
		resp.Move = gomoku.Center
		resp.Status = StatusOpening
		resp.ElapsedMs = time.Since(start).Milliseconds()
		return resp, nil
	case gomoku.Winner(&board) != gomoku.Empty:
		return Response{}, ErrGameOver
	case board.IsFull():
		return Response{}, ErrBoardFull
	}

	tree := mcts.NewTree(board, req.SideToMove())
	tree.SetStrategy(e.strategy)
	tree.SetContext(ctx)
	if e.seed != 0 {
		tree.Seed(e.seed)
	}
	if listener != nil {
		tree.SetListener(*listener)
	}

	limits := mcts.DefaultLimits().SetMovetime(req.SearchBudgetMs).SetMultiPv(e.multiPv)
	if e.maxTreeBytes > 0 {
		limits.SetByteSize(e.maxTreeBytes)
	}
	tree.SetLimits(limits)

	result := tree.Search()
	if !result.HasMove {
		// A board with stones and empty cells always has a legal move
		return Response{}, ErrBoardFull
	}

	resp.Move = result.Move
	resp.SimulationsRun = result.Cycles
	resp.WinRate = result.WinRate
	resp.RootVisits = result.RootVisits
	resp.Status = StatusSearched
	resp.ElapsedMs = time.Since(start).Milliseconds()

	if result.Fallback {
		resp.Status = StatusFallback
		log.Warn().
			Str("engine", e.id).
			Str("move", resp.Move.String()).
			Stringer("stop-reason", result.StopReason).
			Msg("search-fallback")
	}
	return resp, nil
}
