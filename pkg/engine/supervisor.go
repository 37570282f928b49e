package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

// Default extra time given to an engine on top of the search budget
const DefaultGrace = time.Second

type Factory func() Thinker

type outcome struct {
	resp Response
	err  error
}

// Runs every request on its own goroutine and waits at most budget + grace
// for the answer. A timed out or crashed engine is discarded and replaced by
// a fresh one from the factory, the caller gets a random legal move instead.
// Results arriving after the deadline are dropped.
type Supervisor struct {
	mu       sync.Mutex
	factory  Factory
	engine   Thinker
	grace    time.Duration
	rand     *rand.Rand
	replaced int
}

func NewSupervisor(factory Factory, grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Supervisor{
		factory: factory,
		engine:  factory(),
		grace:   grace,
		rand:    rand.New(rand.NewSource(mcts.SeedGeneratorFn())),
	}
}

// Current engine instance
func (s *Supervisor) Engine() Thinker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Number of engines discarded so far
func (s *Supervisor) Replaced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced
}

func (s *Supervisor) Grace() time.Duration {
	return s.grace
}

// Ask the current engine for a move. Request errors (invalid request, game
// over, full board) are returned as is, engine failures never are.
func (s *Supervisor) Move(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	engine := s.Engine()
	results := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("engine", engine.ID()).
					Str("panic", fmt.Sprint(r)).
					Msg("engine-crashed")
				close(results)
			}
		}()

		resp, err := engine.Think(req)
		results <- outcome{resp, err}
	}()

	deadline := time.Duration(min(req.SearchBudgetMs, MaxSearchBudgetMs))*time.Millisecond + s.grace
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case out, ok := <-results:
		if ok {
			return out.resp, out.err
		}
	case <-timer.C:
		log.Warn().
			Str("engine", engine.ID()).
			Dur("deadline", deadline).
			Msg("engine-timeout")
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}

	s.replace(engine)
	return s.FallbackMove(&req.Board)
}

// Discard 'engine' if it is still the current one
func (s *Supervisor) replace(engine Thinker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine != engine {
		return
	}
	s.engine = s.factory()
	s.replaced++
	log.Warn().
		Str("old", engine.ID()).
		Str("new", s.engine.ID()).
		Msg("engine-replaced")
}

// Uniformly random legal move, the centre on an empty board
func (s *Supervisor) FallbackMove(b *gomoku.Board) (Response, error) {
	resp := Response{Status: StatusFallback}
	if b.IsEmpty() {
		resp.Move = gomoku.Center
		return resp, nil
	}

	legal := b.LegalMoves()
	if len(legal) == 0 {
		return Response{}, ErrBoardFull
	}

	s.mu.Lock()
	resp.Move = legal[s.rand.Intn(len(legal))]
	s.mu.Unlock()
	return resp, nil
}
