// Package server exposes the engine over HTTP: a request/response move
// endpoint backed by the supervisor and a websocket streaming search progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/gomoku-mcts/pkg/config"
	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config     *config.Config
	supervisor *engine.Supervisor
	analyzer   *engine.Engine
	router     chi.Router
	upgrader   websocket.Upgrader
}

func New(cfg *config.Config, supervisor *engine.Supervisor, analyzer *engine.Engine) *Server {
	s := &Server{
		config:     cfg,
		supervisor: supervisor,
		analyzer:   analyzer,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", s.handlePing)
	r.Get("/api/config", s.handleConfig)
	r.Post("/api/move", s.handleMove)
	r.Get("/ws/analysis", s.handleAnalysis)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve on the configured address until 'ctx' is done, then shut down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Server.Addr,
		Handler: s.router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("server-listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("server-shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("graceful-shutdown-failed")
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Maps engine errors to a status code and body
func writeError(w http.ResponseWriter, err error) {
	var invalid *engine.InvalidRequestError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: invalid.Reason, Field: invalid.Field})
	case errors.Is(err, engine.ErrBoardFull), errors.Is(err, engine.ErrGameOver):
		writeJSON(w, http.StatusConflict, errorDTO{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorDTO{Error: err.Error()})
	default:
		log.Error().Err(err).Msg("request-failed")
		writeJSON(w, http.StatusInternalServerError, errorDTO{Error: "internal error"})
	}
}
