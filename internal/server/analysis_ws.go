package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

const wsIdlePingInterval = 30 * time.Second

// One websocket connection, runs at most one analysis at a time
type analysisClient struct {
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Protocol, every frame is a wsMessage:
//
//	-> {"type": "analyze", "payload": <move request>}
//	<- {"type": "started", "payload": {"id": ...}}
//	<- {"type": "progress", "payload": <progress>}   (every progress_interval cycles and once at the end)
//	<- {"type": "result", "payload": {"id": ..., "response": <move response>}}
//	-> {"type": "stop"}                               (ends the running analysis early)
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &analysisClient{
		send: make(chan []byte, 16),
		done: make(chan struct{}),
	}

	go func() {
		defer close(client.done)
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			log.Debug().Err(err).Msg("analysis-write-failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendError("", errors.New("invalid message"))
			continue
		}

		switch msg.Type {
		case "analyze":
			client.start(ctx, s, msg.Payload)
		case "stop":
			client.stop()
		case "ping":
			client.sendJSON(wsMessage{Type: "pong"})
		default:
			client.sendError("", errors.New("unknown message type "+msg.Type))
		}
	}

	client.stop()
	client.wg.Wait()
	close(client.send)
	<-client.done
}

func (c *analysisClient) start(parent context.Context, s *Server, payload json.RawMessage) {
	var dto moveRequestDTO
	if err := json.Unmarshal(payload, &dto); err != nil {
		c.sendError("", errors.New("invalid payload"))
		return
	}
	req, err := dto.toRequest(s.config.SearchBudgetMs)
	if err != nil {
		c.sendError("", err)
		return
	}

	// Only the latest analysis is kept
	c.stop()
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	id := uuid.NewString()
	listener := mcts.NewStatsListener()
	listener.
		SetCycleInterval(s.config.Server.ProgressInterval).
		OnCycle(func(stats mcts.ListenerTreeStats) {
			// Progress frames are dropped if the client is slow
			c.trySend(wsMessage{Type: "progress", Payload: mustMarshal(toProgress(id, stats, false))})
		}).
		OnStop(func(stats mcts.ListenerTreeStats) {
			c.sendJSON(wsMessage{Type: "progress", Payload: mustMarshal(toProgress(id, stats, true))})
		})

	c.sendJSON(wsMessage{Type: "started", Payload: mustMarshal(map[string]string{"id": id})})
	log.Debug().Str("id", id).Int("budget-ms", req.SearchBudgetMs).Msg("analysis-started")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		resp, err := s.analyzer.Analyze(ctx, req, listener)
		if err != nil {
			c.sendError(id, err)
			return
		}
		c.sendJSON(wsMessage{Type: "result", Payload: mustMarshal(resultDTO{ID: id, Response: toMoveResponse(req, resp)})})
	}()
}

func (c *analysisClient) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *analysisClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

func (c *analysisClient) trySend(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *analysisClient) sendError(id string, err error) {
	dto := errorDTO{ID: id, Error: err.Error()}
	var invalid *engine.InvalidRequestError
	if errors.As(err, &invalid) {
		dto.Error = invalid.Reason
		dto.Field = invalid.Field
	}
	c.sendJSON(wsMessage{Type: "error", Payload: mustMarshal(dto)})
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
