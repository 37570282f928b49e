package server

import (
	"encoding/json"

	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

// Position to search, either as a grid (0 empty, 1 x, 2 o) or in board
// notation. A missing budget falls back to the configured one.
type moveRequestDTO struct {
	Board          [][]int `json:"board,omitempty"`
	Notation       string  `json:"notation,omitempty"`
	SearchBudgetMs *int    `json:"searchBudgetMs,omitempty"`
	Side           int     `json:"side,omitempty"`
}

func (d *moveRequestDTO) toRequest(defaultBudget int) (engine.Request, error) {
	req := engine.Request{
		SearchBudgetMs: defaultBudget,
		Side:           gomoku.Cell(d.Side),
	}
	if d.SearchBudgetMs != nil {
		req.SearchBudgetMs = *d.SearchBudgetMs
	}
	if d.Side < 0 || d.Side > int(gomoku.O) {
		return req, &engine.InvalidRequestError{Field: "side", Reason: "must be 0, 1 or 2"}
	}

	var err error
	switch {
	case d.Notation != "" && d.Board != nil:
		return req, &engine.InvalidRequestError{Field: "board", Reason: "give either board or notation, not both"}
	case d.Notation != "":
		req.Board, err = gomoku.FromNotation(d.Notation)
		if err != nil {
			return req, &engine.InvalidRequestError{Field: "notation", Reason: err.Error()}
		}
	default:
		req.Board, err = engine.ParseGrid(d.Board)
		if err != nil {
			return req, err
		}
	}
	return req, req.Validate()
}

type moveResponseDTO struct {
	engine.Response
	// Position after the engine's move
	Notation    string        `json:"notation"`
	Winner      int           `json:"winner"`
	WinningLine []gomoku.Move `json:"winningLine,omitempty"`
}

func toMoveResponse(req engine.Request, resp engine.Response) moveResponseDTO {
	board := req.Board.Apply(resp.Move, req.SideToMove())
	dto := moveResponseDTO{
		Response: resp,
		Notation: board.Notation(),
	}
	if line := gomoku.WinningLine(&board, resp.Move); line != nil {
		dto.Winner = int(req.SideToMove())
		dto.WinningLine = line
	}
	return dto
}

type errorDTO struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type lineDTO struct {
	Move     gomoku.Move   `json:"move"`
	Eval     float64       `json:"eval"`
	Visits   int           `json:"visits"`
	Pv       []gomoku.Move `json:"pv"`
	Terminal bool          `json:"terminal"`
}

type progressDTO struct {
	ID         string    `json:"id"`
	Cycles     int       `json:"cycles"`
	Cps        uint32    `json:"cps"`
	Depth      int       `json:"depth"`
	TimeMs     int       `json:"timeMs"`
	Size       uint32    `json:"size"`
	StopReason string    `json:"stopReason,omitempty"`
	Lines      []lineDTO `json:"lines"`
}

func toProgress(id string, stats mcts.ListenerTreeStats, final bool) progressDTO {
	lines := make([]lineDTO, len(stats.Lines))
	for i, line := range stats.Lines {
		lines[i] = lineDTO{
			Move:     line.BestMove,
			Eval:     line.Eval,
			Visits:   line.Visits,
			Pv:       line.Moves,
			Terminal: line.Terminal,
		}
	}

	dto := progressDTO{
		ID:     id,
		Cycles: stats.Cycles,
		Cps:    stats.Cps,
		Depth:  stats.Maxdepth,
		TimeMs: stats.TimeMs,
		Size:   stats.Size,
		Lines:  lines,
	}
	if final {
		dto.StopReason = stats.StopReason.String()
	}
	return dto
}

type resultDTO struct {
	ID       string          `json:"id"`
	Response moveResponseDTO `json:"response"`
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
