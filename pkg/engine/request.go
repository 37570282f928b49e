package engine

import (
	"errors"
	"fmt"

	"github.com/IlikeChooros/gomoku-mcts/pkg/gomoku"
)

// Largest accepted search budget, one minute
const MaxSearchBudgetMs = 60000

var (
	// No empty cell is left, the game is a draw
	ErrBoardFull = errors.New("engine: board is full")
	// The position already contains five in a row
	ErrGameOver = errors.New("engine: game is already over")
)

// Malformed engine request, rejected before any search starts
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("engine: invalid request: %s: %s", e.Field, e.Reason)
}

type Status string

const (
	// The move comes from a completed search
	StatusSearched Status = "searched"
	// Empty board, the centre is played without searching
	StatusOpening Status = "opening"
	// Random legal move, the search could not produce one in time
	StatusFallback Status = "fallback"
)

type Request struct {
	Board gomoku.Board
	// Wall clock budget of the search, 0 runs a single iteration
	SearchBudgetMs int
	// Player to move, inferred from the stone counts if Empty
	Side gomoku.Cell
}

func (r *Request) Validate() error {
	if r.SearchBudgetMs < 0 {
		return &InvalidRequestError{"searchBudgetMs", fmt.Sprintf("must not be negative, got %d", r.SearchBudgetMs)}
	}
	if r.SearchBudgetMs > MaxSearchBudgetMs {
		return &InvalidRequestError{"searchBudgetMs", fmt.Sprintf("must be at most %d, got %d", MaxSearchBudgetMs, r.SearchBudgetMs)}
	}
	if !r.Side.Valid() {
		return &InvalidRequestError{"side", fmt.Sprintf("unknown player %d", r.Side)}
	}
	for i, c := range r.Board {
		if !c.Valid() {
			return &InvalidRequestError{"board", fmt.Sprintf("unknown cell value %d at %v", c, gomoku.MoveFromIndex(i))}
		}
	}
	return nil
}

// Player to move for this request
func (r *Request) SideToMove() gomoku.Cell {
	if r.Side != gomoku.Empty {
		return r.Side
	}
	return r.Board.SideToMove()
}

type Response struct {
	Move           gomoku.Move `json:"move"`
	SimulationsRun int         `json:"simulationsRun"`
	WinRate        float64     `json:"winRate"`
	RootVisits     int         `json:"rootVisits"`
	Status         Status      `json:"status"`
	EngineID       string      `json:"engineId"`
	ElapsedMs      int64       `json:"elapsedMs"`
}

// Converts a Size x Size grid of cell values (0 empty, 1 X, 2 O) into a board
func ParseGrid(grid [][]int) (gomoku.Board, error) {
	var b gomoku.Board
	if len(grid) != gomoku.Size {
		return b, &InvalidRequestError{"board", fmt.Sprintf("expected %d rows, got %d", gomoku.Size, len(grid))}
	}

	for row, cells := range grid {
		if len(cells) != gomoku.Size {
			return b, &InvalidRequestError{"board", fmt.Sprintf("row %d: expected %d columns, got %d", row, gomoku.Size, len(cells))}
		}
		for col, v := range cells {
			if v < int(gomoku.Empty) || v > int(gomoku.O) {
				return b, &InvalidRequestError{"board", fmt.Sprintf("unknown cell value %d at row %d, col %d", v, row, col)}
			}
			b.Set(gomoku.NewMove(row, col), gomoku.Cell(v))
		}
	}
	return b, nil
}

// Inverse of ParseGrid
func Grid(b *gomoku.Board) [][]int {
	grid := make([][]int, gomoku.Size)
	for row := range grid {
		grid[row] = make([]int, gomoku.Size)
		for col := range grid[row] {
			grid[row][col] = int(b.At(gomoku.NewMove(row, col)))
		}
	}
	return grid
}
