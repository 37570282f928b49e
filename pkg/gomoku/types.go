package gomoku

import "fmt"

const (
	// Board edge length, the board is always Size x Size
	Size = 15
	// Number of cells on the board
	NumCells = Size * Size
	// Number of stones in a row needed to win
	WinLength = 5
)

// State of a single board cell, X is the first player to move
type Cell uint8

const (
	Empty Cell = 0
	X     Cell = 1
	O     Cell = 2
)

// Returns the other player, Empty stays Empty
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (c Cell) Valid() bool {
	return c <= O
}

func (c Cell) String() string {
	switch c {
	case X:
		return "x"
	case O:
		return "o"
	default:
		return "."
	}
}

// Parses 'x'/'o' (any case), used by notation and command line flags
func ParseCell(s string) (Cell, error) {
	switch s {
	case "x", "X":
		return X, nil
	case "o", "O":
		return O, nil
	case ".", "":
		return Empty, nil
	}
	return Empty, fmt.Errorf("gomoku: invalid cell %q", s)
}

// A (row, col) coordinate, both 0-indexed
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func NewMove(row, col int) Move {
	return Move{Row: row, Col: col}
}

// Move at given cell index (row-major)
func MoveFromIndex(index int) Move {
	return Move{Row: index / Size, Col: index % Size}
}

func (m Move) Index() int {
	return m.Row*Size + m.Col
}

func (m Move) Valid() bool {
	return m.Row >= 0 && m.Row < Size && m.Col >= 0 && m.Col < Size
}

// Column letter + 1-based row, e.g. "h8" for the centre
func (m Move) String() string {
	if !m.Valid() {
		return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(m.Col), m.Row+1)
}

// Parses the format produced by Move.String
func ParseMove(s string) (Move, error) {
	if len(s) < 2 {
		return Move{}, fmt.Errorf("gomoku: invalid move %q", s)
	}

	col := int(s[0] - 'a')
	row := 0
	for _, ch := range s[1:] {
		if ch < '0' || ch > '9' {
			return Move{}, fmt.Errorf("gomoku: invalid move %q", s)
		}
		row = row*10 + int(ch-'0')
	}

	m := Move{Row: row - 1, Col: col}
	if !m.Valid() {
		return Move{}, fmt.Errorf("gomoku: move %q out of board", s)
	}
	return m, nil
}

// Centre of the board, the default opening move
var Center = Move{Row: Size / 2, Col: Size / 2}
