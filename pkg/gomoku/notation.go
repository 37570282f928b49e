package gomoku

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidNotation = errors.New("gomoku: invalid notation")

// String notation of the board, much like FEN for chess: Size rows (top row
// first) separated by '/', each row made of 'x', 'o' and numbers counting
// consecutive empty cells. A '.' is accepted as a single empty cell when
// parsing.
//
// Examples:
//
// * empty board: 15/15/15/15/15/15/15/15/15/15/15/15/15/15/15
//
// * centre stone: 15/15/15/15/15/15/15/7x7/15/15/15/15/15/15/15
func (b *Board) Notation() string {
	builder := strings.Builder{}

	for row := 0; row < Size; row++ {
		if row > 0 {
			builder.WriteByte('/')
		}

		counter := 0
		for col := 0; col < Size; col++ {
			c := b[row*Size+col]
			if c == Empty {
				counter++
				continue
			}

			if counter > 0 {
				builder.WriteString(strconv.Itoa(counter))
				counter = 0
			}
			builder.WriteString(c.String())
		}

		if counter > 0 {
			builder.WriteString(strconv.Itoa(counter))
		}
	}

	return builder.String()
}

// Parses the notation produced by Board.Notation
func FromNotation(notation string) (Board, error) {
	var b Board

	rows := strings.Split(strings.TrimSpace(notation), "/")
	if len(rows) != Size {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidNotation, Size, len(rows))
	}

	for row, text := range rows {
		col := 0
		number := 0

		flush := func() {
			col += number
			number = 0
		}

		for _, ch := range text {
			switch {
			case ch >= '0' && ch <= '9':
				number = number*10 + int(ch-'0')
				if number > Size || col+number > Size {
					return b, fmt.Errorf("%w: row %d is too long", ErrInvalidNotation, row+1)
				}
			case ch == '.':
				flush()
				if col >= Size {
					return b, fmt.Errorf("%w: row %d is too long", ErrInvalidNotation, row+1)
				}
				col++
			case ch == 'x' || ch == 'X' || ch == 'o' || ch == 'O':
				flush()
				if col >= Size {
					return b, fmt.Errorf("%w: row %d is too long", ErrInvalidNotation, row+1)
				}
				cell, _ := ParseCell(string(ch))
				b[row*Size+col] = cell
				col++
			default:
				return b, fmt.Errorf("%w: unexpected character %q", ErrInvalidNotation, ch)
			}
		}
		flush()

		if col != Size {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrInvalidNotation, row+1, col)
		}
	}

	return b, nil
}
