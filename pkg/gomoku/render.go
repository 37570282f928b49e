package gomoku

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

type RenderOptions struct {
	// Color profile of the output, termenv.Ascii disables all styling
	Profile termenv.Profile
	// Last played move, drawn reversed
	Last *Move
	// Cells to highlight, for example the winning line
	Highlight []Move
}

// Writes a human readable board to 'w', columns are labelled a..o and rows
// 1..15, matching Move.String
func Render(w io.Writer, b *Board, opts RenderOptions) error {
	out := termenv.NewOutput(w, termenv.WithProfile(opts.Profile))

	highlighted := make(map[Move]bool, len(opts.Highlight))
	for _, m := range opts.Highlight {
		highlighted[m] = true
	}

	builder := strings.Builder{}
	builder.WriteString("   ")
	for col := 0; col < Size; col++ {
		builder.WriteString(fmt.Sprintf(" %c", 'a'+col))
	}
	builder.WriteByte('\n')

	for row := 0; row < Size; row++ {
		builder.WriteString(fmt.Sprintf("%2d ", row+1))
		for col := 0; col < Size; col++ {
			m := Move{Row: row, Col: col}
			style := cellStyle(out, b.At(m))

			if highlighted[m] {
				style = style.Background(out.Color("3"))
			}
			if opts.Last != nil && *opts.Last == m {
				style = style.Reverse()
			}

			builder.WriteByte(' ')
			builder.WriteString(style.String())
		}
		builder.WriteByte('\n')
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func cellStyle(out *termenv.Output, c Cell) termenv.Style {
	switch c {
	case X:
		return out.String(c.String()).Foreground(out.Color("1")).Bold()
	case O:
		return out.String(c.String()).Foreground(out.Color("4")).Bold()
	default:
		return out.String(c.String()).Faint()
	}
}
