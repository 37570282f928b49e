package gomoku

// Fixed size grid of cells in row-major order. Board is a value type:
// assigning it copies every cell, so a hypothetical move is explored on a
// copy without touching the original position.
type Board [NumCells]Cell

func (b *Board) At(m Move) Cell {
	return b[m.Index()]
}

func (b *Board) Set(m Move, c Cell) {
	b[m.Index()] = c
}

func (b *Board) Remove(m Move) {
	b[m.Index()] = Empty
}

// Returns a copy of the board with 'c' placed on 'm'
func (b Board) Apply(m Move, c Cell) Board {
	b[m.Index()] = c
	return b
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Number of stones of each player
func (b *Board) Count() (x, o int) {
	for _, c := range b {
		switch c {
		case X:
			x++
		case O:
			o++
		}
	}
	return x, o
}

func (b *Board) IsEmpty() bool {
	for _, c := range b {
		if c != Empty {
			return false
		}
	}
	return true
}

func (b *Board) IsFull() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Side to move inferred from the stone counts, X always starts
func (b *Board) SideToMove() Cell {
	x, o := b.Count()
	if x > o {
		return O
	}
	return X
}

// Whether any of the (up to) 8 neighbours of 'm' is occupied
func (b *Board) HasNeighbor(m Move) bool {
	for r := max(0, m.Row-1); r <= min(Size-1, m.Row+1); r++ {
		for c := max(0, m.Col-1); c <= min(Size-1, m.Col+1); c++ {
			if (r != m.Row || c != m.Col) && b[r*Size+c] != Empty {
				return true
			}
		}
	}
	return false
}
