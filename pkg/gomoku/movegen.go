package gomoku

// Generates legal moves in row-major order: empty cells with at least one
// occupied neighbour. An empty (or full) board has no legal moves.
func (b *Board) LegalMoves() []Move {
	moves := make([]Move, 0, 32)
	for i, c := range b {
		if c != Empty {
			continue
		}
		if m := MoveFromIndex(i); b.HasNeighbor(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

func (b *Board) IsLegal(m Move) bool {
	return m.Valid() && b.At(m) == Empty && b.HasNeighbor(m)
}

// Incrementally maintained set of legal moves, used by random playouts to
// avoid rescanning the board after every stone. The order of the moves is
// not stable, but the set always equals LegalMoves() of the tracked board.
type Frontier struct {
	moves []Move
	// position+1 of the cell in 'moves', 0 means absent
	index [NumCells]int16
}

func NewFrontier(b *Board) *Frontier {
	f := &Frontier{moves: make([]Move, 0, NumCells)}
	f.Reset(b)
	return f
}

// Rebuild the set from scratch for given board
func (f *Frontier) Reset(b *Board) {
	for i := range f.moves {
		f.index[f.moves[i].Index()] = 0
	}
	f.moves = f.moves[:0]

	for i, c := range b {
		if c == Empty && b.HasNeighbor(MoveFromIndex(i)) {
			f.add(MoveFromIndex(i))
		}
	}
}

func (f *Frontier) Len() int {
	return len(f.moves)
}

func (f *Frontier) At(i int) Move {
	return f.moves[i]
}

func (f *Frontier) Contains(m Move) bool {
	return f.index[m.Index()] != 0
}

// Moves currently in the set, the slice is owned by the frontier
func (f *Frontier) Moves() []Move {
	return f.moves
}

// Update the set after 'm' was placed on 'b'
func (f *Frontier) Play(b *Board, m Move) {
	f.remove(m)
	for r := max(0, m.Row-1); r <= min(Size-1, m.Row+1); r++ {
		for c := max(0, m.Col-1); c <= min(Size-1, m.Col+1); c++ {
			n := Move{Row: r, Col: c}
			if b.At(n) == Empty && !f.Contains(n) {
				f.add(n)
			}
		}
	}
}

func (f *Frontier) add(m Move) {
	f.moves = append(f.moves, m)
	f.index[m.Index()] = int16(len(f.moves))
}

func (f *Frontier) remove(m Move) {
	pos := int(f.index[m.Index()]) - 1
	if pos < 0 {
		return
	}

	last := len(f.moves) - 1
	f.moves[pos] = f.moves[last]
	f.index[f.moves[pos].Index()] = int16(pos + 1)
	f.moves = f.moves[:last]
	f.index[m.Index()] = 0
}
