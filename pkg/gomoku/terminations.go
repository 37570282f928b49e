package gomoku

// The 4 line directions through a cell, the opposite ones are walked by negation
var lineDirections = [4][2]int{
	{1, 0},  // vertical
	{0, 1},  // horizontal
	{1, 1},  // diagonal
	{1, -1}, // anti-diagonal
}

// Counts consecutive stones of 'player' starting at (row, col) inclusive,
// walking in (dr, dc) direction
func countConsecutive(b *Board, row, col, dr, dc int, player Cell) int {
	count := 0
	for b.InBounds(row, col) && b[row*Size+col] == player {
		count++
		row += dr
		col += dc
	}
	return count
}

// Reports whether the stone already placed on 'm' completes WinLength or
// more in a row. Both half-runs include the origin, hence the -1.
func IsWinningMove(b *Board, m Move) bool {
	player := b.At(m)
	if player == Empty {
		return false
	}

	for _, d := range lineDirections {
		total := countConsecutive(b, m.Row, m.Col, d[0], d[1], player) +
			countConsecutive(b, m.Row, m.Col, -d[0], -d[1], player) - 1
		if total >= WinLength {
			return true
		}
	}
	return false
}

// Returns the full run of stones through 'm' that makes it a winning move,
// nil if the move does not win
func WinningLine(b *Board, m Move) []Move {
	player := b.At(m)
	if player == Empty {
		return nil
	}

	for _, d := range lineDirections {
		forward := countConsecutive(b, m.Row, m.Col, d[0], d[1], player)
		backward := countConsecutive(b, m.Row, m.Col, -d[0], -d[1], player)
		if forward+backward-1 < WinLength {
			continue
		}

		line := make([]Move, 0, forward+backward-1)
		start := Move{Row: m.Row - d[0]*(backward-1), Col: m.Col - d[1]*(backward-1)}
		for i := 0; i < forward+backward-1; i++ {
			line = append(line, Move{Row: start.Row + d[0]*i, Col: start.Col + d[1]*i})
		}
		return line
	}
	return nil
}

// Scans the whole board for a completed line, returns its owner or Empty
func Winner(b *Board) Cell {
	for i, c := range b {
		if c != Empty && IsWinningMove(b, MoveFromIndex(i)) {
			return c
		}
	}
	return Empty
}
