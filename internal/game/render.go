package game

import (
	"fmt"
	"strings"
)

// Symbol is the single-character rendering of a cell state.
func (s CellState) Symbol() byte {
	switch s {
	case Water:
		return '~'
	case ShipPresent:
		return 'S'
	case Hit:
		return 'X'
	case Miss:
		return 'O'
	default:
		panic(fmt.Sprintf("game: unknown cell state %d", uint8(s)))
	}
}

// Rows renders each grid row as space-separated symbols. With hideShips,
// unhit ship cells render as water.
func (b *Board) Rows(hideShips bool) []string {
	rows := make([]string, b.size)
	var sb strings.Builder
	for r := 0; r < b.size; r++ {
		sb.Reset()
		for c := 0; c < b.size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			st := b.grid[r][c]
			if hideShips && st == ShipPresent {
				st = Water
			}
			sb.WriteByte(st.Symbol())
		}
		rows[r] = sb.String()
	}
	return rows
}

// Render is Rows joined with newlines, plus a trailing newline.
func (b *Board) Render(hideShips bool) string {
	return strings.Join(b.Rows(hideShips), "\n") + "\n"
}
