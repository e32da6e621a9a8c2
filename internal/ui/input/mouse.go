package input

import (
	"github.com/hajimehoshi/ebiten/v2"
)

func GetCursorPosition() (int, int) {
	return ebiten.CursorPosition()
}

// ScreenToCell converts a pixel position to a grid cell. ok is false outside
// the board, including the info bar.
func ScreenToCell(px, py, cellSize, gridSize int) (x, y int, ok bool) {
	if cellSize <= 0 || px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y = px/cellSize, py/cellSize
	if x >= gridSize || y >= gridSize {
		return 0, 0, false
	}
	return x, y, true
}
