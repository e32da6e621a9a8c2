package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// AllCells returns every cell of a size x size grid in row-major order
func AllCells(size int) []core.Coordinate {
	cells := make([]core.Coordinate, 0, size*size)
	for i := 0; i < size*size; i++ {
		cells = append(cells, core.FromIndex(i, size))
	}
	return cells
}

// AssertInBounds asserts that every cell lies on a size x size grid
func AssertInBounds(t *testing.T, size int, cells ...core.Coordinate) {
	t.Helper()
	for _, c := range cells {
		assert.True(t, c.IsValid(size), "cell %v outside %dx%d grid", c, size, size)
	}
}

// AssertMinSeparation asserts that every pair of cells is at least minDistance apart
func AssertMinSeparation(t *testing.T, minDistance int, cells ...core.Coordinate) {
	t.Helper()
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			assert.GreaterOrEqual(t, cells[i].DistanceTo(cells[j]), minDistance,
				"cells %v and %v too close", cells[i], cells[j])
		}
	}
}
