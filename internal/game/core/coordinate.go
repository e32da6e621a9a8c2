package core

import "fmt"

// Coordinate represents a cell on the square grid. X is the column and Y the row.
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a row-major cell index
func FromIndex(idx, size int) Coordinate {
	return Coordinate{
		X: idx % size,
		Y: idx / size,
	}
}

// IsValid checks if the coordinate lies inside a size x size grid
func (c Coordinate) IsValid(size int) bool {
	return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
}

// ToIndex converts the coordinate to a row-major cell index
func (c Coordinate) ToIndex(size int) int {
	return c.Y*size + c.X
}

// DistanceTo calculates the Manhattan distance to another coordinate
func (c Coordinate) DistanceTo(other Coordinate) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X - other.X,
		Y: c.Y - other.Y,
	}
}

// Clamp pulls both axes back into [0, size-1]
func (c Coordinate) Clamp(size int) Coordinate {
	return Coordinate{
		X: clampAxis(c.X, size),
		Y: clampAxis(c.Y, size),
	}
}

// Equal checks if two coordinates are equal
func (c Coordinate) Equal(other Coordinate) bool {
	return c.X == other.X && c.Y == other.Y
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Contains reports whether target is present in coords
func Contains(coords []Coordinate, target Coordinate) bool {
	for _, c := range coords {
		if c == target {
			return true
		}
	}
	return false
}

func clampAxis(v, size int) int {
	if v < 0 {
		return 0
	}
	if v > size-1 {
		return size - 1
	}
	return v
}
