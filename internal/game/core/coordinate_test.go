package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCoordinate(t *testing.T) {
	c := NewCoordinate(3, 5)
	assert.Equal(t, 3, c.X)
	assert.Equal(t, 5, c.Y)
}

func TestCoordinate_FromIndex(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		size     int
		expected Coordinate
	}{
		{"TopLeft", 0, 10, Coordinate{0, 0}},
		{"TopRight", 9, 10, Coordinate{9, 0}},
		{"SecondRow", 10, 10, Coordinate{0, 1}},
		{"Middle", 55, 10, Coordinate{5, 5}},
		{"BottomRight", 224, 15, Coordinate{14, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromIndex(tt.index, tt.size))
		})
	}
}

func TestCoordinate_RoundTrip(t *testing.T) {
	size := 15
	for i := 0; i < size*size; i++ {
		coord := FromIndex(i, size)
		assert.Equal(t, i, coord.ToIndex(size), "Round trip failed for index %d", i)
	}
}

func TestCoordinate_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		coord Coordinate
		size  int
		valid bool
	}{
		{"Valid_Origin", Coordinate{0, 0}, 15, true},
		{"Valid_Corner", Coordinate{14, 14}, 15, true},
		{"Invalid_NegativeX", Coordinate{-1, 3}, 15, false},
		{"Invalid_NegativeY", Coordinate{3, -1}, 15, false},
		{"Invalid_XTooLarge", Coordinate{15, 0}, 15, false},
		{"Invalid_YTooLarge", Coordinate{0, 15}, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.coord.IsValid(tt.size))
		})
	}
}

func TestCoordinate_DistanceTo(t *testing.T) {
	tests := []struct {
		name     string
		from     Coordinate
		to       Coordinate
		expected int
	}{
		{"SamePoint", Coordinate{5, 5}, Coordinate{5, 5}, 0},
		{"Horizontal", Coordinate{0, 0}, Coordinate{4, 0}, 4},
		{"Vertical", Coordinate{2, 7}, Coordinate{2, 3}, 4},
		{"Diagonal", Coordinate{0, 0}, Coordinate{3, 4}, 7},
		{"Negative", Coordinate{-2, -2}, Coordinate{2, 2}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.DistanceTo(tt.to))
			assert.Equal(t, tt.expected, tt.to.DistanceTo(tt.from), "distance should be symmetric")
		})
	}
}

func TestCoordinate_Arithmetic(t *testing.T) {
	a := Coordinate{3, 4}
	b := Coordinate{1, -2}

	assert.Equal(t, Coordinate{4, 2}, a.Add(b))
	assert.Equal(t, Coordinate{2, 6}, a.Sub(b))
	assert.True(t, a.Equal(Coordinate{3, 4}))
	assert.False(t, a.Equal(b))
	assert.Equal(t, "(3,4)", a.String())
}

func TestCoordinate_Clamp(t *testing.T) {
	tests := []struct {
		name     string
		coord    Coordinate
		expected Coordinate
	}{
		{"Inside", Coordinate{7, 7}, Coordinate{7, 7}},
		{"Negative", Coordinate{-1, -5}, Coordinate{0, 0}},
		{"Overflow", Coordinate{15, 20}, Coordinate{14, 14}},
		{"Mixed", Coordinate{-3, 16}, Coordinate{0, 14}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.coord.Clamp(15))
		})
	}
}

func TestContains(t *testing.T) {
	coords := []Coordinate{{1, 1}, {2, 3}}
	assert.True(t, Contains(coords, Coordinate{2, 3}))
	assert.False(t, Contains(coords, Coordinate{3, 2}))
	assert.False(t, Contains(nil, Coordinate{0, 0}))
}
