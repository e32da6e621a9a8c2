package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityColorsAreDistinct(t *testing.T) {
	colors := []color.RGBA{PlayerColor, GhostColor, FoodColor, BackgroundColor}
	for i := range colors {
		for j := i + 1; j < len(colors); j++ {
			assert.NotEqual(t, colors[i], colors[j], "colors %d and %d should differ", i, j)
		}
	}
}

func TestRGB(t *testing.T) {
	tests := []struct {
		name     string
		input    [3]int
		expected color.RGBA
	}{
		{"yellow", [3]int{255, 255, 0}, color.RGBA{255, 255, 0, 255}},
		{"clamped high", [3]int{300, 0, 0}, color.RGBA{255, 0, 0, 255}},
		{"clamped low", [3]int{-5, 10, 20}, color.RGBA{0, 10, 20, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RGB(tt.input))
		})
	}
}
