package common

import (
	"image/color"
)

// Entity colors
var (
	PlayerColor = color.RGBA{255, 255, 0, 255}
	GhostColor  = color.RGBA{255, 0, 0, 255}
	FoodColor   = color.RGBA{0, 255, 0, 255}
)

// UI colors
var (
	BackgroundColor = color.RGBA{0, 0, 0, 255}
	GridLineColor   = color.RGBA{255, 255, 255, 255}
	TextColor       = color.RGBA{255, 255, 255, 255}
	VictoryColor    = color.RGBA{0, 255, 0, 255}
	DefeatColor     = color.RGBA{255, 0, 0, 255}
)

// RGB converts a [3]int triple from configuration into a color, clamping each channel
func RGB(c [3]int) color.RGBA {
	return color.RGBA{
		R: uint8(Clamp(c[0], 0, 255)),
		G: uint8(Clamp(c[1], 0, 255)),
		B: uint8(Clamp(c[2], 0, 255)),
		A: 255,
	}
}
