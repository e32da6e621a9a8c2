package renderer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
)

// Info bar layout
const (
	infoPadding    = 10
	infoColumnStep = 200
	infoTextY      = 15
)

// Palette holds every color the board renderer uses
type Palette struct {
	Player     color.Color
	Ghost      color.Color
	Food       color.Color
	Background color.Color
	GridLines  color.Color
	Text       color.Color
	Victory    color.Color
	Defeat     color.Color
}

// DefaultPalette returns the stock colors
func DefaultPalette() Palette {
	return Palette{
		Player:     common.PlayerColor,
		Ghost:      common.GhostColor,
		Food:       common.FoodColor,
		Background: common.BackgroundColor,
		GridLines:  common.GridLineColor,
		Text:       common.TextColor,
		Victory:    common.VictoryColor,
		Defeat:     common.DefeatColor,
	}
}

// BoardRenderer draws a game snapshot with an info bar below the grid
type BoardRenderer struct {
	cellSize   int
	infoHeight int
	font       font.Face
	palette    Palette
}

// NewBoardRenderer returns a renderer ready to use.
func NewBoardRenderer(cellSize, infoHeight int, f font.Face, palette Palette) *BoardRenderer {
	return &BoardRenderer{cellSize: cellSize, infoHeight: infoHeight, font: f, palette: palette}
}

// CellSize returns the side of one cell in pixels
func (br *BoardRenderer) CellSize() int {
	return br.cellSize
}

// ScreenSize returns the window size needed for a gridSize x gridSize board
func (br *BoardRenderer) ScreenSize(gridSize int) (width, height int) {
	return gridSize * br.cellSize, gridSize*br.cellSize + br.infoHeight
}

// CellOrigin returns the top-left pixel of c
func (br *BoardRenderer) CellOrigin(c core.Coordinate) (x, y float32) {
	return float32(c.X * br.cellSize), float32(c.Y * br.cellSize)
}

// CellCenter returns the center pixel of c
func (br *BoardRenderer) CellCenter(c core.Coordinate) (x, y float32) {
	ox, oy := br.CellOrigin(c)
	half := float32(br.cellSize) / 2
	return ox + half, oy + half
}

// Draw renders the board on the supplied Ebiten screen.
func (br *BoardRenderer) Draw(screen *ebiten.Image, snap game.Snapshot) {
	screen.Fill(br.palette.Background)

	size := float32(br.cellSize)
	for y := 0; y < snap.GridSize; y++ {
		for x := 0; x < snap.GridSize; x++ {
			ox, oy := br.CellOrigin(core.Coordinate{X: x, Y: y})
			vector.StrokeRect(screen, ox, oy, size, size, 1, br.palette.GridLines, false)
		}
	}

	for _, f := range snap.Foods {
		cx, cy := br.CellCenter(f)
		vector.DrawFilledCircle(screen, cx, cy, float32(br.cellSize/4), br.palette.Food, true)
	}

	if snap.HasGhost {
		gx, gy := br.CellOrigin(snap.Ghost)
		vector.DrawFilledRect(screen, gx, gy, size, size, br.palette.Ghost, false)
	}

	px, py := br.CellCenter(snap.Player)
	vector.DrawFilledCircle(screen, px, py, float32(br.cellSize/3), br.palette.Player, true)

	br.drawInfo(screen, snap)

	if msg, won, ok := Banner(snap); ok && br.font != nil {
		c := br.palette.Defeat
		if won {
			c = br.palette.Victory
		}
		b := text.BoundString(br.font, msg)
		boardPx := snap.GridSize * br.cellSize
		x := (boardPx - b.Dx()) / 2
		y := (boardPx + b.Dy()) / 2
		text.Draw(screen, msg, br.font, x, y, c)
	}
}

func (br *BoardRenderer) drawInfo(screen *ebiten.Image, snap game.Snapshot) {
	top := snap.GridSize * br.cellSize
	vector.DrawFilledRect(screen, 0, float32(top), float32(top), float32(br.infoHeight), br.palette.Background, false)
	if br.font == nil {
		return
	}
	for i, line := range InfoLines(snap) {
		text.Draw(screen, line, br.font, infoPadding+i*infoColumnStep, top+infoTextY+br.font.Metrics().Ascent.Ceil(), br.palette.Text)
	}
}

// InfoLines returns the info bar texts for snap
func InfoLines(snap game.Snapshot) []string {
	return []string{
		fmt.Sprintf("Score: %d/%d", snap.Score, snap.WinScore),
		fmt.Sprintf("Steps: %d/%d", snap.Steps, snap.MaxSteps),
		fmt.Sprintf("Foods: %d", len(snap.Foods)),
	}
}

// Banner returns the end-of-episode message. ok is false while the episode runs.
func Banner(snap game.Snapshot) (msg string, won bool, ok bool) {
	if snap.Phase != states.PhaseTerminal {
		return "", false, false
	}
	if snap.Outcome == states.OutcomeWon {
		return fmt.Sprintf("Victory! Final Score: %d", snap.Score), true, true
	}
	return fmt.Sprintf("Game Over! Final Score: %d", snap.Score), false, true
}
