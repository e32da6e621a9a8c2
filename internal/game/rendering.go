package game

import (
	"fmt"
	"strings"

	"github.com/logrusorgru/aurora"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Board symbols
const (
	EmptySymbol  = "·"
	PlayerSymbol = "P"
	GhostSymbol  = "G"
	FoodSymbol   = "o"
	CaughtSymbol = "X"
)

// Board returns a text rendering of the grid. ANSI colors are emitted only
// when colors is true.
func (e *Environment) Board(colors bool) string {
	au := aurora.NewAurora(colors)
	size := e.cfg.GridSize

	var sb strings.Builder
	sb.Grow((size*3 + 8) * (size + 4))

	fmt.Fprintf(&sb, "score %d/%d  steps %d/%d  phase %s\n",
		e.score, e.cfg.WinScore, e.steps, e.cfg.MaxSteps, e.Phase())

	sb.WriteString("   ")
	for x := 0; x < size; x++ {
		fmt.Fprintf(&sb, "%2d", x)
	}
	sb.WriteString("\n")

	for y := 0; y < size; y++ {
		fmt.Fprintf(&sb, "%2d ", y)
		for x := 0; x < size; x++ {
			sb.WriteString(" ")
			sb.WriteString(e.cellDisplay(au, core.Coordinate{X: x, Y: y}))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n%s=player %s=ghost %s=food %s=caught\n",
		PlayerSymbol, GhostSymbol, FoodSymbol, CaughtSymbol)

	return sb.String()
}

func (e *Environment) cellDisplay(au aurora.Aurora, c core.Coordinate) string {
	ghostHere := e.hasGhost && e.ghost == c

	switch {
	case ghostHere && e.player == c:
		return au.Bold(au.Red(CaughtSymbol)).String()
	case e.player == c:
		return au.Yellow(PlayerSymbol).String()
	case ghostHere:
		return au.Red(GhostSymbol).String()
	case core.Contains(e.foods, c):
		return au.Green(FoodSymbol).String()
	default:
		return au.BrightBlack(EmptySymbol).String()
	}
}
