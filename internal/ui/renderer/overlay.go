package renderer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

var (
	HoverColor  = color.RGBA{255, 255, 255, 64}  // Semi-transparent white
	ArrowColor  = color.RGBA{100, 200, 255, 255} // Light blue
	ValuesColor = color.RGBA{180, 180, 180, 255}
)

// PolicyOverlay draws the greedy action and its Q-values over the board
type PolicyOverlay struct {
	*BoardRenderer

	enabled bool

	hover    core.Coordinate
	hasHover bool

	action core.Action
	values [core.NumActions]float64
	known  bool
}

func NewPolicyOverlay(board *BoardRenderer) *PolicyOverlay {
	return &PolicyOverlay{BoardRenderer: board}
}

func (po *PolicyOverlay) SetEnabled(enabled bool) { po.enabled = enabled }
func (po *PolicyOverlay) Enabled() bool           { return po.enabled }

// SetHover highlights the cell under the cursor. ok=false clears it.
func (po *PolicyOverlay) SetHover(c core.Coordinate, ok bool) {
	po.hover = c
	po.hasHover = ok
}

// SetPolicy records what the agent would do in the current state.
// known is false when the state has never been visited.
func (po *PolicyOverlay) SetPolicy(action core.Action, values [core.NumActions]float64, known bool) {
	po.action = action
	po.values = values
	po.known = known
}

func (po *PolicyOverlay) Draw(screen *ebiten.Image, snap game.Snapshot) {
	po.BoardRenderer.Draw(screen, snap)
	if !po.enabled {
		return
	}

	if po.hasHover && po.hover.IsValid(snap.GridSize) {
		x, y := po.CellOrigin(po.hover)
		size := float32(po.cellSize)
		vector.DrawFilledRect(screen, x, y, size, size, HoverColor, false)
	}

	x0, y0, x1, y1 := po.ArrowSegment(snap.Player, po.action)
	vector.StrokeLine(screen, x0, y0, x1, y1, 3, ArrowColor, true)

	if po.font != nil {
		top := snap.GridSize*po.cellSize + po.infoHeight - 5
		text.Draw(screen, po.ValuesLine(), po.font, infoPadding, top, ValuesColor)
	}
}

// ArrowSegment returns a line from the center of from toward the neighbour in
// direction a, ending at the shared cell edge.
func (po *PolicyOverlay) ArrowSegment(from core.Coordinate, a core.Action) (x0, y0, x1, y1 float32) {
	x0, y0 = po.CellCenter(from)
	offset := core.ActionVectors[a]
	half := float32(po.cellSize) / 2
	return x0, y0, x0 + float32(offset.X)*half, y0 + float32(offset.Y)*half
}

// ValuesLine formats the Q-values of the current state
func (po *PolicyOverlay) ValuesLine() string {
	if !po.known {
		return "Q: unseen state"
	}
	return fmt.Sprintf("Q: up %.1f down %.1f left %.1f right %.1f -> %s",
		po.values[core.ActionUp], po.values[core.ActionDown],
		po.values[core.ActionLeft], po.values[core.ActionRight], po.action)
}
