package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// HumanController lets a person drive the player with the arrow keys or WASD.
// A key press is held until the next paced step consumes it.
type HumanController struct {
	pending core.Action
	ready   bool
}

func NewHumanController() *HumanController {
	return &HumanController{}
}

// Poll reads this tick's key presses
func (h *HumanController) Poll() {
	justPressed := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if inpututil.IsKeyJustPressed(k) {
				return true
			}
		}
		return false
	}
	h.Press(ActionForKeys(
		justPressed(ebiten.KeyArrowUp, ebiten.KeyW),
		justPressed(ebiten.KeyArrowDown, ebiten.KeyS),
		justPressed(ebiten.KeyArrowLeft, ebiten.KeyA),
		justPressed(ebiten.KeyArrowRight, ebiten.KeyD),
	))
}

// Press queues action. A later press replaces an unconsumed one.
func (h *HumanController) Press(action core.Action, ok bool) {
	if !ok {
		return
	}
	h.pending = action
	h.ready = true
}

// NextAction consumes the queued action, if any
func (h *HumanController) NextAction(game.Observation) (core.Action, bool) {
	if !h.ready {
		return 0, false
	}
	h.ready = false
	return h.pending, true
}

// ActionForKeys maps pressed direction keys to an action. When several are
// pressed the first in up, down, left, right order wins.
func ActionForKeys(up, down, left, right bool) (core.Action, bool) {
	switch {
	case up:
		return core.ActionUp, true
	case down:
		return core.ActionDown, true
	case left:
		return core.ActionLeft, true
	case right:
		return core.ActionRight, true
	}
	return 0, false
}
