package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

func TestActionForKeys(t *testing.T) {
	tests := []struct {
		name                  string
		up, down, left, right bool
		want                  core.Action
		ok                    bool
	}{
		{"None", false, false, false, false, 0, false},
		{"Up", true, false, false, false, core.ActionUp, true},
		{"Down", false, true, false, false, core.ActionDown, true},
		{"Left", false, false, true, false, core.ActionLeft, true},
		{"Right", false, false, false, true, core.ActionRight, true},
		{"UpWinsOverRight", true, false, false, true, core.ActionUp, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ActionForKeys(tt.up, tt.down, tt.left, tt.right)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHumanController(t *testing.T) {
	h := NewHumanController()

	_, ok := h.NextAction(game.Observation{})
	assert.False(t, ok)

	h.Press(core.ActionLeft, true)
	h.Press(core.ActionDown, true)
	h.Press(core.ActionRight, false)

	action, ok := h.NextAction(game.Observation{})
	assert.True(t, ok)
	assert.Equal(t, core.ActionDown, action, "latest press wins")

	_, ok = h.NextAction(game.Observation{})
	assert.False(t, ok, "a press is consumed once")
}
