package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Keys is the set of viewer keys pressed during one update
type Keys struct {
	TogglePause   bool
	SingleStep    bool
	Reset         bool
	ToggleOverlay bool
	Quit          bool
}

// Handler turns keyboard and mouse input into viewer commands
type Handler struct {
	mouseX, mouseY int

	paused       bool
	overlay      bool
	stepPending  bool
	resetPending bool
	quit         bool
}

func NewHandler() *Handler {
	return &Handler{}
}

// Update polls Ebiten for this tick's input
func (h *Handler) Update() {
	h.mouseX, h.mouseY = GetCursorPosition()
	h.Apply(Keys{
		TogglePause:   inpututil.IsKeyJustPressed(ebiten.KeySpace),
		SingleStep:    inpututil.IsKeyJustPressed(ebiten.KeyN),
		Reset:         inpututil.IsKeyJustPressed(ebiten.KeyR),
		ToggleOverlay: inpututil.IsKeyJustPressed(ebiten.KeyO),
		Quit:          inpututil.IsKeyJustPressed(ebiten.KeyEscape),
	})
}

// Apply folds the pressed keys into the handler state
func (h *Handler) Apply(k Keys) {
	if k.TogglePause {
		h.paused = !h.paused
	}
	// Single stepping only makes sense while paused
	if k.SingleStep && h.paused {
		h.stepPending = true
	}
	if k.Reset {
		h.resetPending = true
	}
	if k.ToggleOverlay {
		h.overlay = !h.overlay
	}
	if k.Quit {
		h.quit = true
	}
}

func (h *Handler) IsPaused() bool       { return h.paused }
func (h *Handler) OverlayEnabled() bool { return h.overlay }
func (h *Handler) QuitRequested() bool  { return h.quit }

func (h *Handler) SetOverlay(enabled bool) { h.overlay = enabled }

// TakeStep reports and clears a pending single step
func (h *Handler) TakeStep() bool {
	pending := h.stepPending
	h.stepPending = false
	return pending
}

// TakeReset reports and clears a pending reset
func (h *Handler) TakeReset() bool {
	pending := h.resetPending
	h.resetPending = false
	return pending
}

// GetHoveredCell returns the grid cell under the cursor
func (h *Handler) GetHoveredCell(cellSize, gridSize int) (x, y int, ok bool) {
	return ScreenToCell(h.mouseX, h.mouseY, cellSize, gridSize)
}
