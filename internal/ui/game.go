// Package ui shows a trained agent (or a person at the keyboard) playing the
// ghost chase in an Ebitengine window.
package ui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/agent"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/ui/input"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/ui/renderer"
)

// Environment is the part of game.Environment the viewer drives
type Environment interface {
	Reset() game.Observation
	Step(action core.Action) (game.Observation, float64, bool, error)
	Observation() game.Observation
	Snapshot() game.Snapshot
}

// Policy picks actions for the agent controller
type Policy interface {
	Greedy(obs game.Observation) core.Action
}

// ValueInspector exposes Q-values for the policy overlay
type ValueInspector interface {
	Inspect(obs game.Observation) ([core.NumActions]float64, bool)
}

// Controller decides the player's next action. ok=false skips the step.
type Controller interface {
	Poll()
	NextAction(obs game.Observation) (core.Action, bool)
}

// AgentController plays the greedy policy
type AgentController struct {
	policy Policy
}

func NewAgentController(policy Policy) *AgentController {
	return &AgentController{policy: policy}
}

func (a *AgentController) Poll() {}

func (a *AgentController) NextAction(obs game.Observation) (core.Action, bool) {
	return a.policy.Greedy(obs), true
}

// Options configures the viewer window
type Options struct {
	CellSize       int
	InfoHeight     int
	StepsPerSecond int
	EndPauseMs     int
	Palette        renderer.Palette
	ShowOverlay    bool
}

// DefaultOptions matches the stock configuration
func DefaultOptions() Options {
	return Options{
		CellSize:       40,
		InfoHeight:     50,
		StepsPerSecond: 10,
		EndPauseMs:     2000,
		Palette:        renderer.DefaultPalette(),
	}
}

// Viewer implements ebiten.Game
type Viewer struct {
	env        Environment
	controller Controller
	inspector  ValueInspector
	overlay    *renderer.PolicyOverlay
	input      *input.Handler
	pacer      *Pacer
	logger     zerolog.Logger

	gridSize     int
	episodes     int
	totalReward  float64
	episodeEnded bool
}

// NewViewer resets env and prepares the window. inspector may be nil.
func NewViewer(env Environment, controller Controller, inspector ValueInspector, opts Options, logger zerolog.Logger) (*Viewer, error) {
	if opts.CellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", opts.CellSize)
	}
	if opts.StepsPerSecond <= 0 {
		return nil, fmt.Errorf("steps per second must be positive, got %d", opts.StepsPerSecond)
	}

	board := renderer.NewBoardRenderer(opts.CellSize, opts.InfoHeight, basicfont.Face7x13, opts.Palette)
	v := &Viewer{
		env:        env,
		controller: controller,
		inspector:  inspector,
		overlay:    renderer.NewPolicyOverlay(board),
		input:      input.NewHandler(),
		pacer:      NewPacer(ebiten.DefaultTPS, opts.StepsPerSecond, opts.EndPauseMs),
		logger:     logger.With().Str("component", "Viewer").Logger(),
	}
	v.input.SetOverlay(opts.ShowOverlay && inspector != nil)

	v.env.Reset()
	v.gridSize = v.env.Snapshot().GridSize
	v.refreshPolicy()
	return v, nil
}

// Update proceeds the game state.
func (v *Viewer) Update() error {
	v.input.Update()
	v.controller.Poll()
	return v.tick()
}

func (v *Viewer) tick() error {
	if v.input.QuitRequested() {
		return ebiten.Termination
	}
	if v.input.TakeReset() {
		v.reset()
		return nil
	}

	v.overlay.SetEnabled(v.input.OverlayEnabled() && v.inspector != nil)
	hx, hy, ok := v.input.GetHoveredCell(v.overlay.CellSize(), v.gridSize)
	v.overlay.SetHover(core.Coordinate{X: hx, Y: hy}, ok)

	terminal := v.env.Snapshot().Phase == states.PhaseTerminal
	switch v.pacer.Tick(terminal) {
	case TickReset:
		v.reset()
	case TickStep:
		if v.input.IsPaused() && !v.input.TakeStep() {
			return nil
		}
		if err := v.step(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) step() error {
	action, ok := v.controller.NextAction(v.env.Observation())
	if !ok {
		return nil
	}

	_, reward, done, err := v.env.Step(action)
	if err != nil {
		return fmt.Errorf("viewer step: %w", err)
	}
	v.totalReward += reward
	v.refreshPolicy()

	if done && !v.episodeEnded {
		v.episodeEnded = true
		v.episodes++
		snap := v.env.Snapshot()
		v.logger.Info().
			Int("episode", v.episodes).
			Int("score", snap.Score).
			Int("steps", snap.Steps).
			Float64("total_reward", v.totalReward).
			Str("outcome", snap.Outcome).
			Msg("Episode finished")
	}
	return nil
}

func (v *Viewer) reset() {
	v.env.Reset()
	v.pacer.Restart()
	v.totalReward = 0
	v.episodeEnded = false
	v.refreshPolicy()
}

func (v *Viewer) refreshPolicy() {
	if v.inspector == nil {
		return
	}
	obs := v.env.Observation()
	values, known := v.inspector.Inspect(obs)
	row := agent.Values(values)
	v.overlay.SetPolicy(row.Argmax(), values, known)
}

// Episodes returns how many episodes finished in the window
func (v *Viewer) Episodes() int {
	return v.episodes
}

// Draw renders the game screen.
func (v *Viewer) Draw(screen *ebiten.Image) {
	v.overlay.Draw(screen, v.env.Snapshot())
}

// Layout defines the Ebitengine screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return v.overlay.ScreenSize(v.gridSize)
}

// ScreenSize returns the window size the viewer wants
func (v *Viewer) ScreenSize() (width, height int) {
	return v.overlay.ScreenSize(v.gridSize)
}
