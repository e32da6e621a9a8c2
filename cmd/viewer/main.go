package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/app"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/common"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/config"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/ui"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/ui/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	episodes := flag.Int("episodes", -1, "Training episodes before the window opens (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Random seed, 0 for the clock (-1 to use config default)")
	human := flag.Bool("human", false, "Play with the arrow keys instead of watching the agent")
	overlay := flag.Bool("overlay", false, "Start with the Q-value overlay visible (toggle with O)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *episodes >= 0 {
		config.Set("training.episodes", *episodes)
	}
	if *seed >= 0 {
		config.Set("training.seed", *seed)
	}
	cfg := config.Get()

	logger := app.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	session, err := app.NewSession(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create session")
	}
	defer session.Close(context.Background())

	var controller ui.Controller = ui.NewAgentController(session.Agent)
	if *human {
		controller = ui.NewHumanController()
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		logger.Info().Int("episodes", cfg.Training.Episodes).Msg("=== Training Start ===")
		if _, err := session.Trainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			stop()
			logger.Fatal().Err(err).Msg("Training failed")
		}
		stop()
		logger.Info().Int("q_states", session.Agent.Table().Len()).Msg("=== Training Complete ===")
	}

	colors := cfg.UI.Colors
	opts := ui.Options{
		CellSize:       cfg.UI.CellSize,
		InfoHeight:     cfg.UI.InfoHeight,
		StepsPerSecond: cfg.UI.TicksPerSecond,
		EndPauseMs:     cfg.UI.EndPauseMs,
		ShowOverlay:    *overlay,
		Palette: renderer.Palette{
			Player:     common.RGB(colors.Player),
			Ghost:      common.RGB(colors.Ghost),
			Food:       common.RGB(colors.Food),
			Background: common.RGB(colors.Background),
			GridLines:  common.RGB(colors.GridLines),
			Text:       common.RGB(colors.Text),
			Victory:    common.RGB(colors.Victory),
			Defeat:     common.RGB(colors.Defeat),
		},
	}

	viewer, err := ui.NewViewer(session.Env, controller, session.Agent, opts, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create viewer")
	}

	width, height := viewer.ScreenSize()
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(cfg.UI.WindowTitle)

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal().Err(err).Msg("Viewer exited")
	}
	logger.Info().Int("episodes", viewer.Episodes()).Msg("Viewer closed")
}
