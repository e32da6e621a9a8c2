package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/app"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/config"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/grpc/trainingserver"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/monitoring"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/report"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	environment := flag.String("env", "", "Merge config.<env>.yaml over the base config")
	episodes := flag.Int("episodes", -1, "Training episodes (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Random seed, 0 for the clock (-1 to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	healthAddr := flag.String("health-addr", "", "gRPC listen address for health and progress (empty to use config default)")
	reportPath := flag.String("report", "", "Write an HTML training report to this path (empty to use config default)")
	experienceDir := flag.String("experience-dir", "", "Record transitions as JSONL under this directory")
	evalEpisodes := flag.Int("eval", -1, "Greedy evaluation episodes after training (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	noBoard := flag.Bool("no-board", false, "Skip printing the final demo board")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if err := config.LoadEnvironmentConfig(*environment); err != nil {
		log.Fatal().Err(err).Str("env", *environment).Msg("Failed to load environment config")
	}

	// Flags override config
	if *episodes >= 0 {
		config.Set("training.episodes", *episodes)
	}
	if *seed >= 0 {
		config.Set("training.seed", *seed)
	}
	if *logLevel != "" {
		config.Set("logging.level", *logLevel)
	}
	if *healthAddr != "" {
		config.Set("server.health_addr", *healthAddr)
	}
	if *reportPath != "" {
		config.Set("report.path", *reportPath)
	}
	if *experienceDir != "" {
		config.Set("experience.enabled", true)
		config.Set("experience.dir", *experienceDir)
	}
	if *evalEpisodes >= 0 {
		config.Set("training.eval_episodes", *evalEpisodes)
	}

	cfg := config.Get()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := app.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	log.Logger = logger

	if path := config.ConfigFilePath(); path != "" {
		config.WatchConfig(logger, func(c *config.Config) {
			zerolog.SetGlobalLevel(app.ParseLevel(c.Logging.Level))
			logger.Info().Str("file", path).Str("log_level", c.Logging.Level).Msg("Config reloaded")
		})
	}

	if err := run(cfg, logger, *enableReflection, !*noBoard); err != nil {
		logger.Fatal().Err(err).Msg("Training failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger, enableReflection, printBoard bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := app.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to close experience collector")
		}
	}()

	logger.Info().
		Int64("seed", session.Seed).
		Int("grid_size", cfg.Game.GridSize).
		Int("episodes", cfg.Training.Episodes).
		Str("run_id", session.Trainer.RunID()).
		Bool("experience", session.Collector != nil).
		Msg("=== Training Start ===")

	if cfg.Server.HealthAddr != "" {
		shutdown, err := serve(cfg.Server.HealthAddr, session, logger, enableReflection)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if cfg.Training.MonitorInterval > 0 {
		monitor := monitoring.NewProgressMonitor(session.Trainer, time.Duration(cfg.Training.MonitorInterval)*time.Second, logger)
		monitor.Start()
		defer monitor.Stop()
	}

	history, err := session.Trainer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Int("episodes", len(history)).Msg("=== Training Complete ===")

	if cfg.Report.Path != "" && len(history) > 0 {
		if err := report.WriteFile(cfg.Report.Path, history, cfg.ReportOptions()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info().Str("path", cfg.Report.Path).Msg("Training report written")
	}

	if ctx.Err() != nil {
		return nil
	}

	if cfg.Training.EvalEpisodes > 0 {
		result, err := training.Evaluate(ctx, session.Env, session.Agent, cfg.Training.EvalEpisodes)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("evaluate: %w", err)
		}
		logger.Info().
			Int("episodes", result.Episodes).
			Float64("mean_score", result.MeanScore).
			Float64("mean_reward", result.MeanReward).
			Float64("mean_steps", result.MeanSteps).
			Float64("win_rate", result.WinRate()).
			Int("wins", result.Wins).
			Int("catches", result.Catches).
			Int("timeouts", result.Timeouts).
			Int("best_score", result.BestScore).
			Int("q_states", session.Agent.Table().Len()).
			Msg("Greedy evaluation")
	}

	if printBoard {
		if _, err := training.Evaluate(ctx, session.Env, session.Agent, 1); err == nil {
			fmt.Println(session.Env.Board(true))
		}
	}
	return nil
}

// serve starts the gRPC health and training services. The returned func
// marks the server NOT_SERVING and stops it gracefully.
func serve(addr string, session *app.Session, logger zerolog.Logger, enableReflection bool) (func(), error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	grpcServer, healthServer := trainingserver.NewGRPCServer(logger, enableReflection)

	var transitions trainingserver.TransitionSource
	if session.Collector != nil {
		transitions = session.Collector
	}
	trainingserver.RegisterTrainingServiceServer(grpcServer, trainingserver.NewServer(session.Trainer, transitions, logger))
	healthServer.SetServingStatus(trainingserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	go func() {
		logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()

	return func() {
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(trainingserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		logger.Info().Msg("Gracefully stopping gRPC server")

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			// Open progress streams outlive a cancelled run
			grpcServer.Stop()
		}
	}, nil
}
