package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// Quick terminal demo: a random player on a small board, one frame per step
func main() {
	size := flag.Int("size", 8, "Grid size")
	steps := flag.Int("steps", 50, "Maximum steps to play")
	seed := flag.Int64("seed", 0, "Random seed (0 for the clock)")
	plain := flag.Bool("plain", false, "Disable ANSI colors")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	fmt.Printf("Game seed: %d\n", *seed)
	rng := rand.New(rand.NewSource(*seed))

	cfg := game.DefaultConfig()
	cfg.GridSize = *size
	cfg.MinDistance = min(cfg.MinDistance, *size/2)
	cfg.MaxSteps = *steps

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	env, err := game.New(cfg, rng, logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid game: %v\n", err)
		os.Exit(1)
	}

	env.Reset()
	fmt.Printf("Initial board:\n%s\n", env.Board(!*plain))

	for {
		action := core.AllActions[rng.Intn(core.NumActions)]
		_, reward, done, err := env.Step(action)
		if err != nil {
			fmt.Fprintf(os.Stderr, "step %d: %v\n", env.Steps(), err)
			os.Exit(1)
		}
		fmt.Printf("Step %d: %s (reward %+.2f)\n%s\n", env.Steps(), action, reward, env.Board(!*plain))
		if done {
			break
		}
	}

	fmt.Printf("Episode over: %s with score %d after %d steps\n", env.Outcome(), env.Score(), env.Steps())
	for _, tr := range env.PhaseHistory() {
		fmt.Printf("  %s -> %s (%s)\n", tr.From, tr.To, tr.Reason)
	}
}
