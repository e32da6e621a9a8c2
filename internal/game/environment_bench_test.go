package game

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/testutil"
)

func BenchmarkStep(b *testing.B) {
	for _, size := range []int{8, 15, 30} {
		b.Run(fmt.Sprintf("Grid_%dx%d", size, size), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.GridSize = size
			env, err := New(cfg, testutil.NewTestRNG(1), zerolog.Nop(), nil)
			if err != nil {
				b.Fatal(err)
			}
			env.Reset()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, done, _ := env.Step(core.AllActions[i%core.NumActions])
				if done {
					env.Reset()
				}
			}
		})
	}
}

func BenchmarkReset(b *testing.B) {
	env, err := New(DefaultConfig(), testutil.NewTestRNG(1), zerolog.Nop(), nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		env.Reset()
	}
}
