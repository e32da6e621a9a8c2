package trainingserver

import (
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/states"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

const bufSize = 1024 * 1024

// fakeProgress completes one episode per Snapshot call
type fakeProgress struct {
	total   int
	calls   atomic.Int32
	explode bool
}

func (f *fakeProgress) Snapshot() training.Progress {
	if f.explode {
		panic("snapshot exploded")
	}
	n := int(f.calls.Add(1))
	return training.Progress{
		RunID:             "run-1",
		TotalEpisodes:     f.total,
		EpisodesCompleted: min(n, f.total),
		BestScore:         20,
		Epsilon:           0.25,
		Outcomes:          map[string]int{states.OutcomeCaught: n},
		StartedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type fakeTransitions []experience.Transition

func (f fakeTransitions) Recent(_ context.Context, n int) ([]experience.Transition, error) {
	if n >= len(f) {
		return f, nil
	}
	return f[len(f)-n:], nil
}

type brokenTransitions struct{}

func (brokenTransitions) Recent(context.Context, int) ([]experience.Transition, error) {
	return nil, errors.New("transition files unreadable")
}

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, progress ProgressSource, transitions TransitionSource) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	s, _ := NewGRPCServer(zerolog.Nop(), false)
	RegisterTrainingServiceServer(s, NewServer(progress, transitions, zerolog.Nop()))

	go func() {
		if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
	})
	return conn
}

func testTransitions(n int) fakeTransitions {
	out := make(fakeTransitions, n)
	for i := range out {
		out[i] = experience.Transition{
			ID:          "t" + string(rune('a'+i)),
			RunID:       "run-1",
			EpisodeID:   "ep-1",
			Step:        i + 1,
			Observation: game.Observation{GhostDX: 1},
			Action:      core.ActionLeft,
			Reward:      -0.05,
			Next:        game.Observation{GhostDX: 2},
			Done:        i == n-1,
			CollectedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	}
	return out
}

func TestGetProgress(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 10}, nil))

	resp, err := client.GetProgress(context.Background())
	require.NoError(t, err)

	fields := resp.GetFields()
	assert.Equal(t, "run-1", fields["run_id"].GetStringValue())
	assert.Equal(t, 10.0, fields["total_episodes"].GetNumberValue())
	assert.Equal(t, 1.0, fields["episodes_completed"].GetNumberValue())
	assert.InDelta(t, 0.1, fields["fraction"].GetNumberValue(), 1e-9)
	assert.Equal(t, 0.25, fields["epsilon"].GetNumberValue())
	assert.Equal(t, 1.0, fields["outcomes"].GetStructValue().GetFields()[states.OutcomeCaught].GetNumberValue())
	assert.Equal(t, "2026-01-02T03:04:05Z", fields["started_at"].GetStringValue())
}

func TestGetTransitions(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 1}, testTransitions(5)))
	ctx := context.Background()

	t.Run("DefaultLimit", func(t *testing.T) {
		resp, err := client.GetTransitions(ctx, &structpb.Struct{})
		require.NoError(t, err)
		assert.Equal(t, 5.0, resp.GetFields()["count"].GetNumberValue())
	})

	t.Run("Limit", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]interface{}{"limit": 2})
		require.NoError(t, err)
		resp, err := client.GetTransitions(ctx, req)
		require.NoError(t, err)

		records := resp.GetFields()["transitions"].GetListValue().GetValues()
		require.Len(t, records, 2)

		last, err := experience.NewSerializer().FromStruct(records[1].GetStructValue())
		require.NoError(t, err)
		assert.Equal(t, 5, last.Step)
		assert.True(t, last.Done)
		assert.Equal(t, core.ActionLeft, last.Action)
	})

	t.Run("ZeroLimit", func(t *testing.T) {
		req, err := structpb.NewStruct(map[string]interface{}{"limit": 0})
		require.NoError(t, err)
		resp, err := client.GetTransitions(ctx, req)
		require.NoError(t, err)
		assert.Zero(t, resp.GetFields()["count"].GetNumberValue())
		assert.Empty(t, resp.GetFields()["transitions"].GetListValue().GetValues())
	})

	t.Run("InvalidLimit", func(t *testing.T) {
		for _, limit := range []interface{}{-3, MaxTransitionLimit + 1, "ten"} {
			req, err := structpb.NewStruct(map[string]interface{}{"limit": limit})
			require.NoError(t, err)
			_, err = client.GetTransitions(ctx, req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err), "limit %v", limit)
		}
	})
}

func TestGetTransitions_IncludesFlushed(t *testing.T) {
	config := experience.DefaultPersistenceConfig()
	config.Type = experience.PersistenceTypeFile
	config.BaseDir = t.TempDir()
	fp, err := experience.NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)

	collector := experience.NewCollector(2, fp, zerolog.Nop())
	defer collector.Close(context.Background())
	for _, tr := range testTransitions(5) {
		collector.Record(tr)
	}
	require.Equal(t, 1, collector.Pending())

	client := NewClient(setupTestServer(t, &fakeProgress{total: 1}, collector))
	req, err := structpb.NewStruct(map[string]interface{}{"limit": 3})
	require.NoError(t, err)
	resp, err := client.GetTransitions(context.Background(), req)
	require.NoError(t, err)

	records := resp.GetFields()["transitions"].GetListValue().GetValues()
	require.Len(t, records, 3)
	serializer := experience.NewSerializer()
	for i, want := range []int{3, 4, 5} {
		tr, err := serializer.FromStruct(records[i].GetStructValue())
		require.NoError(t, err)
		assert.Equal(t, want, tr.Step, "record %d", i)
	}
}

func TestGetTransitions_SourceError(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 1}, brokenTransitions{}))

	_, err := client.GetTransitions(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestGetTransitions_Disabled(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 1}, nil))

	_, err := client.GetTransitions(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestWatchProgress(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 3}, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := structpb.NewStruct(map[string]interface{}{"interval_ms": 10})
	require.NoError(t, err)
	stream, err := client.WatchProgress(ctx, req)
	require.NoError(t, err)

	var completed []float64
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		completed = append(completed, msg.GetFields()["episodes_completed"].GetNumberValue())
	}
	assert.Equal(t, []float64{1, 2, 3}, completed, "stream ends once the run is complete")
}

func TestWatchProgress_ClientCancel(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{total: 1 << 30}, nil))
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := client.WatchProgress(ctx, &structpb.Struct{})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	cancel()
	_, err = stream.Recv()
	assert.Equal(t, codes.Canceled, status.Code(err))
}

func TestRecoveryInterceptor(t *testing.T) {
	client := NewClient(setupTestServer(t, &fakeProgress{explode: true}, nil))

	_, err := client.GetProgress(context.Background())
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestHealthService(t *testing.T) {
	conn := setupTestServer(t, &fakeProgress{total: 1}, nil)

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
