// Package trainingserver exposes a running training session over gRPC:
// progress snapshots, a progress stream and recently recorded transitions.
package trainingserver

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/experience"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/training"
)

// Request limits
const (
	DefaultTransitionLimit = 100
	MaxTransitionLimit     = 10000
	DefaultWatchInterval   = time.Second
	MinWatchInterval       = 10 * time.Millisecond
)

// ProgressSource reports the state of a training run
type ProgressSource interface {
	Snapshot() training.Progress
}

// TransitionSource returns the most recently recorded transitions
type TransitionSource interface {
	Recent(ctx context.Context, n int) ([]experience.Transition, error)
}

// Server implements TrainingServiceServer
type Server struct {
	progress    ProgressSource
	transitions TransitionSource
	serializer  *experience.Serializer
	logger      zerolog.Logger
}

// NewServer creates a training service. transitions may be nil when
// experience collection is disabled.
func NewServer(progress ProgressSource, transitions TransitionSource, logger zerolog.Logger) *Server {
	return &Server{
		progress:    progress,
		transitions: transitions,
		serializer:  experience.NewSerializer(),
		logger:      logger.With().Str("component", "TrainingServer").Logger(),
	}
}

// GetProgress returns the current progress snapshot
func (s *Server) GetProgress(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := ProgressToStruct(s.progress.Snapshot())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode progress: %v", err)
	}
	return st, nil
}

// GetTransitions returns up to req.limit of the most recent transitions,
// oldest first. Buffered transitions are topped up with flushed ones.
func (s *Server) GetTransitions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.transitions == nil {
		return nil, status.Error(codes.Unavailable, "experience collection is disabled")
	}

	limit, err := intField(req, "limit", DefaultTransitionLimit)
	if err != nil {
		return nil, err
	}
	if limit < 0 || limit > MaxTransitionLimit {
		return nil, status.Errorf(codes.InvalidArgument, "limit must be in [0,%d], got %d", MaxTransitionLimit, limit)
	}

	latest, err := s.transitions.Recent(ctx, limit)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "load transitions: %v", err)
	}
	records := make([]*structpb.Value, 0, len(latest))
	for _, t := range latest {
		st, err := s.serializer.ToStruct(t)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode transition %s: %v", t.ID, err)
		}
		records = append(records, structpb.NewStructValue(st))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"count":       structpb.NewNumberValue(float64(len(records))),
		"transitions": structpb.NewListValue(&structpb.ListValue{Values: records}),
	}}, nil
}

// WatchProgress sends a snapshot every req.interval_ms until the run has
// finished or the client goes away.
func (s *Server) WatchProgress(req *structpb.Struct, stream ProgressStream) error {
	ms, err := intField(req, "interval_ms", int(DefaultWatchInterval/time.Millisecond))
	if err != nil {
		return err
	}
	interval := max(time.Duration(ms)*time.Millisecond, MinWatchInterval)

	ctx := stream.Context()
	s.logger.Debug().Dur("interval", interval).Msg("Progress watch started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p := s.progress.Snapshot()
		st, err := ProgressToStruct(p)
		if err != nil {
			return status.Errorf(codes.Internal, "encode progress: %v", err)
		}
		if err := stream.Send(st); err != nil {
			return err
		}
		if p.TotalEpisodes > 0 && p.EpisodesCompleted >= p.TotalEpisodes {
			s.logger.Debug().Msg("Progress watch finished with the run")
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ProgressToStruct encodes a progress snapshot
func ProgressToStruct(p training.Progress) (*structpb.Struct, error) {
	outcomes := make(map[string]interface{}, len(p.Outcomes))
	for k, n := range p.Outcomes {
		outcomes[k] = n
	}

	fields := map[string]interface{}{
		"run_id":             p.RunID,
		"total_episodes":     p.TotalEpisodes,
		"episodes_completed": p.EpisodesCompleted,
		"fraction":           p.Fraction(),
		"last_score":         p.LastScore,
		"best_score":         p.BestScore,
		"recent_mean_score":  p.RecentMeanScore,
		"recent_mean_reward": p.RecentMeanReward,
		"epsilon":            p.Epsilon,
		"outcomes":           outcomes,
	}
	if !p.StartedAt.IsZero() {
		fields["started_at"] = p.StartedAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(fields)
}

func intField(req *structpb.Struct, name string, fallback int) (int, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return fallback, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	return int(n.NumberValue), nil
}
