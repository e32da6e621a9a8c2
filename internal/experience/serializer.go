package experience

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/GhostChaseRL/internal/game"
	"github.com/mitchelldurbincs/GhostChaseRL/internal/game/core"
)

// ObservationSize is the length of an observation feature vector
const ObservationSize = 4

// ErrMalformedRecord is returned when a serialized transition is missing fields
var ErrMalformedRecord = errors.New("malformed transition record")

// Serializer converts transitions to and from protobuf Struct records
type Serializer struct {
	marshal   protojson.MarshalOptions
	unmarshal protojson.UnmarshalOptions
}

// NewSerializer creates a new transition serializer
func NewSerializer() *Serializer {
	return &Serializer{
		marshal:   protojson.MarshalOptions{Multiline: false},
		unmarshal: protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}

// ObservationVector returns the observation scaled to [-1, 1]
func (s *Serializer) ObservationVector(obs game.Observation) []float32 {
	const scale = float32(game.ObservationClip)
	return []float32{
		float32(obs.GhostDX) / scale,
		float32(obs.GhostDY) / scale,
		float32(obs.FoodDX) / scale,
		float32(obs.FoodDY) / scale,
	}
}

// ToStruct builds the protobuf record for t
func (s *Serializer) ToStruct(t Transition) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":               t.ID,
		"run_id":           t.RunID,
		"episode_id":       t.EpisodeID,
		"episode":          t.Episode,
		"step":             t.Step,
		"observation":      observationFields(t.Observation),
		"action":           t.Action.Index(),
		"reward":           t.Reward,
		"next_observation": observationFields(t.Next),
		"done":             t.Done,
		"collected_at":     t.CollectedAt.UTC().Format(time.RFC3339Nano),
	})
}

// FromStruct rebuilds a transition from its protobuf record
func (s *Serializer) FromStruct(st *structpb.Struct) (Transition, error) {
	fields := st.GetFields()
	for _, key := range []string{"episode_id", "observation", "action", "reward", "next_observation", "done"} {
		if _, ok := fields[key]; !ok {
			return Transition{}, fmt.Errorf("missing %q: %w", key, ErrMalformedRecord)
		}
	}

	obs, err := observationFromValue(fields["observation"])
	if err != nil {
		return Transition{}, err
	}
	next, err := observationFromValue(fields["next_observation"])
	if err != nil {
		return Transition{}, err
	}

	t := Transition{
		ID:          fields["id"].GetStringValue(),
		RunID:       fields["run_id"].GetStringValue(),
		EpisodeID:   fields["episode_id"].GetStringValue(),
		Episode:     int(fields["episode"].GetNumberValue()),
		Step:        int(fields["step"].GetNumberValue()),
		Observation: obs,
		Action:      core.Action(int(fields["action"].GetNumberValue())),
		Reward:      fields["reward"].GetNumberValue(),
		Next:        next,
		Done:        fields["done"].GetBoolValue(),
	}

	if ts := fields["collected_at"].GetStringValue(); ts != "" {
		collected, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Transition{}, fmt.Errorf("collected_at: %w", err)
		}
		t.CollectedAt = collected
	}

	if err := t.Action.Validate(); err != nil {
		return Transition{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return t, nil
}

// Marshal encodes t as a single line of protojson
func (s *Serializer) Marshal(t Transition) ([]byte, error) {
	st, err := s.ToStruct(t)
	if err != nil {
		return nil, fmt.Errorf("failed to build record: %w", err)
	}
	return s.marshal.Marshal(st)
}

// Unmarshal decodes one protojson record
func (s *Serializer) Unmarshal(data []byte) (Transition, error) {
	var st structpb.Struct
	if err := s.unmarshal.Unmarshal(data, &st); err != nil {
		return Transition{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return s.FromStruct(&st)
}

func observationFields(obs game.Observation) map[string]interface{} {
	return map[string]interface{}{
		"ghost_dx": obs.GhostDX,
		"ghost_dy": obs.GhostDY,
		"food_dx":  obs.FoodDX,
		"food_dy":  obs.FoodDY,
	}
}

func observationFromValue(v *structpb.Value) (game.Observation, error) {
	st := v.GetStructValue()
	if st == nil {
		return game.Observation{}, fmt.Errorf("observation is not an object: %w", ErrMalformedRecord)
	}
	f := st.GetFields()
	return game.Observation{
		GhostDX: int(f["ghost_dx"].GetNumberValue()),
		GhostDY: int(f["ghost_dy"].GetNumberValue()),
		FoodDX:  int(f["food_dx"].GetNumberValue()),
		FoodDY:  int(f["food_dy"].GetNumberValue()),
	}, nil
}
