package experience

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPersistence struct {
	NullPersistence
	batches [][]Transition
	err     error
	closed  bool
}

func (m *memoryPersistence) Write(ctx context.Context, transitions []Transition) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, transitions)
	return nil
}

func (m *memoryPersistence) Close() error {
	m.closed = true
	return nil
}

func TestCollector_FlushesInBatches(t *testing.T) {
	store := &memoryPersistence{}
	c := NewCollector(3, store, zerolog.Nop())

	for i := 0; i < 7; i++ {
		c.Record(createTestTransition("", i))
	}

	require.Len(t, store.batches, 2)
	assert.Len(t, store.batches[0], 3)
	assert.Len(t, store.batches[1], 3)
	assert.Equal(t, 1, c.Pending())

	for _, tr := range store.batches[0] {
		assert.NotEmpty(t, tr.ID, "collector assigns IDs")
		assert.False(t, tr.CollectedAt.IsZero())
	}

	c.EndEpisode("test-episode")
	require.NoError(t, c.Close(context.Background()))
	require.Len(t, store.batches, 3)
	assert.Len(t, store.batches[2], 1)
	assert.True(t, store.closed)
}

func TestCollector_KeepsExplicitIDs(t *testing.T) {
	c := NewCollector(10, nil, zerolog.Nop())
	c.Record(createTestTransition("fixed", 0))

	latest, err := c.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "fixed", latest[0].ID)
}

func TestCollector_FlushError(t *testing.T) {
	boom := errors.New("disk full")
	store := &memoryPersistence{err: boom}
	c := NewCollector(2, store, zerolog.Nop())

	c.Record(createTestTransition("a", 0))
	c.Record(createTestTransition("b", 1))

	assert.Equal(t, int64(1), c.FlushErrors())
	assert.Equal(t, 2, c.Pending(), "failed batch stays buffered")

	store.err = nil
	require.NoError(t, c.Flush(context.Background()))
	assert.Zero(t, c.Pending())
	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 2)
	assert.Equal(t, "a", store.batches[0][0].ID)
	assert.Equal(t, "b", store.batches[0][1].ID)

	store.err = boom
	c.Record(createTestTransition("c", 2))
	assert.ErrorIs(t, c.Close(context.Background()), boom)
	assert.Equal(t, 1, c.Pending())
	assert.Equal(t, int64(2), c.FlushErrors())
}

func TestCollector_RecentReadsFlushed(t *testing.T) {
	config := newFileConfig(t)
	fp, err := NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)

	c := NewCollector(3, fp, zerolog.Nop())
	defer c.Close(context.Background())
	for i := 0; i < 7; i++ {
		c.Record(createTestTransition("", i))
	}
	require.Equal(t, 1, c.Pending())

	recent, err := c.Recent(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	for i, tr := range recent {
		assert.Equal(t, 3+i, tr.Step)
	}

	all, err := c.Recent(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	none, err := c.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCollector_WritesToFiles(t *testing.T) {
	config := newFileConfig(t)
	fp, err := NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)

	c := NewCollector(2, fp, zerolog.Nop())
	for i := 0; i < 5; i++ {
		c.Record(createTestTransition("", i))
	}
	require.NoError(t, c.Close(context.Background()))

	reader, err := NewFilePersistence(config, zerolog.Nop())
	require.NoError(t, err)
	defer reader.Close()

	got, err := reader.Read(context.Background(), "test-episode", 0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
