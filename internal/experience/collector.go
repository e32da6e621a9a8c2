package experience

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Collector buffers transitions and flushes them to a PersistenceLayer in batches
type Collector struct {
	mu          sync.Mutex
	buffer      *Buffer
	persistence PersistenceLayer
	batchSize   int
	logger      zerolog.Logger

	episodeCounts map[string]int
	flushErrors   int64
}

// NewCollector creates a collector. A nil persistence layer keeps transitions
// in memory only, subject to the buffer's overwrite policy.
func NewCollector(batchSize int, persistence PersistenceLayer, logger zerolog.Logger) *Collector {
	if batchSize <= 0 {
		batchSize = DefaultPersistenceConfig().BatchSize
	}
	if persistence == nil {
		persistence = &NullPersistence{}
	}

	logger = logger.With().Str("component", "experience_collector").Logger()
	return &Collector{
		buffer:        NewBuffer(batchSize*2, logger),
		persistence:   persistence,
		batchSize:     batchSize,
		logger:        logger,
		episodeCounts: make(map[string]int),
	}
}

// Record implements Recorder
func (c *Collector) Record(t Transition) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CollectedAt.IsZero() {
		t.CollectedAt = time.Now()
	}

	if err := c.buffer.Add(t); err != nil {
		c.logger.Warn().Err(err).Str("episode_id", t.EpisodeID).Msg("Dropping transition")
		return
	}

	c.mu.Lock()
	c.episodeCounts[t.EpisodeID]++
	c.mu.Unlock()

	if c.buffer.Size() >= c.batchSize {
		if err := c.Flush(context.Background()); err != nil {
			c.logger.Error().Err(err).Msg("Failed to flush transitions")
		}
	}
}

// EndEpisode implements Recorder
func (c *Collector) EndEpisode(episodeID string) {
	c.mu.Lock()
	count := c.episodeCounts[episodeID]
	delete(c.episodeCounts, episodeID)
	c.mu.Unlock()

	c.logger.Trace().
		Str("episode_id", episodeID).
		Int("transitions", count).
		Msg("Episode transitions collected")
}

// Flush writes every buffered transition to the persistence layer. On a
// failed write the batch goes back into the buffer for the next attempt.
func (c *Collector) Flush(ctx context.Context) error {
	batch := c.buffer.GetAll()
	if len(batch) == 0 {
		return nil
	}

	if err := c.persistence.Write(ctx, batch); err != nil {
		c.mu.Lock()
		c.flushErrors++
		c.mu.Unlock()
		if rqErr := c.buffer.Requeue(batch); rqErr != nil {
			c.logger.Error().Err(rqErr).Int("batch_size", len(batch)).Msg("Lost transitions after failed flush")
		}
		return err
	}

	c.logger.Debug().Int("batch_size", len(batch)).Msg("Flushed transitions")
	return nil
}

// Recent returns up to n of the most recent transitions, oldest first. When
// the buffer holds fewer than n, the rest come from the persistence layer.
func (c *Collector) Recent(ctx context.Context, n int) ([]Transition, error) {
	n = max(n, 0)
	latest := c.buffer.GetLatest(n)
	missing := n - len(latest)
	if missing <= 0 {
		return latest, nil
	}

	flushed, err := c.persistence.Read(ctx, "", 0)
	if err != nil {
		return latest, fmt.Errorf("read flushed transitions: %w", err)
	}
	if len(flushed) > missing {
		flushed = flushed[len(flushed)-missing:]
	}
	return append(flushed, latest...), nil
}

// Pending returns the number of unflushed transitions
func (c *Collector) Pending() int {
	return c.buffer.Size()
}

// FlushErrors returns how many flushes failed
func (c *Collector) FlushErrors() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushErrors
}

// Close flushes remaining transitions and closes the persistence layer
func (c *Collector) Close(ctx context.Context) error {
	flushErr := c.Flush(ctx)
	if err := c.buffer.Close(); err != nil {
		return err
	}
	if err := c.persistence.Close(); err != nil {
		return err
	}
	return flushErr
}
