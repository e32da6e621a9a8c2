package experience

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrBufferClosed is returned when operations are attempted on a closed buffer
	ErrBufferClosed = errors.New("experience buffer is closed")
)

// DefaultBufferCapacity is used when NewBuffer is given a non-positive capacity
const DefaultBufferCapacity = 10000

// Buffer is a thread-safe circular buffer of transitions. When full, the
// oldest transition is overwritten.
type Buffer struct {
	mu       sync.RWMutex
	buffer   []Transition
	capacity int
	size     int
	head     int // Write position
	tail     int // Read position
	closed   bool

	// Statistics
	totalAdded   int64
	totalDropped int64

	logger zerolog.Logger
}

// NewBuffer creates a new transition buffer with the specified capacity
func NewBuffer(capacity int, logger zerolog.Logger) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}

	return &Buffer{
		buffer:   make([]Transition, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "experience_buffer").Logger(),
	}
}

// Add appends a transition, dropping the oldest one when the buffer is full
func (b *Buffer) Add(t Transition) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}

	if b.push(t) {
		b.logger.Trace().
			Int64("dropped_total", b.totalDropped).
			Msg("Buffer full, dropping oldest transition")
	}
	return nil
}

// Requeue puts transitions back at the read end of the buffer, ahead of
// anything added since they were taken. If they no longer fit, the oldest of
// them are dropped.
func (b *Buffer) Requeue(transitions []Transition) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBufferClosed
	}

	if free := b.capacity - b.size; len(transitions) > free {
		b.totalDropped += int64(len(transitions) - free)
		transitions = transitions[len(transitions)-free:]
	}
	for i := len(transitions) - 1; i >= 0; i-- {
		b.tail = (b.tail - 1 + b.capacity) % b.capacity
		b.buffer[b.tail] = transitions[i]
		b.size++
	}

	if len(transitions) > 0 {
		b.logger.Debug().
			Int("batch_size", len(transitions)).
			Int("size", b.size).
			Msg("Requeued transitions")
	}
	return nil
}

// push stores t and reports whether the oldest entry was overwritten. Callers hold mu.
func (b *Buffer) push(t Transition) bool {
	dropped := false
	if b.size >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.totalDropped++
		dropped = true
	} else {
		b.size++
	}

	b.buffer[b.head] = t
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++
	return dropped
}

// GetAll removes and returns every buffered transition, oldest first
func (b *Buffer) GetAll() []Transition {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Transition, b.size)
	for i := 0; i < b.size; i++ {
		result[i] = b.buffer[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.size = 0

	return result
}

// GetLatest returns the n most recent transitions, oldest first, without removing them
func (b *Buffer) GetLatest(n int) []Transition {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n > b.size {
		n = b.size
	}

	result := make([]Transition, n)
	for i := 0; i < n; i++ {
		idx := (b.head - n + i + b.capacity) % b.capacity
		result[i] = b.buffer[idx]
	}

	return result
}

// Size returns the current number of transitions in the buffer
func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Capacity returns the maximum capacity of the buffer
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Close marks the buffer closed. Further adds fail with ErrBufferClosed.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.logger.Debug().
		Int64("total_added", b.totalAdded).
		Int64("total_dropped", b.totalDropped).
		Msg("Buffer closed")

	return nil
}

// Stats returns buffer statistics
func (b *Buffer) Stats() BufferStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BufferStats{
		CurrentSize:    b.size,
		Capacity:       b.capacity,
		TotalAdded:     b.totalAdded,
		TotalDropped:   b.totalDropped,
		UtilizationPct: float64(b.size) / float64(b.capacity) * 100,
	}
}

// BufferStats contains buffer statistics
type BufferStats struct {
	CurrentSize    int
	Capacity       int
	TotalAdded     int64
	TotalDropped   int64
	UtilizationPct float64
}
