package experience

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrPersistenceNotConfigured is returned when persistence operations are attempted without configuration
	ErrPersistenceNotConfigured = errors.New("persistence layer not configured")
	// ErrInvalidPersistenceType is returned when an unknown persistence type is specified
	ErrInvalidPersistenceType = errors.New("invalid persistence type")
)

// PersistenceType represents the type of persistence backend
type PersistenceType string

const (
	// PersistenceTypeNone disables persistence
	PersistenceTypeNone PersistenceType = "none"
	// PersistenceTypeFile enables file-based persistence
	PersistenceTypeFile PersistenceType = "file"
)

// filePattern matches every file written by FilePersistence
const filePattern = "transitions_*.jsonl"

// PersistenceConfig contains configuration for the persistence layer
type PersistenceConfig struct {
	Type PersistenceType

	// File-based config
	BaseDir          string
	MaxFileSize      int64 // Max size per file in bytes
	RotationInterval time.Duration

	// BatchSize is how many transitions the Collector buffers before writing
	BatchSize int
}

// DefaultPersistenceConfig returns a default persistence configuration
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		Type:        PersistenceTypeNone,
		BaseDir:     "experiences",
		MaxFileSize: 16 * 1024 * 1024, // 16MB
		BatchSize:   1000,
	}
}

// PersistenceLayer defines the interface for persisting transitions
type PersistenceLayer interface {
	// Write persists a batch of transitions
	Write(ctx context.Context, transitions []Transition) error

	// Read retrieves transitions from storage. An empty episodeID matches all.
	Read(ctx context.Context, episodeID string, limit int) ([]Transition, error)

	// Close cleanly shuts down the persistence layer
	Close() error

	// Stats returns persistence statistics
	Stats() PersistenceStats
}

// PersistenceStats contains statistics about persistence operations
type PersistenceStats struct {
	TotalWritten  int64
	TotalRead     int64
	BytesWritten  int64
	BytesRead     int64
	WriteErrors   int64
	ReadErrors    int64
	FilesCreated  int
	LastWriteTime time.Time
	LastReadTime  time.Time
}

// FilePersistence writes transitions as protojson lines, rotating files by size
// and optionally by time.
type FilePersistence struct {
	config     PersistenceConfig
	logger     zerolog.Logger
	serializer *Serializer

	mu    sync.RWMutex
	stats PersistenceStats

	currentFile *os.File
	writer      *bufio.Writer
	currentSize int64
	fileIndex   int

	closeChan chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFilePersistence creates a new file-based persistence layer
func NewFilePersistence(config PersistenceConfig, logger zerolog.Logger) (*FilePersistence, error) {
	if err := os.MkdirAll(config.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	fp := &FilePersistence{
		config:     config,
		logger:     logger.With().Str("component", "file_persistence").Logger(),
		serializer: NewSerializer(),
		closeChan:  make(chan struct{}),
	}

	if err := fp.rotateFile(); err != nil {
		return nil, err
	}

	if config.RotationInterval > 0 {
		fp.wg.Add(1)
		go fp.rotationLoop()
	}

	return fp, nil
}

// Write persists a batch of transitions to the current file
func (fp *FilePersistence) Write(ctx context.Context, transitions []Transition) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if fp.currentFile == nil {
		return ErrPersistenceNotConfigured
	}

	for _, t := range transitions {
		if err := ctx.Err(); err != nil {
			return err
		}

		if fp.config.MaxFileSize > 0 && fp.currentSize >= fp.config.MaxFileSize {
			if err := fp.rotateFile(); err != nil {
				fp.stats.WriteErrors++
				return fmt.Errorf("failed to rotate file: %w", err)
			}
		}

		data, err := fp.serializer.Marshal(t)
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to marshal transition: %w", err)
		}

		n, err := fp.writer.Write(append(data, '\n'))
		if err != nil {
			fp.stats.WriteErrors++
			return fmt.Errorf("failed to write transition: %w", err)
		}

		fp.currentSize += int64(n)
		fp.stats.TotalWritten++
		fp.stats.BytesWritten += int64(n)
	}

	if err := fp.writer.Flush(); err != nil {
		fp.stats.WriteErrors++
		return fmt.Errorf("failed to flush transitions: %w", err)
	}

	fp.stats.LastWriteTime = time.Now()

	fp.logger.Debug().
		Int("batch_size", len(transitions)).
		Int64("file_size", fp.currentSize).
		Msg("Wrote transition batch to file")

	return nil
}

// Read retrieves transitions from every file in BaseDir, oldest file first
func (fp *FilePersistence) Read(ctx context.Context, episodeID string, limit int) ([]Transition, error) {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(fp.config.BaseDir, filePattern))
	if err != nil {
		fp.stats.ReadErrors++
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var transitions []Transition
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return transitions, err
		}
		if limit > 0 && len(transitions) >= limit {
			break
		}

		remaining := 0
		if limit > 0 {
			remaining = limit - len(transitions)
		}
		ts, err := fp.readFile(file, episodeID, remaining)
		if err != nil {
			fp.stats.ReadErrors++
			fp.logger.Warn().
				Err(err).
				Str("file", file).
				Msg("Failed to read transition file")
			continue
		}

		transitions = append(transitions, ts...)
	}

	fp.stats.LastReadTime = time.Now()
	fp.stats.TotalRead += int64(len(transitions))

	return transitions, nil
}

// readFile reads transitions from a single file. Callers hold mu.
func (fp *FilePersistence) readFile(filename, episodeID string, limit int) ([]Transition, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var transitions []Transition
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		if limit > 0 && len(transitions) >= limit {
			break
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		t, err := fp.serializer.Unmarshal(line)
		if err != nil {
			return nil, err
		}

		if episodeID == "" || t.EpisodeID == episodeID {
			transitions = append(transitions, t)
			fp.stats.BytesRead += int64(len(line))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return transitions, nil
}

// rotateFile closes the current file and opens a new one. Callers hold mu.
func (fp *FilePersistence) rotateFile() error {
	if err := fp.closeCurrent(); err != nil {
		fp.logger.Warn().Err(err).Msg("Failed to close previous file")
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fp.fileName(timestamp)
	for {
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			break
		}
		fp.fileIndex++
		filename = fp.fileName(timestamp)
	}
	fp.fileIndex++

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	fp.currentFile = file
	fp.writer = bufio.NewWriter(file)
	fp.currentSize = 0
	fp.stats.FilesCreated++

	fp.logger.Info().
		Str("filename", filename).
		Msg("Rotated to new transition file")

	return nil
}

func (fp *FilePersistence) fileName(timestamp string) string {
	return filepath.Join(fp.config.BaseDir, fmt.Sprintf("transitions_%s_%04d.jsonl", timestamp, fp.fileIndex))
}

func (fp *FilePersistence) closeCurrent() error {
	if fp.currentFile == nil {
		return nil
	}
	flushErr := fp.writer.Flush()
	closeErr := fp.currentFile.Close()
	fp.currentFile = nil
	fp.writer = nil
	return errors.Join(flushErr, closeErr)
}

// rotationLoop handles periodic file rotation
func (fp *FilePersistence) rotationLoop() {
	defer fp.wg.Done()

	ticker := time.NewTicker(fp.config.RotationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fp.mu.Lock()
			if err := fp.rotateFile(); err != nil {
				fp.logger.Error().Err(err).Msg("Failed to rotate file")
			}
			fp.mu.Unlock()

		case <-fp.closeChan:
			return
		}
	}
}

// Close flushes and closes the current file. It is safe to call more than once.
func (fp *FilePersistence) Close() error {
	fp.closeOnce.Do(func() { close(fp.closeChan) })
	fp.wg.Wait()

	fp.mu.Lock()
	defer fp.mu.Unlock()

	return fp.closeCurrent()
}

// Stats returns persistence statistics
func (fp *FilePersistence) Stats() PersistenceStats {
	fp.mu.RLock()
	defer fp.mu.RUnlock()
	return fp.stats
}

// NullPersistence is a no-op persistence layer
type NullPersistence struct{}

func (n *NullPersistence) Write(ctx context.Context, transitions []Transition) error {
	return nil
}

func (n *NullPersistence) Read(ctx context.Context, episodeID string, limit int) ([]Transition, error) {
	return nil, nil
}

func (n *NullPersistence) Close() error {
	return nil
}

func (n *NullPersistence) Stats() PersistenceStats {
	return PersistenceStats{}
}

// NewPersistenceLayer creates a persistence layer based on configuration
func NewPersistenceLayer(config PersistenceConfig, logger zerolog.Logger) (PersistenceLayer, error) {
	switch config.Type {
	case PersistenceTypeNone, "":
		return &NullPersistence{}, nil
	case PersistenceTypeFile:
		return NewFilePersistence(config, logger)
	default:
		return nil, fmt.Errorf("%q: %w", config.Type, ErrInvalidPersistenceType)
	}
}
