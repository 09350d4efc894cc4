package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/oshokin/hifi-grabber/internal/constants"
	"github.com/oshokin/hifi-grabber/internal/logger"
	"github.com/oshokin/hifi-grabber/internal/model"
)

// DefaultLimit is the number of records kept when no limit is configured.
const DefaultLimit = 500

// Store is the durable record of finished jobs.
type Store interface {
	// Append inserts the record at the head of the list and persists the list.
	Append(ctx context.Context, record Record) error
	// List returns the records, newest first.
	List() []Record
}

// Record is the compacted form of a finished job.
type Record struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	Album     string     `json:"album,omitempty"`
	Quality   string     `json:"quality"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Path      string     `json:"path,omitempty"`
	Size      int64      `json:"size,omitempty"`
	Duration  int        `json:"duration,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// FileStore keeps records in memory and rewrites a JSON file on every append.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	limit   int
	records []Record
}

// Static error definitions for better error handling.
var (
	// ErrCorruptHistory indicates that the history file exists but cannot be decoded.
	ErrCorruptHistory = errors.New("history file is corrupt")
)

// NewRecord compacts a job snapshot into a history record.
func NewRecord(job *model.Job) Record {
	record := Record{
		ID:        job.ID,
		Type:      job.Kind.String(),
		Title:     job.Title,
		Artist:    job.Artist,
		Album:     job.Album,
		Quality:   job.Quality.Label(),
		Status:    job.Status.String(),
		StartTime: job.StartedAt,
		Path:      job.ResultPath,
		Size:      job.Size,
		Duration:  job.Duration,
		Error:     job.Error,
	}

	if job.EndedAt != nil {
		endTime := *job.EndedAt
		record.EndTime = &endTime
	}

	return record
}

// NewFileStore loads the history file at path.
// A missing file yields an empty history. An empty path keeps the history in memory only.
func NewFileStore(path string, limit int) (*FileStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	store := &FileStore{
		path:    path,
		limit:   limit,
		records: make([]Record, 0),
	}

	if path == "" {
		return store, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}

		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	if len(data) == 0 {
		return store, nil
	}

	if err = json.Unmarshal(data, &store.records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptHistory, path, err)
	}

	if len(store.records) > limit {
		store.records = store.records[:limit]
	}

	return store, nil
}

// Append inserts the record at the head, truncates to the limit and persists the list.
// The in-memory list is updated even when persisting fails.
func (s *FileStore) Append(ctx context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]Record, 0, min(len(s.records)+1, s.limit))
	records = append(records, record)
	records = append(records, s.records[:min(len(s.records), s.limit-1)]...)
	s.records = records

	if s.path == "" {
		return nil
	}

	if err := s.persist(); err != nil {
		return fmt.Errorf("failed to persist history: %w", err)
	}

	logger.Debugf(ctx, "History record %s appended, %d records stored", record.ID, len(s.records))

	return nil
}

// List returns a copy of the records, newest first.
func (s *FileStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Record(nil), s.records...)
}

// Len returns the number of stored records.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *FileStore) persist() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, constants.DefaultFolderPermissions); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*"+constants.ExtensionTemp)
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck,gosec // The write error is reported instead.
		os.Remove(tmpName) //nolint:errcheck,gosec // Best-effort cleanup.

		return err
	}

	if err = tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // Best-effort cleanup.

		return err
	}

	if err = os.Chmod(tmpName, constants.DefaultFilePermissions); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // Best-effort cleanup.

		return err
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // Best-effort cleanup.

		return err
	}

	return nil
}
