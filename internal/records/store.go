package records

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"shelver/internal/logging"
)

const defaultDebounce = time.Second

// ErrNotFound is returned when no record exists for an id.
var ErrNotFound = errors.New("record not found")

// Store is the durable registry of FileRecords. The in-memory map is the
// source of truth for the process lifetime; disk writes coalesce through a
// debounce window so bursty pipelines produce a single write.
type Store struct {
	mu       sync.Mutex
	byID     map[string]*FileRecord
	order    []string
	path     string
	logger   *slog.Logger
	debounce time.Duration

	dirty   bool
	timer   *time.Timer
	flushMu sync.Mutex // serializes disk writes
	closed  bool
}

// StoreOption configures optional Store behavior.
type StoreOption func(*Store)

// WithDebounce overrides the persistence debounce window.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// Open loads the record document at path, falling back to an empty registry
// when the document is missing or corrupt. A corrupt document is preserved
// as a timestamped backup for forensic recovery.
func Open(path string, logger *slog.Logger, opts ...StoreOption) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	store := &Store{
		byID:     make(map[string]*FileRecord),
		path:     path,
		logger:   logger,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

// Upsert inserts or replaces a record and schedules a debounced persist.
func (s *Store) Upsert(record *FileRecord) {
	if record == nil {
		return
	}
	cp := record.Clone()
	s.mu.Lock()
	if _, exists := s.byID[cp.ID]; !exists {
		s.order = append(s.order, cp.ID)
	}
	s.byID[cp.ID] = cp
	s.markDirtyLocked()
	s.mu.Unlock()
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (*FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

// FindByPath returns a copy of the record currently tracking path. Both the
// original location and the relocated one match, so a file the engine moved
// and later returned to the inbox resolves to its existing record instead of
// minting a second one. Newer records win when paths were reused.
func (s *Store) FindByPath(path string) (*FileRecord, error) {
	cleaned := filepath.Clean(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		record, ok := s.byID[s.order[i]]
		if !ok {
			continue
		}
		if filepath.Clean(record.CurrentPath()) == cleaned || filepath.Clean(record.Path) == cleaned {
			return record.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// GetAll returns copies of every record in insertion order.
func (s *Store) GetAll() []*FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*FileRecord, 0, len(s.order))
	for _, id := range s.order {
		if record, ok := s.byID[id]; ok {
			out = append(out, record.Clone())
		}
	}
	return out
}

// LastError returns the errored stage log for id nearest the failure point,
// or nil when the record carries no error.
func (s *Store) LastError(id string) (*StageLog, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	_, log := record.LastError()
	return log, nil
}

// Remove deletes a record. The underlying file is untouched.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.markDirtyLocked()
	return true
}

// Len returns the number of tracked records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Stats returns a count of records grouped by status.
func (s *Store) Stats() map[Status]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make(map[Status]int, len(allStatuses))
	for _, record := range s.byID {
		stats[record.Status]++
	}
	return stats
}

// Flush writes the document synchronously when dirty. Called at shutdown and
// by tests; scheduled flushes funnel through the same path.
func (s *Store) Flush() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

// Close flushes pending state and stops the debounce timer.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Flush()
}

// Path returns the on-disk document location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) markDirtyLocked() {
	s.dirty = true
	if s.closed || s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		if err := s.Flush(); err != nil {
			s.logger.Warn("record document flush failed; registry continues in memory",
				slog.Any("error", err),
				slog.String("path", s.path),
			)
		}
	})
}

func (s *Store) snapshotLocked() []*FileRecord {
	out := make([]*FileRecord, 0, len(s.order))
	for _, id := range s.order {
		if record, ok := s.byID[id]; ok {
			out = append(out, record.Clone())
		}
	}
	return out
}
