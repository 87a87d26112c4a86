package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// legacyBypassPrefix is the string marker older documents used to flag a
// bypass outcome inside the error message. Loads strip it into the typed
// Bypass flag; saves never write it back.
const legacyBypassPrefix = "bypassed due to "

type documentEntry struct {
	ID     string      `json:"id"`
	Record *FileRecord `json:"record"`
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read record document: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	entries, err := decodeDocument(data)
	if err != nil {
		backup := s.backupCorrupt(data)
		s.logger.Warn("record document corrupt; starting with empty registry",
			slog.Any("error", err),
			slog.String("path", s.path),
			slog.String("backup", backup),
		)
		return nil
	}

	for _, entry := range entries {
		if entry.Record == nil || entry.ID == "" {
			continue
		}
		record := entry.Record
		record.ID = entry.ID
		normalizeLoaded(record)
		if _, exists := s.byID[record.ID]; !exists {
			s.order = append(s.order, record.ID)
		}
		s.byID[record.ID] = record
	}
	return nil
}

// decodeDocument accepts the current array-of-pairs layout and the legacy
// object-keyed-by-id layout. Legacy documents convert to the array form on
// the next save.
func decodeDocument(data []byte) ([]documentEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []documentEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return entries, nil
	}

	var legacy map[string]*FileRecord
	if err := json.Unmarshal(trimmed, &legacy); err != nil {
		return nil, fmt.Errorf("decode legacy record map: %w", err)
	}
	entries := make([]documentEntry, 0, len(legacy))
	for id, record := range legacy {
		entries = append(entries, documentEntry{ID: id, Record: record})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Record, entries[j].Record
		if a == nil || b == nil || a.CreatedAt.Equal(b.CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return entries, nil
}

func normalizeLoaded(record *FileRecord) {
	if record.Logs == nil {
		record.Logs = make(map[Action]StageLog)
	}
	for action, log := range record.Logs {
		if log.Error == nil {
			continue
		}
		message := log.Error.Message
		if lower := strings.ToLower(message); strings.HasPrefix(lower, legacyBypassPrefix) {
			log.Error = &StageError{
				Message: strings.TrimSpace(message[len(legacyBypassPrefix):]),
				Bypass:  true,
			}
			record.Logs[action] = log
		}
	}
	record.Status = record.DeriveStatus()
}

func (s *Store) persist(snapshot []*FileRecord) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	entries := make([]documentEntry, 0, len(snapshot))
	for _, record := range snapshot {
		entries = append(entries, documentEntry{ID: record.ID, Record: record})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record document: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure record directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write record document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace record document: %w", err)
	}
	return nil
}

func (s *Store) backupCorrupt(data []byte) string {
	backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, 0o644); err != nil {
		s.logger.Warn("failed to preserve corrupt record document", slog.Any("error", err))
		return ""
	}
	return backup
}
