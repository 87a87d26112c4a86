package records

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"
)

// Status represents the lifecycle of a tracked file.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusBypassed   Status = "bypassed"
)

var allStatuses = []Status{StatusProcessing, StatusCompleted, StatusError, StatusBypassed}

// AllStatuses returns the known record statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether the status ends pipeline processing.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusBypassed:
		return true
	default:
		return false
	}
}

// StageError captures a failed stage attempt. Bypass marks the failure as a
// deliberate business decision rather than a crash; the message carries the
// bare reason with no marker prefix.
type StageError struct {
	Message string `json:"message"`
	Bypass  bool   `json:"bypass,omitempty"`
}

// StageLog records the outcome of the most recent attempt of one action.
// Exactly one of Completed, Skipped, or Error is meaningfully set; a retry
// replaces the entry rather than appending.
type StageLog struct {
	Timestamp time.Time   `json:"timestamp"`
	Completed bool        `json:"completed,omitempty"`
	Skipped   bool        `json:"skipped,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	Error     *StageError `json:"error,omitempty"`
}

// Ok reports whether the attempt ended without an error.
func (l StageLog) Ok() bool {
	return l.Error == nil && (l.Completed || l.Skipped)
}

// Classification is the persisted verdict from the classify stage so later
// stages (and retries) do not need to re-call the service.
type Classification struct {
	DestinationFolder string   `json:"destinationFolder"`
	Tags              []string `json:"tags,omitempty"`
	SuggestedName     string   `json:"suggestedName,omitempty"`
}

// FileRecord tracks one file's journey through the pipeline.
type FileRecord struct {
	ID             string              `json:"id"`
	OriginalName   string              `json:"originalName"`
	NewName        string              `json:"newName,omitempty"`
	Path           string              `json:"path,omitempty"`
	NewPath        string              `json:"newPath,omitempty"`
	AttachmentPath string              `json:"attachmentPath,omitempty"`
	Status         Status              `json:"status"`
	Tags           []string            `json:"tags,omitempty"`
	Classification *Classification     `json:"classification,omitempty"`
	Logs           map[Action]StageLog `json:"logs"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// RecordID derives the stable record identifier from the file's original
// path. The id survives renames and moves because it never changes once the
// record exists.
func RecordID(originalPath string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(originalPath)))
	return hex.EncodeToString(sum[:])[:16]
}

// NewRecord creates a record for a file first seen at path.
func NewRecord(path string) *FileRecord {
	now := time.Now().UTC()
	return &FileRecord{
		ID:           RecordID(path),
		OriginalName: filepath.Base(path),
		Path:         path,
		Status:       StatusProcessing,
		Logs:         make(map[Action]StageLog),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetLog replaces the log entry for an action and rederives the status.
func (r *FileRecord) SetLog(action Action, log StageLog) {
	if r.Logs == nil {
		r.Logs = make(map[Action]StageLog)
	}
	r.Logs[action] = log
	r.UpdatedAt = time.Now().UTC()
	r.Status = r.DeriveStatus()
}

// ClearLog removes the log entry for an action.
func (r *FileRecord) ClearLog(action Action) {
	delete(r.Logs, action)
	r.UpdatedAt = time.Now().UTC()
}

// DeriveStatus computes the record status from the aggregate of its logs:
// any errored log yields error (or bypassed when the failure was a bypass),
// a completed terminal log yields completed, anything else is processing.
func (r *FileRecord) DeriveStatus() Status {
	for _, action := range actionOrder {
		log, ok := r.Logs[action]
		if !ok || log.Error == nil {
			continue
		}
		if log.Error.Bypass {
			return StatusBypassed
		}
		return StatusError
	}
	if log, ok := r.Logs[ActionCompleted]; ok && log.Completed {
		return StatusCompleted
	}
	return StatusProcessing
}

// Cursor returns the first action whose log is missing or errored — the
// point a pipeline run (or retry) resumes from.
func (r *FileRecord) Cursor() Action {
	for _, action := range actionOrder {
		log, ok := r.Logs[action]
		if !ok || log.Error != nil {
			return action
		}
	}
	return ActionCompleted
}

// LastError returns the errored log whose action lies latest in the
// canonical order, so the error closest to the failure point is surfaced.
func (r *FileRecord) LastError() (Action, *StageLog) {
	for i := len(actionOrder) - 1; i >= 0; i-- {
		action := actionOrder[i]
		if log, ok := r.Logs[action]; ok && log.Error != nil {
			entry := log
			return action, &entry
		}
	}
	return "", nil
}

// LatestTimestamp returns the most recent stage timestamp across all logs.
func (r *FileRecord) LatestTimestamp() time.Time {
	var latest time.Time
	for _, log := range r.Logs {
		if log.Timestamp.After(latest) {
			latest = log.Timestamp
		}
	}
	return latest
}

// AddTags unions tags into the record's tag set, preserving first-seen order.
func (r *FileRecord) AddTags(tags ...string) []string {
	seen := make(map[string]struct{}, len(r.Tags))
	for _, tag := range r.Tags {
		seen[tag] = struct{}{}
	}
	var added []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		r.Tags = append(r.Tags, tag)
		added = append(added, tag)
	}
	return added
}

// CurrentName returns the filename the record is tracked under right now.
func (r *FileRecord) CurrentName() string {
	if r.NewName != "" {
		return r.NewName
	}
	return r.OriginalName
}

// CurrentPath returns the path the record's note lives at right now.
func (r *FileRecord) CurrentPath() string {
	if r.NewPath != "" {
		return r.NewPath
	}
	return r.Path
}

// Clone returns a deep copy so callers can mutate without racing the store.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Tags = append([]string(nil), r.Tags...)
	if r.Classification != nil {
		cls := *r.Classification
		cls.Tags = append([]string(nil), r.Classification.Tags...)
		cp.Classification = &cls
	}
	cp.Logs = make(map[Action]StageLog, len(r.Logs))
	for action, log := range r.Logs {
		if log.Error != nil {
			errCopy := *log.Error
			log.Error = &errCopy
		}
		cp.Logs[action] = log
	}
	return &cp
}
