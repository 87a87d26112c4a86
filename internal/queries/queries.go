// Package queries provides read-only projections over the record store for
// the CLI and health surfaces.
package queries

import (
	"sort"
	"time"

	"shelver/internal/records"
)

// Issue pairs a stuck record with the failure that stopped it.
type Issue struct {
	Record  *records.FileRecord
	Action  records.Action
	Message string
	Bypass  bool
	At      time.Time
}

// RecentIssues returns error and bypassed records, most recently touched
// first. A limit of zero or less means no limit.
func RecentIssues(store *records.Store, limit int) []Issue {
	var issues []Issue
	for _, rec := range store.GetAll() {
		if rec.Status != records.StatusError && rec.Status != records.StatusBypassed {
			continue
		}
		issue := Issue{Record: rec, At: rec.LatestTimestamp()}
		if action, log := rec.LastError(); log != nil && log.Error != nil {
			issue.Action = action
			issue.Message = log.Error.Message
			issue.Bypass = log.Error.Bypass
		}
		issues = append(issues, issue)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].At.After(issues[j].At)
	})
	if limit > 0 && len(issues) > limit {
		issues = issues[:limit]
	}
	return issues
}

// TimelineEntry is one stage in a record's history, annotated with the time
// spent since the previous stage.
type TimelineEntry struct {
	Action   records.Action
	Log      records.StageLog
	Duration time.Duration
}

// Timeline lists a record's stage logs in canonical execution order with
// inter-stage durations. The second return value is the total pipeline time
// from the first log to the last.
func Timeline(rec *records.FileRecord) ([]TimelineEntry, time.Duration) {
	if rec == nil || len(rec.Logs) == 0 {
		return nil, 0
	}
	var (
		entries []TimelineEntry
		prev    time.Time
		first   time.Time
		last    time.Time
	)
	for _, action := range records.Actions() {
		log, ok := rec.Logs[action]
		if !ok {
			continue
		}
		entry := TimelineEntry{Action: action, Log: log}
		if !prev.IsZero() && log.Timestamp.After(prev) {
			entry.Duration = log.Timestamp.Sub(prev)
		}
		if first.IsZero() || log.Timestamp.Before(first) {
			first = log.Timestamp
		}
		if log.Timestamp.After(last) {
			last = log.Timestamp
		}
		prev = log.Timestamp
		entries = append(entries, entry)
	}
	total := time.Duration(0)
	if !first.IsZero() && last.After(first) {
		total = last.Sub(first)
	}
	return entries, total
}
