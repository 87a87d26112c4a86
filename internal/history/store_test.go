package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shelver/internal/records"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndByRecordRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	events := []Event{
		{RecordID: "abc", FileName: "note.md", Action: records.ActionValidate, Outcome: OutcomeCompleted, Detail: ".md, 12 bytes"},
		{RecordID: "abc", FileName: "note.md", Action: records.ActionClassify, Outcome: OutcomeErrored, Detail: "service unavailable"},
		{RecordID: "other", FileName: "big.md", Action: records.ActionValidate, Outcome: OutcomeBypassed, Detail: "file too large"},
	}
	for _, event := range events {
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := store.ByRecord(ctx, "abc")
	if err != nil {
		t.Fatalf("by record: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Action != records.ActionValidate || got[1].Action != records.ActionClassify {
		t.Fatalf("wrong order: %s, %s", got[0].Action, got[1].Action)
	}
	if got[1].Outcome != OutcomeErrored || got[1].Detail != "service unavailable" {
		t.Fatalf("event = %+v", got[1])
	}
	if got[0].CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, action := range []records.Action{records.ActionValidate, records.ActionExtract, records.ActionCleanup} {
		event := Event{
			RecordID:  "abc",
			FileName:  "note.md",
			Action:    action,
			Outcome:   OutcomeCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Record(ctx, event); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("events = %d, want 2", len(recent))
	}
	if recent[0].Action != records.ActionCleanup || recent[1].Action != records.ActionExtract {
		t.Fatalf("wrong order: %s, %s", recent[0].Action, recent[1].Action)
	}
	if !recent[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("created_at = %s", recent[0].CreatedAt)
	}
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.Record(context.Background(), Event{RecordID: "abc", Action: records.ActionValidate, Outcome: OutcomeCompleted}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer reopened.Close()

	events, err := reopened.ByRecord(context.Background(), "abc")
	if err != nil {
		t.Fatalf("by record: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d after reopen", len(events))
	}
}
