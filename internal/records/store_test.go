package records

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T, path string, opts ...StoreOption) *Store {
	t.Helper()
	store, err := Open(path, nil, opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	store := openTestStore(t, path)

	rec := NewRecord("/vault/Inbox/note.md")
	rec.SetLog(ActionValidate, StageLog{Timestamp: time.Now().UTC(), Completed: true, Detail: ".md, 12 bytes"})
	store.Upsert(rec)
	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reopened := openTestStore(t, path)
	got, err := reopened.Get(rec.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.OriginalName != "note.md" {
		t.Fatalf("original name = %q", got.OriginalName)
	}
	log, ok := got.Logs[ActionValidate]
	if !ok || !log.Completed {
		t.Fatalf("validate log not preserved: %+v", got.Logs)
	}
}

func TestDebounceCoalescesBurstsIntoOneWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	// A very long debounce keeps the background flusher out of the test;
	// the only write should come from the explicit Flush.
	store := openTestStore(t, path, WithDebounce(time.Hour))

	for i := 0; i < 10; i++ {
		rec := NewRecord(filepath.Join("/vault/Inbox", "note"+string(rune('0'+i))+".md"))
		store.Upsert(rec)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("document written before the debounce window elapsed")
	}

	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if store.Len() != 10 {
		t.Fatalf("len = %d, want 10", store.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var entries []documentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("persisted %d records, want 10", len(entries))
	}

	// Nothing dirty remains, so another flush must not rewrite the file.
	info1, _ := os.Stat(path)
	if err := store.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	info2, _ := os.Stat(path)
	if !info1.ModTime().Equal(info2.ModTime()) {
		t.Fatal("clean flush rewrote the document")
	}
}

func TestLoadLegacyMapLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	legacy := `{
  "aaaa000000000001": {"originalName": "old.md", "path": "/vault/Inbox/old.md", "status": "processing", "createdAt": "2024-01-01T00:00:00Z"},
  "aaaa000000000002": {"originalName": "older.md", "path": "/vault/Inbox/older.md", "status": "processing", "createdAt": "2023-01-01T00:00:00Z"}
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed legacy document: %v", err)
	}

	store := openTestStore(t, path)
	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("loaded %d records, want 2", len(all))
	}
	// Legacy maps carry no order; creation time decides.
	if all[0].OriginalName != "older.md" {
		t.Fatalf("first record = %q, want the oldest", all[0].OriginalName)
	}

	// First save converts to the array layout.
	store.Upsert(all[0])
	if err := store.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if trimmed := strings.TrimSpace(string(data)); !strings.HasPrefix(trimmed, "[") {
		t.Fatalf("document not converted to array layout: %s", trimmed[:1])
	}
}

func TestLoadStripsLegacyBypassMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	legacy := `{
  "aaaa000000000001": {
    "originalName": "big.bin",
    "path": "/vault/Inbox/big.bin",
    "status": "error",
    "createdAt": "2024-01-01T00:00:00Z",
    "logs": {"validate": {"timestamp": "2024-01-01T00:00:01Z", "error": {"message": "Bypassed due to file too large"}}}
  }
}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed legacy document: %v", err)
	}

	store := openTestStore(t, path)
	rec, err := store.Get("aaaa000000000001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != StatusBypassed {
		t.Fatalf("status = %s, want %s", rec.Status, StatusBypassed)
	}
	log, err := store.LastError(rec.ID)
	if err != nil {
		t.Fatalf("last error: %v", err)
	}
	if log.Error.Message != "file too large" {
		t.Fatalf("message = %q, want marker stripped", log.Error.Message)
	}
	if !log.Error.Bypass {
		t.Fatal("bypass flag not set from legacy marker")
	}
}

func TestCorruptDocumentBackedUpAndStoreStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt document: %v", err)
	}

	store := openTestStore(t, path)
	if store.Len() != 0 {
		t.Fatalf("len = %d, want empty registry", store.Len())
	}

	matches, err := filepath.Glob(path + ".corrupt-*")
	if err != nil || len(matches) != 1 {
		t.Fatalf("corrupt backup not written: %v (%v)", matches, err)
	}
	backup, err := os.ReadFile(matches[0])
	if err != nil || string(backup) != "{not json" {
		t.Fatalf("backup content mismatch: %q (%v)", backup, err)
	}
}

func TestRemoveAndStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	store := openTestStore(t, path)

	rec := NewRecord("/vault/Inbox/a.md")
	store.Upsert(rec)
	other := NewRecord("/vault/Inbox/b.md")
	other.SetLog(ActionValidate, StageLog{Timestamp: time.Now().UTC(), Error: &StageError{Message: "boom"}})
	store.Upsert(other)

	stats := store.Stats()
	if stats[StatusProcessing] != 1 || stats[StatusError] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	if !store.Remove(rec.ID) {
		t.Fatal("remove reported missing record")
	}
	if store.Remove(rec.ID) {
		t.Fatal("second remove should report missing")
	}
	if _, err := store.Get(rec.ID); err == nil {
		t.Fatal("record still retrievable after remove")
	}
}

func TestFindByPathMatchesEitherLocation(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "records.json"))

	rec := NewRecord("/vault/Inbox/idea.md")
	rec.NewName = "Renamed Idea.md"
	rec.NewPath = "/vault/Inbox/Renamed Idea.md"
	store.Upsert(rec)

	byCurrent, err := store.FindByPath("/vault/Inbox/Renamed Idea.md")
	if err != nil {
		t.Fatalf("find by relocated path: %v", err)
	}
	if byCurrent.ID != rec.ID {
		t.Fatalf("relocated path found %s, want %s", byCurrent.ID, rec.ID)
	}

	byOriginal, err := store.FindByPath("/vault/Inbox/idea.md")
	if err != nil {
		t.Fatalf("find by original path: %v", err)
	}
	if byOriginal.ID != rec.ID {
		t.Fatalf("original path found %s, want %s", byOriginal.ID, rec.ID)
	}

	if _, err := store.FindByPath("/vault/Inbox/other.md"); err != ErrNotFound {
		t.Fatalf("unknown path err = %v, want ErrNotFound", err)
	}
}
