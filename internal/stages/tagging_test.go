package stages

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelver/internal/records"
	"shelver/internal/stage"
	"shelver/internal/testsupport"
)

func TestTaggingWritesFrontMatterAndRecord(t *testing.T) {
	deps := newTestDeps(t)
	path := filepath.Join(deps.Config.Paths.InboxDir, "note.md")
	testsupport.WriteFile(t, path, "body\n")

	rec := records.NewRecord(path)
	rec.Classification = &records.Classification{Tags: []string{"go", "notes"}}
	handler := NewTagging(deps)

	if _, err := handler.Execute(context.Background(), &stage.Run{Record: rec}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.Contains(string(data), "- go") || !strings.Contains(string(data), "- notes") {
		t.Fatalf("tags not written:\n%s", data)
	}
	if len(rec.Tags) != 2 {
		t.Fatalf("record tags = %v", rec.Tags)
	}

	// A second pass must not duplicate anything.
	result, err := handler.Execute(context.Background(), &stage.Run{Record: rec})
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if result.Detail != "tags already present" {
		t.Fatalf("detail = %q", result.Detail)
	}
	data, _ = os.ReadFile(path)
	if strings.Count(string(data), "- go") != 1 {
		t.Fatalf("tag duplicated on re-run:\n%s", data)
	}
	if len(rec.Tags) != 2 {
		t.Fatalf("record tags grew on re-run: %v", rec.Tags)
	}
}

func TestTaggingSkipsWithoutSuggestions(t *testing.T) {
	deps := newTestDeps(t)
	rec := records.NewRecord(filepath.Join(deps.Config.Paths.InboxDir, "note.md"))

	result, err := NewTagging(deps).Execute(context.Background(), &stage.Run{Record: rec})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Skipped {
		t.Fatal("expected skip without classifier tags")
	}
}
