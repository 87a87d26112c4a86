package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shelver/internal/logging"
	"shelver/internal/records"
	"shelver/internal/testsupport"
	"shelver/internal/vault"
)

func TestStartEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	defer first.Close()
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new second daemon: %v", err)
	}
	defer second.Close()
	err = second.Start(context.Background())
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("second start err = %v", err)
	}

	first.Stop()
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("start after lock release: %v", err)
	}
	second.Stop()
}

func TestStatusReportsPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	defer d.Close()

	status := d.Status()
	if status.Running {
		t.Fatal("daemon reported running before start")
	}
	if status.DocumentPath != cfg.RecordDocumentPath() {
		t.Fatalf("document path = %s", status.DocumentPath)
	}
	if status.HistoryDBPath != cfg.HistoryDBPath() {
		t.Fatalf("history path = %s", status.HistoryDBPath)
	}
	if status.Records != 0 {
		t.Fatalf("records = %d", status.Records)
	}

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !d.Status().Running {
		t.Fatal("daemon not reported running after start")
	}
	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon still reported running after stop")
	}
}

func TestStartResumesInterruptedRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	dest := filepath.Join(cfg.Paths.VaultDir, "Projects", "idea.md")
	testsupport.WriteFile(t, dest, "a note about a project\n")

	seed, err := records.Open(cfg.RecordDocumentPath(), nil)
	if err != nil {
		t.Fatalf("open seed store: %v", err)
	}
	rec := records.NewRecord(filepath.Join(cfg.Paths.InboxDir, "idea.md"))
	rec.NewPath = dest
	rec.Classification = &records.Classification{
		DestinationFolder: "Projects",
		Tags:              []string{"go"},
	}
	done := []records.Action{
		records.ActionValidate, records.ActionContainer, records.ActionMovingAttachment,
		records.ActionExtract, records.ActionCleanup, records.ActionFetchYouTube,
		records.ActionClassify, records.ActionMoving,
	}
	for _, action := range done {
		rec.SetLog(action, records.StageLog{Timestamp: time.Now().UTC(), Completed: true})
	}
	seed.Upsert(rec)
	if err := seed.Flush(); err != nil {
		t.Fatalf("flush seed store: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}

	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	defer d.Close()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		got, err := d.Store().Get(rec.ID)
		if err == nil && got.Status == records.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("record never completed after restart: %+v", got)
		}
		time.Sleep(5 * time.Millisecond)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.Contains(string(data), "- go") {
		t.Fatalf("tagging did not run after restart:\n%s", data)
	}
}

func TestBuildStageDepsGatesUnconfiguredServices(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""

	deps := buildStageDeps(cfg, vault.NewFS(), logging.NewNop())
	if deps.Classifier != nil {
		t.Fatal("classifier installed without an API key")
	}
	if deps.Transcriber != nil {
		t.Fatal("transcriber installed while transcription is disabled")
	}
	if deps.Transcripts != nil {
		t.Fatal("transcript client installed while the integration is disabled")
	}

	cfg.LLM.APIKey = "secret"
	if deps := buildStageDeps(cfg, vault.NewFS(), logging.NewNop()); deps.Classifier == nil {
		t.Fatal("classifier missing despite a configured API key")
	}
}
