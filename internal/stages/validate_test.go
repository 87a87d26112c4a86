package stages

import (
	"context"
	"path/filepath"
	"testing"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/testsupport"
	"shelver/internal/vault"
)

func newTestDeps(t *testing.T, opts ...testsupport.ConfigOption) *Deps {
	t.Helper()
	return &Deps{
		Config:  testsupport.NewConfig(t, opts...),
		Storage: vault.NewFS(),
	}
}

func TestValidateAcceptsSupportedFile(t *testing.T) {
	deps := newTestDeps(t)
	path := filepath.Join(deps.Config.Paths.InboxDir, "note.md")
	testsupport.WriteFile(t, path, "hello")

	result, err := NewValidate(deps).Execute(context.Background(), &stage.Run{Record: records.NewRecord(path)})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Skipped {
		t.Fatal("valid file should not skip")
	}
}

func TestValidateBypassesUnsupportedExtension(t *testing.T) {
	deps := newTestDeps(t)
	path := filepath.Join(deps.Config.Paths.InboxDir, "script.exe")
	testsupport.WriteFile(t, path, "binary")

	_, err := NewValidate(deps).Execute(context.Background(), &stage.Run{Record: records.NewRecord(path)})
	if !services.IsBypass(err) {
		t.Fatalf("want bypass, got %v", err)
	}
	reason, _ := services.BypassReason(err)
	if reason != "unsupported file type .exe" {
		t.Fatalf("reason = %q", reason)
	}
}

func TestValidateBypassesOversizedFile(t *testing.T) {
	deps := newTestDeps(t, testsupport.WithMaxFileSizeMiB(1))
	path := filepath.Join(deps.Config.Paths.InboxDir, "big.md")
	testsupport.WriteBytes(t, path, 2<<20)

	_, err := NewValidate(deps).Execute(context.Background(), &stage.Run{Record: records.NewRecord(path)})
	if !services.IsBypass(err) {
		t.Fatalf("want bypass, got %v", err)
	}
	reason, _ := services.BypassReason(err)
	if reason != "file too large" {
		t.Fatalf("reason = %q, want %q", reason, "file too large")
	}
}

func TestValidateBypassesIgnoredPattern(t *testing.T) {
	deps := newTestDeps(t)
	deps.Config.Validation.IgnorePatterns = []string{"~*"}
	path := filepath.Join(deps.Config.Paths.InboxDir, "~draft.md")
	testsupport.WriteFile(t, path, "wip")

	_, err := NewValidate(deps).Execute(context.Background(), &stage.Run{Record: records.NewRecord(path)})
	if !services.IsBypass(err) {
		t.Fatalf("want bypass, got %v", err)
	}
}

func TestValidateErrorsWhenFileVanished(t *testing.T) {
	deps := newTestDeps(t)
	path := filepath.Join(deps.Config.Paths.InboxDir, "gone.md")

	_, err := NewValidate(deps).Execute(context.Background(), &stage.Run{Record: records.NewRecord(path)})
	if err == nil || services.IsBypass(err) {
		t.Fatalf("want stale-file error, got %v", err)
	}
}
