package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/testsupport"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestExtractReadsNoteContent(t *testing.T) {
	deps := newTestDeps(t)
	path := filepath.Join(deps.Config.Paths.InboxDir, "note.md")
	testsupport.WriteFile(t, path, "plain body\n")

	run := &stage.Run{Record: records.NewRecord(path)}
	if _, err := NewExtract(deps).Execute(context.Background(), run); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.Content != "plain body\n" {
		t.Fatalf("content = %q", run.Content)
	}
}

func TestExtractTranscribesAudioIntoContainerNote(t *testing.T) {
	deps := newTestDeps(t)
	tr := &fakeTranscriber{text: "spoken words"}
	deps.Transcriber = tr

	audio := filepath.Join(deps.Config.Paths.InboxDir, "memo.mp3")
	note := filepath.Join(deps.Config.Paths.InboxDir, "memo.md")
	testsupport.WriteBytes(t, audio, 64)
	testsupport.WriteFile(t, note, "![[memo.mp3]]\n")

	rec := records.NewRecord(audio)
	rec.AttachmentPath = audio
	rec.Path = note
	run := &stage.Run{Record: rec}

	if _, err := NewExtract(deps).Execute(context.Background(), run); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if run.Content != "spoken words" {
		t.Fatalf("content = %q", run.Content)
	}
	data, err := os.ReadFile(note)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if !strings.Contains(string(data), "spoken words") {
		t.Fatalf("transcript not persisted into note:\n%s", data)
	}
}

func TestExtractRecoversPersistedTextWithoutService(t *testing.T) {
	deps := newTestDeps(t)
	tr := &fakeTranscriber{text: "should not be called"}
	deps.Transcriber = tr

	audio := filepath.Join(deps.Config.Paths.InboxDir, "memo.mp3")
	note := filepath.Join(deps.Config.Paths.InboxDir, "memo.md")
	testsupport.WriteBytes(t, audio, 64)
	testsupport.WriteFile(t, note, "![[memo.mp3]]\n\nearlier transcript\n")

	rec := records.NewRecord(audio)
	rec.AttachmentPath = audio
	rec.Path = note
	run := &stage.Run{Record: rec}

	result, err := NewExtract(deps).Execute(context.Background(), run)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if tr.calls != 0 {
		t.Fatalf("transcriber called %d times on recovery", tr.calls)
	}
	if run.Content != "earlier transcript" {
		t.Fatalf("content = %q", run.Content)
	}
	if result.Detail != "recovered extracted text from note" {
		t.Fatalf("detail = %q", result.Detail)
	}
}

func TestExtractErrorsWhenTranscriptionUnconfigured(t *testing.T) {
	deps := newTestDeps(t)

	audio := filepath.Join(deps.Config.Paths.InboxDir, "memo.mp3")
	note := filepath.Join(deps.Config.Paths.InboxDir, "memo.md")
	testsupport.WriteBytes(t, audio, 64)
	testsupport.WriteFile(t, note, "![[memo.mp3]]\n")

	rec := records.NewRecord(audio)
	rec.AttachmentPath = audio
	rec.Path = note

	_, err := NewExtract(deps).Execute(context.Background(), &stage.Run{Record: rec})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
}
