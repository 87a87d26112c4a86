package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestMoveCreatesDestinationDirectory(t *testing.T) {
	storage := NewFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "note.md")
	dst := filepath.Join(dir, "Projects", "Deep", "note.md")
	write(t, src, "body")

	if err := storage.Move(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source still present: %v", err)
	}
	data, err := storage.Read(dst)
	if err != nil || string(data) != "body" {
		t.Fatalf("dest read = %q, %v", data, err)
	}
}

func TestAppendCreatesFile(t *testing.T) {
	storage := NewFS()
	path := filepath.Join(t.TempDir(), "log.md")

	if err := storage.Append(path, []byte("- first\n")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := storage.Append(path, []byte("- second\n")); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := storage.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "- first\n- second\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestUniquePathNumbersCollisions(t *testing.T) {
	storage := NewFS()
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")

	got, err := UniquePath(storage, path)
	if err != nil || got != path {
		t.Fatalf("free path = %q, %v", got, err)
	}

	write(t, path, "a")
	write(t, filepath.Join(dir, "note 1.md"), "b")

	got, err = UniquePath(storage, path)
	if err != nil {
		t.Fatalf("unique path: %v", err)
	}
	if got != filepath.Join(dir, "note 2.md") {
		t.Fatalf("got %q", got)
	}
}

func TestFindByNameHonorsFolderAndNamePriority(t *testing.T) {
	storage := NewFS()
	dir := t.TempDir()
	errorDir := filepath.Join(dir, "Errors")
	inbox := filepath.Join(dir, "Inbox")
	write(t, filepath.Join(inbox, "renamed.md"), "x")
	write(t, filepath.Join(errorDir, "original.md"), "y")

	// The newer name wins only within a folder; folder order wins overall.
	path, found, err := FindByName(storage, []string{errorDir, inbox}, []string{"renamed.md", "original.md"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !found || path != filepath.Join(errorDir, "original.md") {
		t.Fatalf("path = %q, found = %v", path, found)
	}

	write(t, filepath.Join(errorDir, "renamed.md"), "z")
	path, found, err = FindByName(storage, []string{errorDir, inbox}, []string{"renamed.md", "original.md"})
	if err != nil || !found {
		t.Fatalf("find: %v", err)
	}
	if path != filepath.Join(errorDir, "renamed.md") {
		t.Fatalf("path = %q", path)
	}

	if _, found, err = FindByName(storage, []string{errorDir}, []string{"missing.md"}); err != nil || found {
		t.Fatalf("missing file reported found: %v", err)
	}
}

func TestWalkFilesVisitsOnlyRegularFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "a.md"), "1")
	write(t, filepath.Join(dir, "sub", "b.md"), "2")

	var seen []string
	err := WalkFiles(dir, func(path string, info os.FileInfo) error {
		seen = append(seen, info.Name())
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("seen = %v", seen)
	}
}
