package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Storage abstracts the file tree the pipeline mutates.
type Storage interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Append(path string, data []byte) error
	Move(path, newPath string) error
	Delete(path string) error
	Exists(path string) (bool, error)
	List(folder string) ([]string, error)
	Stat(path string) (os.FileInfo, error)
}

// FS implements Storage on the local filesystem.
type FS struct{}

// NewFS returns a local-filesystem Storage.
func NewFS() *FS {
	return &FS{}
}

func (*FS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (*FS) Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (*FS) Append(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}

// Move renames path to newPath, falling back to copy+remove when the rename
// crosses filesystems.
func (*FS) Move(path, newPath string) error {
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("ensure destination directory: %w", err)
	}
	err := os.Rename(path, newPath)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if copyErr := copyFile(path, newPath); copyErr != nil {
		return copyErr
	}
	return os.Remove(path)
}

func (*FS) Delete(path string) error {
	return os.Remove(path)
}

func (*FS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// List returns the names of regular files directly inside folder.
func (*FS) List(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (*FS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// UniquePath returns path when free, otherwise appends " 1", " 2", ... before
// the extension until an unused name is found.
func UniquePath(storage Storage, path string) (string, error) {
	exists, err := storage.Exists(path)
	if err != nil {
		return "", err
	}
	if !exists {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s %d%s", stem, i, ext)
		exists, err := storage.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// FindByName searches folders in priority order for a file with any of the
// candidate names and returns the first match.
func FindByName(storage Storage, folders []string, names []string) (string, bool, error) {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return "", false, nil
	}
	for _, folder := range folders {
		entries, err := storage.List(folder)
		if err != nil {
			return "", false, err
		}
		for _, name := range names {
			for _, entry := range entries {
				if entry == name {
					return filepath.Join(folder, entry), true, nil
				}
			}
		}
	}
	return "", false, nil
}

// WalkFiles calls fn for each regular file under root, depth-first. Used for
// the vault-wide fallback scan when re-resolving a stale record.
func WalkFiles(root string, fn func(path string, info os.FileInfo) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		return fn(path, info)
	})
}
