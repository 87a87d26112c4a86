package stages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

// Validate enforces the inbox intake rules before any work is done.
type Validate struct {
	deps *Deps
}

func NewValidate(deps *Deps) *Validate {
	return &Validate{deps: deps}
}

func (v *Validate) Action() records.Action {
	return records.ActionValidate
}

func (v *Validate) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	name := filepath.Base(rec.Path)

	for _, pattern := range v.deps.Config.Validation.IgnorePatterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return stage.Result{}, services.Bypassf("ignored file (%s)", pattern)
		}
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || !v.allowedExtension(ext) {
		return stage.Result{}, services.Bypassf("unsupported file type %s", ext)
	}

	info, err := v.deps.Storage.Stat(rec.Path)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrStaleFile, "validate", "stat", "file disappeared before validation", err)
	}
	if maxSize := v.deps.Config.MaxFileSize(); maxSize > 0 && info.Size() > maxSize {
		return stage.Result{}, services.Bypass("file too large")
	}

	return stage.Done(fmt.Sprintf("%s, %d bytes", ext, info.Size())), nil
}

func (v *Validate) allowedExtension(ext string) bool {
	for _, allowed := range v.deps.Config.Validation.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
