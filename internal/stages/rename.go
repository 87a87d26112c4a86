package stages

import (
	"context"
	"path/filepath"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/vault"
)

// Rename applies the classifier's suggested name to the note file.
type Rename struct {
	deps *Deps
}

func NewRename(deps *Deps) *Rename {
	return &Rename{deps: deps}
}

func (r *Rename) Action() records.Action {
	return records.ActionRename
}

func (r *Rename) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if rec.Classification == nil {
		return stage.Skip("no name suggestion"), nil
	}
	suggested := sanitizeName(rec.Classification.SuggestedName)
	if suggested == "" {
		return stage.Skip("no name suggestion"), nil
	}

	current := rec.CurrentPath()
	newName := suggested + filepath.Ext(current)
	if filepath.Base(current) == newName {
		return stage.Done("name already applied"), nil
	}

	dest := filepath.Join(filepath.Dir(current), newName)
	dest, err := vault.UniquePath(r.deps.Storage, dest)
	if err != nil {
		return stage.Result{}, services.Wrap(nil, "rename", "unique path", "resolve renamed path", err)
	}
	if err := r.deps.Storage.Move(current, dest); err != nil {
		return stage.Result{}, services.Wrap(services.ErrStaleFile, "rename", "move", "rename note", err)
	}
	rec.NewPath = dest
	rec.NewName = filepath.Base(dest)
	return stage.Done("renamed to " + rec.NewName), nil
}
