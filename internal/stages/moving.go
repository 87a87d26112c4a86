package stages

import (
	"context"
	"path/filepath"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/vault"
)

// Moving relocates the note from the inbox into its classified destination
// folder.
type Moving struct {
	deps *Deps
}

func NewMoving(deps *Deps) *Moving {
	return &Moving{deps: deps}
}

func (m *Moving) Action() records.Action {
	return records.ActionMoving
}

func (m *Moving) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if rec.Classification == nil || rec.Classification.DestinationFolder == "" {
		return stage.Skip("no destination folder"), nil
	}

	destDir := filepath.Join(m.deps.Config.Paths.VaultDir, rec.Classification.DestinationFolder)
	current := rec.CurrentPath()
	if filepath.Dir(current) == destDir {
		return stage.Done("already in " + rec.Classification.DestinationFolder), nil
	}

	dest := filepath.Join(destDir, filepath.Base(current))
	dest, err := vault.UniquePath(m.deps.Storage, dest)
	if err != nil {
		return stage.Result{}, services.Wrap(nil, "moving", "unique path", "resolve destination path", err)
	}
	if err := m.deps.Storage.Move(current, dest); err != nil {
		return stage.Result{}, services.Wrap(services.ErrStaleFile, "moving", "move", "move note to destination folder", err)
	}
	rec.NewPath = dest
	return stage.Done("moved to " + rec.Classification.DestinationFolder), nil
}
