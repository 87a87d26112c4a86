package stages

import (
	"context"
	"path/filepath"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/vault"
)

// Container creates a markdown note for binary inputs so the rest of the
// pipeline has a text file to track. The original file becomes the record's
// attachment.
type Container struct {
	deps *Deps
}

func NewContainer(deps *Deps) *Container {
	return &Container{deps: deps}
}

func (c *Container) Action() records.Action {
	return records.ActionContainer
}

func (c *Container) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if kindOf(rec.Path) == kindText {
		return stage.Skip("text input needs no container"), nil
	}
	if rec.AttachmentPath != "" {
		return stage.Done("container already tracked"), nil
	}

	notePath := filepath.Join(filepath.Dir(rec.Path), baseName(rec.Path)+".md")
	notePath, err := vault.UniquePath(c.deps.Storage, notePath)
	if err != nil {
		return stage.Result{}, services.Wrap(nil, "container", "unique path", "resolve container note path", err)
	}
	if err := c.deps.Storage.Write(notePath, nil); err != nil {
		return stage.Result{}, services.Wrap(nil, "container", "write", "create container note", err)
	}

	rec.AttachmentPath = rec.Path
	rec.Path = notePath
	return stage.Done("created " + filepath.Base(notePath)), nil
}
