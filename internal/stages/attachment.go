package stages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
	"shelver/internal/vault"
)

// MovingAttachment relocates the original binary into the attachments folder
// and embeds it in the container note.
type MovingAttachment struct {
	deps *Deps
}

func NewMovingAttachment(deps *Deps) *MovingAttachment {
	return &MovingAttachment{deps: deps}
}

func (m *MovingAttachment) Action() records.Action {
	return records.ActionMovingAttachment
}

func (m *MovingAttachment) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if rec.AttachmentPath == "" {
		return stage.Skip("no attachment"), nil
	}

	attachmentsDir := m.deps.Config.Paths.AttachmentsDir
	if strings.HasPrefix(rec.AttachmentPath, attachmentsDir+string(filepath.Separator)) {
		return stage.Done("attachment already in place"), nil
	}

	dest := filepath.Join(attachmentsDir, filepath.Base(rec.AttachmentPath))
	dest, err := vault.UniquePath(m.deps.Storage, dest)
	if err != nil {
		return stage.Result{}, services.Wrap(nil, "moving_attachment", "unique path", "resolve attachment destination", err)
	}
	if err := m.deps.Storage.Move(rec.AttachmentPath, dest); err != nil {
		return stage.Result{}, services.Wrap(nil, "moving_attachment", "move", "move attachment into attachments folder", err)
	}
	rec.AttachmentPath = dest

	embed := fmt.Sprintf("![[%s]]\n", filepath.Base(dest))
	if err := m.deps.Storage.Append(rec.CurrentPath(), []byte(embed)); err != nil {
		return stage.Result{}, services.Wrap(nil, "moving_attachment", "link", "embed attachment in container note", err)
	}
	return stage.Done("moved to " + filepath.Base(dest)), nil
}
