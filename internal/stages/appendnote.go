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

// Append links the processed note from a configured collection note, giving
// the vault a running index of everything the inbox produced.
type Append struct {
	deps *Deps
}

func NewAppend(deps *Deps) *Append {
	return &Append{deps: deps}
}

func (a *Append) Action() records.Action {
	return records.ActionAppend
}

func (a *Append) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	target := a.deps.Config.Formatting.AppendTo
	if target == "" {
		return stage.Skip("no append target configured"), nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(a.deps.Config.Paths.VaultDir, target)
	}

	noteName := baseName(run.Record.CurrentName())
	line := fmt.Sprintf("- [[%s]]\n", noteName)

	if data, err := a.deps.Storage.Read(target); err == nil {
		if containsLine(string(data), line) {
			return stage.Done("already linked"), nil
		}
	}
	if err := a.deps.Storage.Append(target, []byte(line)); err != nil {
		return stage.Result{}, services.Wrap(nil, "append", "write", "append link to collection note", err)
	}
	return stage.Done("linked from " + filepath.Base(target)), nil
}

// containsLine reports whether content already carries the exact line.
func containsLine(content, line string) bool {
	target := strings.TrimSuffix(line, "\n")
	for _, existing := range strings.Split(content, "\n") {
		if strings.TrimSpace(existing) == target {
			return true
		}
	}
	return false
}
