package stages

import (
	"context"

	"shelver/internal/records"
	"shelver/internal/stage"
)

// Completed is the terminal marker stage. The runner observes its log and
// fires the completion notification.
type Completed struct {
	deps *Deps
}

func NewCompleted(deps *Deps) *Completed {
	return &Completed{deps: deps}
}

func (c *Completed) Action() records.Action {
	return records.ActionCompleted
}

func (c *Completed) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	return stage.Done("pipeline complete"), nil
}
