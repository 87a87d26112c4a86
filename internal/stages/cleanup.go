package stages

import (
	"context"
	"regexp"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Cleanup normalizes the working text: trailing whitespace is stripped, runs
// of blank lines collapse to one, and an empty result bypasses the file.
type Cleanup struct {
	deps *Deps
}

func NewCleanup(deps *Deps) *Cleanup {
	return &Cleanup{deps: deps}
}

func (c *Cleanup) Action() records.Action {
	return records.ActionCleanup
}

func (c *Cleanup) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	lines := strings.Split(strings.ReplaceAll(run.Content, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	cleaned := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return stage.Result{}, services.Bypass("empty file")
	}
	run.Content = cleaned
	return stage.Done(""), nil
}
