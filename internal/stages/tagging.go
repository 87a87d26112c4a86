package stages

import (
	"context"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

// Tagging merges the classifier's tags into the note front matter and onto
// the record. Re-running is a set union and never duplicates a tag.
type Tagging struct {
	deps *Deps
}

func NewTagging(deps *Deps) *Tagging {
	return &Tagging{deps: deps}
}

func (t *Tagging) Action() records.Action {
	return records.ActionTagging
}

func (t *Tagging) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if rec.Classification == nil || len(rec.Classification.Tags) == 0 {
		return stage.Skip("no tags suggested"), nil
	}

	current := rec.CurrentPath()
	data, err := t.deps.Storage.Read(current)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrStaleFile, "tagging", "read", "read note for tagging", err)
	}

	updated, added := upsertTags(string(data), rec.Classification.Tags)
	if len(added) > 0 {
		if err := t.deps.Storage.Write(current, []byte(updated)); err != nil {
			return stage.Result{}, services.Wrap(nil, "tagging", "write", "write tagged note", err)
		}
	}
	rec.AddTags(rec.Classification.Tags...)

	if len(added) == 0 {
		return stage.Done("tags already present"), nil
	}
	return stage.Done("added " + strings.Join(added, ", ")), nil
}
