package stages

import (
	"context"
	"fmt"
	"strings"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/services/llm"
	"shelver/internal/stage"
)

// Classify asks the LLM collaborator where the note belongs, what it should
// be called, and which tags apply. The verdict is persisted on the record so
// a retry after this point never re-calls the service.
type Classify struct {
	deps *Deps
}

func NewClassify(deps *Deps) *Classify {
	return &Classify{deps: deps}
}

func (c *Classify) Action() records.Action {
	return records.ActionClassify
}

func (c *Classify) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	rec := run.Record
	if rec.Classification != nil && rec.Classification.DestinationFolder != "" {
		return stage.Done("reusing stored classification"), nil
	}
	if c.deps.Classifier == nil {
		return stage.Result{}, services.Wrap(services.ErrConfiguration, "classify", "request", "classification service is not configured", nil)
	}

	folders, err := c.deps.VaultFolders()
	if err != nil {
		return stage.Result{}, services.Wrap(nil, "classify", "folders", "list vault folders", err)
	}

	verdict, err := c.deps.Classifier.Classify(ctx, llm.ClassifyRequest{
		OriginalName: rec.OriginalName,
		Content:      run.Content,
		Folders:      folders,
		ExistingTags: rec.Tags,
	})
	if err != nil {
		return stage.Result{}, err
	}

	rec.Classification = &records.Classification{
		DestinationFolder: verdict.DestinationFolder,
		Tags:              verdict.Tags,
		SuggestedName:     verdict.SuggestedName,
	}
	detail := fmt.Sprintf("folder %q", verdict.DestinationFolder)
	if len(verdict.Tags) > 0 {
		detail += ", tags " + strings.Join(verdict.Tags, ", ")
	}
	return stage.Done(detail), nil
}
