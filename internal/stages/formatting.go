package stages

import (
	"context"
	"strings"
	"time"

	"shelver/internal/records"
	"shelver/internal/services"
	"shelver/internal/stage"
)

// Formatting rewrites the note body through the configured template. The
// template may reference {{title}}, {{content}}, {{date}}, and {{tags}}.
type Formatting struct {
	deps *Deps
}

func NewFormatting(deps *Deps) *Formatting {
	return &Formatting{deps: deps}
}

func (f *Formatting) Action() records.Action {
	return records.ActionFormatting
}

func (f *Formatting) Execute(ctx context.Context, run *stage.Run) (stage.Result, error) {
	templatePath := f.deps.Config.Formatting.TemplatePath
	if templatePath == "" {
		return stage.Skip("no template configured"), nil
	}
	template, err := f.deps.Storage.Read(templatePath)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrConfiguration, "formatting", "template", "read note template", err)
	}

	rec := run.Record
	var tags []string
	if rec.Classification != nil {
		tags = rec.Classification.Tags
	}
	rendered := strings.NewReplacer(
		"{{title}}", baseName(rec.CurrentName()),
		"{{content}}", run.Content,
		"{{date}}", time.Now().Format("2006-01-02"),
		"{{tags}}", strings.Join(tags, ", "),
	).Replace(string(template))

	current := rec.CurrentPath()
	existing, err := f.deps.Storage.Read(current)
	if err != nil {
		return stage.Result{}, services.Wrap(services.ErrStaleFile, "formatting", "read", "read note for formatting", err)
	}
	frontMatter, _, hasFrontMatter := splitFrontMatter(string(existing))

	out := rendered
	if hasFrontMatter {
		out = "---\n" + frontMatter + "\n---\n" + rendered
	}
	if err := f.deps.Storage.Write(current, []byte(out)); err != nil {
		return stage.Result{}, services.Wrap(nil, "formatting", "write", "write formatted note", err)
	}
	run.Content = rendered
	return stage.Done("applied template"), nil
}
