package llm

import (
	"fmt"
	"strings"
)

// classificationSystemPrompt captures the instructions sent to the model when
// filing an inbox note. Keep updates centralized here so it is easy to tweak
// without hunting through call sites.
const classificationSystemPrompt = `You are an assistant that files notes into a personal knowledge vault.

Given the text of a note, choose:

- "destination_folder": the vault folder the note belongs in. Prefer one of the existing folders when a reasonable fit exists; propose a new folder path only when nothing fits.

- "tags": 1 to 4 short lowercase topic tags, no "#" prefix.

- "suggested_name": a concise, human-readable filename for the note, without extension. Leave empty if the current name is already good.

You must respond ONLY with a JSON object like:
{"destination_folder": "Projects/Gardening", "tags": ["compost", "soil"], "suggested_name": "Compost Ratios"}`

// imageExtractionSystemPrompt asks the model to turn an image into text so it
// can flow through the same pipeline as notes.
const imageExtractionSystemPrompt = `You are an assistant that transcribes images for a note archive.

The user message is a data URL containing an image. Extract all legible text and briefly describe the image content.

You must respond ONLY with a JSON object like: {"text": "..."}`

func buildClassificationPrompt(req ClassifyRequest) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.OriginalName); name != "" {
		fmt.Fprintf(&b, "Current filename: %s\n", name)
	}
	if len(req.Folders) > 0 {
		fmt.Fprintf(&b, "Existing folders: %s\n", strings.Join(req.Folders, ", "))
	}
	if len(req.ExistingTags) > 0 {
		fmt.Fprintf(&b, "Tags already in use: %s\n", strings.Join(req.ExistingTags, ", "))
	}
	b.WriteString("\nNote content:\n")
	b.WriteString(req.Content)
	return b.String()
}
