package stages

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// splitFrontMatter separates a YAML front matter block from the note body.
// ok is false when the content carries no front matter.
func splitFrontMatter(content string) (frontMatter, body string, ok bool) {
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}
	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", content, false
	}
	frontMatter = rest[:idx]
	body = rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return frontMatter, body, true
}

// parseFrontMatter decodes a front matter block into its top-level mapping
// node. Returns nil when the block is empty or not a mapping.
func parseFrontMatter(block string) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil
	}
	return doc.Content[0]
}

// findKey locates key in a mapping node. idx is the key's position in
// Content, -1 when absent.
func findKey(mapping *yaml.Node, key string) (idx int, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return i, mapping.Content[i+1]
		}
	}
	return -1, nil
}

// tagValues flattens a tags node. A bare scalar counts as a single tag.
func tagValues(node *yaml.Node) []string {
	if node == nil {
		return nil
	}
	var tags []string
	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if tag := strings.TrimSpace(item.Value); tag != "" {
				tags = append(tags, tag)
			}
		}
	case yaml.ScalarNode:
		if tag := strings.TrimSpace(node.Value); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// frontMatterTags reads the tags list out of a front matter block. Both the
// inline form (tags: [a, b]) and the block form are understood.
func frontMatterTags(frontMatter string) []string {
	mapping := parseFrontMatter(frontMatter)
	if mapping == nil {
		return nil
	}
	_, value := findKey(mapping, "tags")
	return tagValues(value)
}

// upsertTags merges tags into the note's front matter, creating the block
// when missing. The rest of the front matter round-trips through the YAML
// node tree untouched, key order and comments included; duplicates are never
// written. Unparseable front matter is left alone.
func upsertTags(content string, tags []string) (string, []string) {
	frontMatter, body, ok := splitFrontMatter(content)

	mapping := parseFrontMatter(frontMatter)
	if mapping == nil {
		if ok && strings.TrimSpace(frontMatter) != "" {
			return content, nil
		}
		mapping = &yaml.Node{Kind: yaml.MappingNode}
	}

	idx, value := findKey(mapping, "tags")
	existing := tagValues(value)

	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing)+len(tags))
	for _, tag := range existing {
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	var added []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
		added = append(added, tag)
	}
	if len(added) == 0 {
		return content, nil
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, tag := range merged {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: tag})
	}
	if idx >= 0 {
		mapping.Content[idx+1] = seq
	} else {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "tags"},
			seq,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return content, nil
	}
	_ = enc.Close()
	block := strings.TrimSuffix(buf.String(), "\n")

	if !ok {
		return "---\n" + block + "\n---\n\n" + content, added
	}
	return "---\n" + block + "\n---\n" + body, added
}
