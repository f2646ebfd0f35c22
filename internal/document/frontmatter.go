package document

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the parsed YAML header of a markdown file, partitioned
// into known fields (declared document columns) and the opaque remainder.
type Frontmatter struct {
	Known  map[string]any
	Opaque map[string]any
}

// SplitFrontmatter separates the YAML frontmatter block from the markdown
// body. Returns the raw frontmatter content ("" when absent) and the body.
// Frontmatter is only recognized when the first line is exactly "---"; an
// unclosed block is treated as absent.
func SplitFrontmatter(content string) (raw, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", content
}

// ParseFrontmatter parses and partitions a frontmatter block. knownFields
// decides which keys apply directly to the document; everything else folds
// into the opaque metadata map. Malformed YAML yields empty frontmatter:
// extraction proceeds without metadata rather than dropping the document.
func ParseFrontmatter(raw string, knownFields map[string]bool) Frontmatter {
	fm := Frontmatter{
		Known:  make(map[string]any),
		Opaque: make(map[string]any),
	}
	if strings.TrimSpace(raw) == "" {
		return fm
	}

	var data map[string]any
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return fm
	}
	for key, value := range data {
		if knownFields[key] {
			fm.Known[key] = value
		} else {
			fm.Opaque[key] = value
		}
	}
	return fm
}
