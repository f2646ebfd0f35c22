package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Directive is a parsed directive marker: ":name[label]{key=value}" inline,
// "::name" as a leaf block, or ":::name" opening a container whose children
// are extracted in place.
type Directive struct {
	Name      string
	Label     string
	Attrs     map[string]string
	Container bool
}

// containerRegex matches a block-level directive marker at the start of a
// paragraph: "::name" (leaf) or ":::name" (container), with optional
// [label] and {attrs}.
var containerRegex = regexp.MustCompile(`^(:{2,3})([\w][\w-]*)(?:\[([^\]]*)\])?(?:\{([^}]*)\})?\s*$`)

// inlineRegex matches a text directive ":name[label]{attrs}" inside
// paragraph text. The (?:^|\s) guard keeps URLs ("https://...") from
// matching.
var inlineRegex = regexp.MustCompile(`(?:^|\s):([\w][\w-]*)\[([^\]]*)\](?:\{([^}]*)\})?`)

// parseBlockDirective recognizes a paragraph that is a directive marker.
// The bare closing fence ":::" returns ok with a nil directive, so callers
// can skip it.
func parseBlockDirective(text string) (*Directive, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == ":::" || trimmed == "::" {
		return nil, true
	}
	m := containerRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, false
	}
	return &Directive{
		Name:      m[2],
		Label:     m[3],
		Attrs:     parseAttrs(m[4]),
		Container: len(m[1]) == 3,
	}, true
}

// parseInlineDirectives extracts text directives from a paragraph run and
// returns the run text with each directive replaced by its "name(label)"
// rendering.
func parseInlineDirectives(text string) (string, []Directive) {
	matches := inlineRegex.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return text, nil
	}

	var directives []Directive
	for _, m := range matches {
		directives = append(directives, Directive{
			Name:  m[1],
			Label: m[2],
			Attrs: parseAttrs(m[3]),
		})
	}

	rendered := inlineRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := inlineRegex.FindStringSubmatch(match)
		prefix := ""
		if match[0] == ' ' {
			prefix = " "
		}
		return prefix + sub[1] + "(" + sub[2] + ")"
	})
	return rendered, directives
}

// parseAttrs parses a directive attribute string: space-separated key=value
// pairs, values optionally double-quoted, bare words as boolean flags.
func parseAttrs(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	attrs := make(map[string]string)
	for _, field := range strings.Fields(s) {
		key, value, found := strings.Cut(field, "=")
		if !found {
			attrs[key] = ""
			continue
		}
		attrs[key] = strings.Trim(value, `"`)
	}
	return attrs
}

// metadataJSON serializes a directive's attributes for storage on the item.
func (d *Directive) metadataJSON() string {
	payload := map[string]any{"name": d.Name}
	if d.Label != "" {
		payload["label"] = d.Label
	}
	if len(d.Attrs) > 0 {
		payload["attrs"] = d.Attrs
	}
	if d.Container {
		payload["container"] = true
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}
