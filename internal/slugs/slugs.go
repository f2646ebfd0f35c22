// Package slugs provides the slugification strategies used when deriving
// document and asset identifiers.
//
// There are several strategies because different node kinds carry different
// naming material:
//   - Title slugs: lowercase slugs from document titles and heading text.
//   - Image slugs: from the image title, else alt text, else the filename stem.
//   - Code slugs: from the fence language plus the words of the meta string.
//   - Link slugs: from the link title, else the visible text.
//
// All strategies are built on gosimple/slug so their unicode handling stays
// consistent.
package slugs

import (
	"path"
	"strings"

	goslug "github.com/gosimple/slug"
)

// Title converts a title or heading text to a lowercase URL-safe slug.
func Title(text string) string {
	return goslug.Make(text)
}

// Image derives a slug for an image node from its title, alt text or URL.
func Image(title, alt, url string) string {
	if title != "" {
		return goslug.Make(title)
	}
	if alt != "" {
		return goslug.Make(alt)
	}
	base := path.Base(url)
	base = strings.TrimSuffix(base, path.Ext(base))
	return goslug.Make(base)
}

// Code derives a slug for a fenced code block from its language tag and
// meta string: "yaml" + "gallery view" -> "yaml-gallery-view".
func Code(language, meta string) string {
	parts := []string{language}
	parts = append(parts, strings.Fields(meta)...)
	return goslug.Make(strings.Join(parts, "-"))
}

// Link derives a slug for a link node from its title or visible text.
func Link(title, text string) string {
	if title != "" {
		return goslug.Make(title)
	}
	return goslug.Make(text)
}
