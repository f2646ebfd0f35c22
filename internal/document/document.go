// Package document models indexed documents and enumerates them from the
// content tree.
package document

import (
	"path"
	"strings"

	"github.com/contentstruct/contentstruct/internal/ids"
	"github.com/contentstruct/contentstruct/internal/slugs"
)

// URL types.
const (
	URLTypeDir  = "dir"  // index-style page representing its directory
	URLTypeFile = "file" // regular page
)

// Document is one content file, or one merged folder in bundle mode. It is
// re-derived fresh on every run; only assets and blobs persist identity
// across runs.
type Document struct {
	SID     string // short hash of UID, primary key
	UID     string // path/slug derived logical identity
	Path    string // path relative to the content root, slash separated
	URL     string
	URLType string
	Slug    string
	Title   string
	Format  string
	Level   int
	Order   int
	BaseDir string

	// Fields are the known frontmatter fields (declared document columns)
	// other than title/slug/order, applied directly to the document row.
	Fields map[string]any

	// Meta is the opaque frontmatter remainder, serialized as JSON into
	// the document row.
	Meta map[string]any

	// ModelUID references the model asset derived from the opaque
	// frontmatter or a co-located model file, if any.
	ModelUID string

	// Headings is filled by the content extractor with the document's
	// heading slugs in order.
	Headings []string
}

// URLTypeOf classifies a content-relative file path. A file named readme.md
// (any case) or sharing its name with its parent directory stands for the
// directory itself.
func URLTypeOf(filePath string) string {
	if strings.HasSuffix(strings.ToLower(filePath), "readme.md") {
		return URLTypeDir
	}
	stem := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	if stem == path.Base(path.Dir(filePath)) {
		return URLTypeDir
	}
	return URLTypeFile
}

// URLOf computes the document URL. Directory documents use their directory
// path; file documents append their slug to it.
func URLOf(urlType, filePath, slug string) string {
	dir := path.Dir(filePath)
	if urlType == URLTypeDir {
		if dir == "." {
			return ""
		}
		return dir
	}
	if dir == "." {
		return slug
	}
	return path.Join(dir, slug)
}

// LevelOf computes the nesting level. File documents sit one level below
// directory documents of the same directory depth, which keeps index pages
// at the same level as their sibling files.
func LevelOf(urlType, filePath string) int {
	const baseLevel = 1
	dir := path.Dir(filePath)
	if dir == "." || dir == "" {
		return baseLevel
	}
	pathLevel := len(strings.Split(dir, "/"))
	if urlType == URLTypeFile {
		return baseLevel + pathLevel + 1
	}
	return baseLevel + pathLevel
}

// SlugOf derives the document slug: an explicit frontmatter slug wins, then
// a slug from the title, then the parent directory name for directory
// documents, then the file name stem.
func SlugOf(fields map[string]any, filePath, urlType string) string {
	if v, ok := fields["slug"].(string); ok && v != "" {
		return v
	}
	if v, ok := fields["title"].(string); ok && v != "" {
		return slugs.Title(v)
	}
	if dir := path.Base(path.Dir(filePath)); urlType == URLTypeDir && dir != "." {
		return dir
	}
	return strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
}

// BaseDirOf returns the directory a document's relative asset paths resolve
// against.
func BaseDirOf(filePath string) string {
	dir := path.Dir(filePath)
	if dir == "" {
		return "."
	}
	return dir
}

// derive fills the identity fields computed from path and frontmatter.
func derive(doc *Document, fields map[string]any) {
	doc.URLType = URLTypeOf(doc.Path)
	doc.Slug = SlugOf(fields, doc.Path, doc.URLType)
	doc.URL = URLOf(doc.URLType, doc.Path, doc.Slug)
	doc.UID = ids.DocumentUID(doc.URL, doc.Slug, doc.Path)
	doc.SID = ids.Short(doc.UID)
	doc.Level = LevelOf(doc.URLType, doc.Path)
	doc.BaseDir = BaseDirOf(doc.Path)
	if v, ok := fields["title"].(string); ok && v != "" {
		doc.Title = v
	} else {
		doc.Title = doc.Slug
	}
}
