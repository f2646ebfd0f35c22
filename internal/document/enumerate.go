package document

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/contentstruct/contentstruct/internal/assets"
	"github.com/contentstruct/contentstruct/internal/ids"
)

// Source is one enumerated document together with its markdown body
// (frontmatter already stripped) and optional model asset.
type Source struct {
	Entry *Document
	Body  string
	Model *assets.Model
}

// Enumerator walks the content tree and produces documents. It is a
// single-use, forward-only sequence: order allocation state accumulates
// over one pass.
type Enumerator struct {
	contentDir   string
	folderBundle bool
	knownFields  map[string]bool
	orders       *orderAllocator
}

// NewEnumerator creates an enumerator over contentDir. knownFields decides
// which frontmatter keys apply directly to documents; it is normally
// derived from the catalog's documents table via KnownFieldSet.
func NewEnumerator(contentDir string, folderBundle bool, knownFields map[string]bool) *Enumerator {
	return &Enumerator{
		contentDir:   contentDir,
		folderBundle: folderBundle,
		knownFields:  knownFields,
		orders:       newOrderAllocator(),
	}
}

// derivedColumns are document columns computed by the enumerator itself;
// frontmatter must not override them, so they are excluded from the known
// field set.
var derivedColumns = map[string]bool{
	"sid": true, "uid": true, "path": true, "url": true, "url_type": true,
	"format": true, "level": true, "base_dir": true, "model": true,
	"meta": true, "headings_list": true,
}

// KnownFieldSet derives the known frontmatter keys from the declared
// document column names.
func KnownFieldSet(columns []string) map[string]bool {
	known := make(map[string]bool, len(columns))
	for _, name := range columns {
		if !derivedColumns[name] {
			known[name] = true
		}
	}
	return known
}

// Walk enumerates all documents and calls handler for each. A handler
// error aborts the walk.
func (e *Enumerator) Walk(handler func(Source) error) error {
	if info, err := os.Stat(e.contentDir); err != nil || !info.IsDir() {
		return fmt.Errorf("content directory %s is missing or not a directory", e.contentDir)
	}
	if e.folderBundle {
		return e.walkFolderBundles(handler)
	}
	return e.walkFiles(handler)
}

func (e *Enumerator) walkFiles(handler func(Source) error) error {
	paths, err := e.listFiles(".md")
	if err != nil {
		return err
	}
	for _, relPath := range paths {
		source, err := e.fileSource(relPath)
		if err != nil {
			return err
		}
		if err := handler(source); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enumerator) fileSource(relPath string) (Source, error) {
	raw, err := os.ReadFile(filepath.Join(e.contentDir, filepath.FromSlash(relPath)))
	if err != nil {
		return Source{}, fmt.Errorf("failed to read %s: %w", relPath, err)
	}

	fmRaw, body := SplitFrontmatter(string(raw))
	fm := ParseFrontmatter(fmRaw, e.knownFields)

	doc := &Document{Path: relPath, Format: "md"}
	derive(doc, fm.Known)
	e.applyKnownFields(doc, fm.Known)
	if len(fm.Opaque) > 0 {
		doc.Meta = fm.Opaque
	}

	model := frontmatterModel(doc, fm.Opaque)
	if model != nil {
		doc.ModelUID = model.AssetUID
	}
	return Source{Entry: doc, Body: body, Model: model}, nil
}

func (e *Enumerator) walkFolderBundles(handler func(Source) error) error {
	markdown, err := e.listFiles(".md")
	if err != nil {
		return err
	}
	models, err := e.listFiles(".yml", ".yaml")
	if err != nil {
		return err
	}

	buckets := make(map[string][]string)
	for _, p := range markdown {
		dir := BaseDirOf(p)
		buckets[dir] = append(buckets[dir], p)
	}
	modelsByDir := make(map[string][]string)
	for _, p := range models {
		dir := BaseDirOf(p)
		modelsByDir[dir] = append(modelsByDir[dir], p)
	}

	dirs := make([]string, 0, len(buckets))
	for dir := range buckets {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		source, err := e.bundleSource(dir, buckets[dir], modelsByDir[dir])
		if err != nil {
			return err
		}
		if err := handler(source); err != nil {
			return err
		}
	}
	return nil
}

func (e *Enumerator) bundleSource(dir string, files, modelFiles []string) (Source, error) {
	sort.Strings(files)

	var sections []string
	for _, relPath := range files {
		raw, err := os.ReadFile(filepath.Join(e.contentDir, filepath.FromSlash(relPath)))
		if err != nil {
			return Source{}, fmt.Errorf("failed to read %s: %w", relPath, err)
		}
		_, body := SplitFrontmatter(string(raw))
		if trimmed := strings.TrimSpace(body); trimmed != "" {
			sections = append(sections, trimmed)
		}
	}

	primary := files[0]
	doc := &Document{Path: primary, Format: "bundle"}
	// Bundles are always directory documents: the folder is the unit.
	doc.URLType = URLTypeDir
	doc.Slug = SlugOf(nil, primary, URLTypeDir)
	doc.URL = URLOf(URLTypeDir, primary, doc.Slug)
	doc.UID = ids.DocumentUID(doc.URL, doc.Slug, primary)
	doc.SID = ids.Short(doc.UID)
	doc.Level = LevelOf(URLTypeDir, primary)
	doc.BaseDir = dir
	doc.Title = doc.Slug

	model := folderModel(doc, modelFiles)
	fm := Frontmatter{Known: map[string]any{}, Opaque: map[string]any{}}
	if model != nil {
		doc.ModelUID = model.AssetUID
		raw, err := os.ReadFile(filepath.Join(e.contentDir, filepath.FromSlash(model.Ref.Path)))
		if err != nil {
			return Source{}, fmt.Errorf("failed to read %s: %w", model.Ref.Path, err)
		}
		fm = ParseFrontmatter(string(raw), e.knownFields)
		if title, ok := fm.Known["title"].(string); ok && title != "" {
			doc.Title = title
		}
	}
	e.applyKnownFields(doc, fm.Known)
	if len(fm.Opaque) > 0 {
		doc.Meta = fm.Opaque
	}
	return Source{Entry: doc, Body: strings.Join(sections, "\n\n"), Model: model}, nil
}

// applyKnownFields applies known frontmatter to the document. Title and
// slug already went into derivation; order feeds the sibling allocator;
// the rest lands on Fields for the writer to bind by column name.
func (e *Enumerator) applyKnownFields(doc *Document, known map[string]any) {
	explicit := 0
	if v, ok := known["order"]; ok {
		if n, ok := toInt(v); ok && n > 0 {
			explicit = n
		}
	}
	doc.Order = e.orders.Assign(doc.BaseDir, doc.Level, explicit)

	for key, value := range known {
		switch key {
		case "title", "slug", "order":
			continue
		}
		if doc.Fields == nil {
			doc.Fields = make(map[string]any)
		}
		doc.Fields[key] = value
	}
}

// frontmatterModel wraps the opaque frontmatter remainder in a model asset
// so it participates in blob dedup like any other content.
func frontmatterModel(doc *Document, opaque map[string]any) *assets.Model {
	if len(opaque) == 0 {
		return nil
	}
	payload, err := json.Marshal(opaque)
	if err != nil {
		return nil
	}
	uid := ids.AssetUID(doc.UID, "frontmatter")
	return &assets.Model{
		Identity: assets.Identity{
			AssetUID:     uid,
			AssetSID:     ids.Short(uid),
			DocumentSID:  doc.SID,
			ParentDocUID: doc.UID,
		},
		Payload: payload,
	}
}

// folderModel selects the lexicographically first model file of a bundle.
func folderModel(doc *Document, modelFiles []string) *assets.Model {
	if len(modelFiles) == 0 {
		return nil
	}
	sorted := append([]string(nil), modelFiles...)
	sort.Strings(sorted)
	selected := sorted[0]

	uid := ids.AssetUID(doc.UID, path.Base(selected))
	return &assets.Model{
		Identity: assets.Identity{
			AssetUID:     uid,
			AssetSID:     ids.Short(uid),
			DocumentSID:  doc.SID,
			ParentDocUID: doc.UID,
		},
		Ref: &assets.FileRef{Path: selected},
	}
}

// listFiles returns content-relative slash paths of files with one of the
// given extensions, sorted for deterministic enumeration. Hidden
// directories are skipped.
func (e *Enumerator) listFiles(exts ...string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(e.contentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != e.contentDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		for _, want := range exts {
			if ext == want {
				rel, err := filepath.Rel(e.contentDir, p)
				if err != nil {
					return err
				}
				out = append(out, filepath.ToSlash(rel))
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
