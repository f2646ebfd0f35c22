package document

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func collectSources(t *testing.T, e *Enumerator) []Source {
	t.Helper()
	var out []Source
	err := e.Walk(func(src Source) error {
		out = append(out, src)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	return out
}

func defaultKnown() map[string]bool {
	return map[string]bool{
		"title": true, "slug": true, "order": true,
		"description": true, "tags": true, "date": true,
	}
}

func TestWalkFiles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"readme.md":        "# Home",
		"guides/setup.md":  "---\ntitle: Setup Guide\ndescription: how to\n---\nBody here.",
		"guides/readme.md": "Guide index.",
		".hidden/skip.md":  "should not appear",
		"notes.txt":        "not markdown",
	})

	e := NewEnumerator(dir, false, defaultKnown())
	sources := collectSources(t, e)

	if len(sources) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(sources))
	}

	// Sorted enumeration: guides/readme.md, guides/setup.md, readme.md
	byPath := make(map[string]Source)
	for _, src := range sources {
		byPath[src.Entry.Path] = src
	}

	setup, ok := byPath["guides/setup.md"]
	if !ok {
		t.Fatal("missing guides/setup.md")
	}
	if setup.Entry.Title != "Setup Guide" {
		t.Errorf("Title = %q", setup.Entry.Title)
	}
	if setup.Entry.Slug != "setup-guide" {
		t.Errorf("Slug = %q", setup.Entry.Slug)
	}
	if setup.Entry.UID != "guides.setup-guide" {
		t.Errorf("UID = %q", setup.Entry.UID)
	}
	if setup.Entry.Fields["description"] != "how to" {
		t.Errorf("Fields = %v", setup.Entry.Fields)
	}
	if setup.Body != "Body here." {
		t.Errorf("Body = %q", setup.Body)
	}

	index := byPath["guides/readme.md"]
	if index.Entry.URLType != URLTypeDir {
		t.Errorf("readme URLType = %q", index.Entry.URLType)
	}
}

func TestWalkFilesOrderAssignment(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.md": "---\norder: 2\n---\nA",
		"b.md": "B",
		"c.md": "C",
	})

	e := NewEnumerator(dir, false, defaultKnown())
	sources := collectSources(t, e)

	orders := make(map[string]int)
	for _, src := range sources {
		orders[src.Entry.Path] = src.Entry.Order
	}
	if orders["a.md"] != 2 {
		t.Errorf("a.md order = %d, want explicit 2", orders["a.md"])
	}
	if orders["b.md"] != 1 {
		t.Errorf("b.md order = %d, want 1", orders["b.md"])
	}
	if orders["c.md"] != 3 {
		t.Errorf("c.md order = %d, want 3", orders["c.md"])
	}
}

func TestWalkFilesOpaqueFrontmatterBecomesModel(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"page.md": "---\ntitle: Page\nauthor: ada\n---\nBody",
	})

	e := NewEnumerator(dir, false, defaultKnown())
	sources := collectSources(t, e)

	src := sources[0]
	if src.Model == nil {
		t.Fatal("expected model asset from opaque frontmatter")
	}
	if src.Model.AssetUID != src.Entry.UID+"#frontmatter" {
		t.Errorf("model uid = %q", src.Model.AssetUID)
	}
	if src.Entry.ModelUID != src.Model.AssetUID {
		t.Errorf("document ModelUID = %q", src.Entry.ModelUID)
	}
	if len(src.Model.Payload) == 0 {
		t.Error("expected serialized payload")
	}
	if src.Entry.Meta["author"] != "ada" {
		t.Errorf("Meta = %v", src.Entry.Meta)
	}
}

func TestWalkFolderBundles(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"pack/01-intro.md": "Intro section.",
		"pack/02-body.md":  "---\ntitle: ignored\n---\nMain section.",
		"pack/meta.yml":    "title: The Pack\ndescription: bundled\nkind: pack",
		"other/solo.md":    "Solo.",
	})

	e := NewEnumerator(dir, true, defaultKnown())
	sources := collectSources(t, e)

	if len(sources) != 2 {
		t.Fatalf("expected 2 bundles, got %d", len(sources))
	}

	byDir := make(map[string]Source)
	for _, src := range sources {
		byDir[src.Entry.BaseDir] = src
	}

	pack := byDir["pack"]
	if pack.Entry.URLType != URLTypeDir {
		t.Errorf("bundle URLType = %q", pack.Entry.URLType)
	}
	if pack.Entry.Format != "bundle" {
		t.Errorf("bundle Format = %q", pack.Entry.Format)
	}
	if pack.Body != "Intro section.\n\nMain section." {
		t.Errorf("bundle Body = %q", pack.Body)
	}
	if pack.Model == nil {
		t.Fatal("expected folder model from meta.yml")
	}
	if pack.Model.Ref == nil || pack.Model.Ref.Path != "pack/meta.yml" {
		t.Errorf("model ref = %+v", pack.Model.Ref)
	}
	if pack.Entry.Title != "The Pack" {
		t.Errorf("bundle Title = %q", pack.Entry.Title)
	}
	if pack.Entry.Fields["description"] != "bundled" {
		t.Errorf("bundle Fields = %v", pack.Entry.Fields)
	}
	if pack.Entry.Meta["kind"] != "pack" {
		t.Errorf("bundle Meta = %v", pack.Entry.Meta)
	}
}

func TestWalkMissingContentDir(t *testing.T) {
	e := NewEnumerator(filepath.Join(t.TempDir(), "nope"), false, nil)
	err := e.Walk(func(Source) error { return nil })
	if err == nil {
		t.Error("expected error for missing content directory")
	}
}
