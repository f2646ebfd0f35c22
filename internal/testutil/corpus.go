// Package testutil provides reusable test fixtures for indexer tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/contentstruct/contentstruct/internal/config"
)

// Corpus is a temporary content tree for testing.
type Corpus struct {
	Root  string
	t     *testing.T
	files map[string]string
}

// NewCorpus creates a new corpus builder. Call Build to create the actual
// directory tree.
func NewCorpus(t *testing.T) *Corpus {
	t.Helper()
	return &Corpus{
		t:     t,
		files: make(map[string]string),
	}
}

// WithContent adds a file under the content directory. The path is
// content-relative, slash separated.
func (c *Corpus) WithContent(path, content string) *Corpus {
	c.files[filepath.Join("content", filepath.FromSlash(path))] = content
	return c
}

// WithFile adds a file at a root-relative path, e.g. a config file or a
// public asset.
func (c *Corpus) WithFile(path, content string) *Corpus {
	c.files[filepath.FromSlash(path)] = content
	return c
}

// Build creates the corpus directory and all configured files.
func (c *Corpus) Build() *Corpus {
	c.t.Helper()
	c.Root = c.t.TempDir()
	for path, content := range c.files {
		c.writeFile(path, content)
	}
	return c
}

// Config returns a default config rooted at the corpus.
func (c *Corpus) Config() *config.Config {
	return config.Default(c.Root)
}

// ContentDir returns the corpus content directory.
func (c *Corpus) ContentDir() string {
	return filepath.Join(c.Root, "content")
}

// WriteContent writes a content file after Build, for re-run scenarios.
func (c *Corpus) WriteContent(path, content string) {
	c.t.Helper()
	c.writeFile(filepath.Join("content", filepath.FromSlash(path)), content)
}

func (c *Corpus) writeFile(relPath, content string) {
	c.t.Helper()
	fullPath := filepath.Join(c.Root, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		c.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a root-relative file from the corpus.
func (c *Corpus) ReadFile(relPath string) string {
	c.t.Helper()
	content, err := os.ReadFile(filepath.Join(c.Root, filepath.FromSlash(relPath)))
	if err != nil {
		c.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks whether a root-relative file exists.
func (c *Corpus) FileExists(relPath string) bool {
	c.t.Helper()
	_, err := os.Stat(filepath.Join(c.Root, filepath.FromSlash(relPath)))
	return err == nil
}
