// Package config handles indexer configuration.
//
// The configuration is an explicit value threaded through every component
// constructor; nothing in this repository reads it from a global.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Defaults for blob placement decisions.
const (
	DefaultExternalStorageKB   = 512
	DefaultInlineCompressionKB = 32
)

// DefaultCompressExtensions lists the small-payload extensions worth
// compressing inline.
var DefaultCompressExtensions = []string{"txt", "md", "json", "csv", "tsv", "yaml", "yml"}

// Config holds all settings for an indexing run.
type Config struct {
	// RootDir is the project root. ContentDir and OutDir are resolved
	// against it when relative.
	RootDir string `toml:"root_dir"`

	// ContentDir is the content tree to index.
	ContentDir string `toml:"content_dir"`

	// OutDir receives the structure database and external blobs.
	OutDir string `toml:"out_dir"`

	// CatalogPath points to the schema catalog YAML. Empty means the
	// built-in catalog.
	CatalogPath string `toml:"catalog"`

	// FolderBundle merges all markdown files of a directory into one
	// document instead of indexing each file separately.
	FolderBundle bool `toml:"folder_bundle"`

	// ExternalStorageKB is the blob size above which payloads are written
	// to external files instead of inline database rows.
	ExternalStorageKB int `toml:"external_storage_kb"`

	// InlineCompressionKB is the inline payload size at or above which
	// gzip compression is attempted.
	InlineCompressionKB int `toml:"inline_compression_kb"`

	// CompressExtensions overrides the compressible-extension allow-list
	// for payloads sourced from files.
	CompressExtensions []string `toml:"compress_ext"`

	// LinkExtensions lists the file extensions for which links become
	// linked-file assets. Empty disables link assets.
	LinkExtensions []string `toml:"link_ext"`

	// RunType tags the version row written for this run.
	RunType string `toml:"run_type"`

	// Tags are free-form labels stored on the version row.
	Tags []string `toml:"tags"`
}

// Default returns a config with all defaults applied, rooted at dir.
func Default(dir string) *Config {
	cfg := &Config{
		RootDir:    dir,
		ContentDir: "content",
		OutDir:     ".structure",
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML config file and applies defaults. A missing file is not
// an error: the defaults rooted at dir are returned.
func Load(dir, path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(dir, "structure.toml")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(dir), nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.RootDir == "" {
		cfg.RootDir = dir
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.OutDir == "" {
		c.OutDir = ".structure"
	}
	if c.ExternalStorageKB <= 0 {
		c.ExternalStorageKB = DefaultExternalStorageKB
	}
	if c.InlineCompressionKB <= 0 {
		c.InlineCompressionKB = DefaultInlineCompressionKB
	}
	if len(c.CompressExtensions) == 0 {
		c.CompressExtensions = append([]string(nil), DefaultCompressExtensions...)
	}
	if c.RunType == "" {
		c.RunType = "index"
	}
}

// AbsContentDir returns the content directory resolved against RootDir.
func (c *Config) AbsContentDir() string {
	return c.resolve(c.ContentDir)
}

// AbsOutDir returns the output directory resolved against RootDir.
func (c *Config) AbsOutDir() string {
	return c.resolve(c.OutDir)
}

// PublicDir returns the directory checked for root-relative asset paths.
func (c *Config) PublicDir() string {
	return filepath.Join(c.RootDir, "public")
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.RootDir, dir)
}

// CompressibleExtensionSet returns the normalized compressible-extension
// allow-list (lowercase, no leading dot).
func (c *Config) CompressibleExtensionSet() map[string]bool {
	return extensionSet(c.CompressExtensions)
}

// LinkExtensionSet returns the normalized linkable-file extension set.
func (c *Config) LinkExtensionSet() map[string]bool {
	return extensionSet(c.LinkExtensions)
}

func extensionSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "."))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
