package extract

import (
	"os"
	"path"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// galleryMeta is the code-block meta word that marks a yaml block as a
// gallery declaration.
const galleryMeta = "gallery"

// isGalleryBlock reports whether a fenced code block declares a gallery.
func isGalleryBlock(language, meta string) bool {
	return language == "yaml" && meta == galleryMeta
}

// galleryDirSpec is the {dir: <path>} form of a gallery body.
type galleryDirSpec struct {
	Dir string `yaml:"dir"`
}

// galleryPaths expands a gallery code body into document-relative asset
// paths. The body is either an explicit YAML list of relative paths or a
// {dir: <path>} reference expanded by listing that directory. Malformed
// YAML yields no paths; extraction continues without the gallery.
func galleryPaths(body, baseDir, contentDir string) []string {
	var explicit []string
	if err := yaml.Unmarshal([]byte(body), &explicit); err == nil && len(explicit) > 0 {
		return explicit
	}

	var spec galleryDirSpec
	if err := yaml.Unmarshal([]byte(body), &spec); err != nil || spec.Dir == "" {
		return nil
	}

	relDir := spec.Dir
	if baseDir != "" && baseDir != "." {
		relDir = path.Join(baseDir, spec.Dir)
	}
	entries, err := os.ReadDir(filepath.Join(contentDir, filepath.FromSlash(relDir)))
	if err != nil {
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Paths stay document-relative so the usual base-dir resolution
		// applies.
		paths = append(paths, path.Join(spec.Dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths
}
