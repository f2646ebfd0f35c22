package assets

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Resolver checks local and public existence of file-backed assets and
// attaches absolute paths.
type Resolver struct {
	// ContentDir is the content root relative asset paths resolve against.
	ContentDir string

	// PublicDir is the root for "/"-prefixed asset paths. Empty disables
	// public resolution.
	PublicDir string

	// Warnf receives one message per dropped or missing record. Nil
	// silences warnings.
	Warnf func(format string, args ...any)
}

// ResolveAll resolves every file-backed asset in list in place.
func (r *Resolver) ResolveAll(list []Asset) {
	for _, asset := range list {
		ref := asset.FileRef()
		if ref == nil || ref.Path == "" {
			continue
		}
		r.resolve(asset, ref)
	}
}

func (r *Resolver) resolve(asset Asset, ref *FileRef) {
	if ref.Ext == "" {
		ref.Ext = ExtOf(ref.Path)
	}

	var abs string
	if strings.HasPrefix(ref.Path, "/") {
		if r.PublicDir == "" {
			return
		}
		abs = filepath.Join(r.PublicDir, filepath.FromSlash(ref.Path))
	} else {
		abs = filepath.Join(r.ContentDir, filepath.FromSlash(ref.Path))
	}

	if _, err := os.Stat(abs); err == nil {
		ref.Exists = true
		ref.AbsPath = abs
		return
	}

	ref.Exists = false
	if r.Warnf != nil {
		r.Warnf("asset %s references missing file '%s'", asset.UID(), ref.Path)
	}
}

// DecodePath percent-decodes an asset path, falling back to the raw string
// when the encoding is malformed.
func DecodePath(p string) string {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return decoded
}

// ExtOf returns the lowercase extension of an asset path without the dot,
// ignoring any query or fragment suffix.
func ExtOf(p string) string {
	if idx := strings.IndexAny(p, "?#"); idx >= 0 {
		p = p[:idx]
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// IsExternalURL reports whether target points outside the content tree:
// protocol URLs ("https:...", "mailto:...") and host-relative "//" URLs.
func IsExternalURL(target string) bool {
	trimmed := strings.TrimSpace(target)
	if strings.HasPrefix(trimmed, "//") {
		return true
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == ':' {
			return i > 0
		}
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isSchemeChar := isAlpha || (i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'))
		if !isSchemeChar {
			return false
		}
	}
	return false
}

// ResolveDocumentPath joins a document-relative target against the
// document's base directory, leaving root-relative targets untouched, and
// percent-decodes the result.
func ResolveDocumentPath(baseDir, target string) string {
	if target == "" {
		return target
	}
	raw := target
	if !strings.HasPrefix(target, "/") {
		if baseDir == "" || baseDir == "." {
			raw = target
		} else {
			raw = path.Join(baseDir, target)
		}
	}
	return DecodePath(raw)
}
