// Package ids provides the short hash identifiers and uid derivation rules
// shared by documents, assets and blobs.
package ids

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

// Short returns the 8-character hex prefix of the MD5 digest of text.
// This is the sid format used as primary key material throughout the
// structure database.
func Short(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:8]
}

// DocumentUID derives a document uid from its computed URL path, falling
// back to the slug, then a sanitized file path, then a hash of the raw path.
// The result is never empty.
func DocumentUID(urlPath, slug, fallbackPath string) string {
	if uid := normalizeURLToUID(urlPath); uid != "" {
		return uid
	}
	if slug != "" {
		return strings.ReplaceAll(slug, "/", ".")
	}
	if uid := sanitizePathToUID(fallbackPath); uid != "" {
		return uid
	}
	return Short(fallbackPath)
}

// AssetUID derives an asset uid from its owning document uid and a
// document-local slug.
func AssetUID(docUID, localSlug string) string {
	return docUID + "#" + localSlug
}

func normalizeURLToUID(urlPath string) string {
	segments := splitNonEmpty(urlPath, "/")
	return strings.Join(segments, ".")
}

func sanitizePathToUID(path string) string {
	// Strip the extension, then join path segments with dots.
	if idx := strings.LastIndex(path, "."); idx > strings.LastIndex(path, "/") {
		path = path[:idx]
	}
	segments := splitNonEmpty(path, "/")
	return strings.Join(segments, ".")
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NextUnique returns base if it is not yet in taken, otherwise the first
// "base-N" (N starting at 2) that is free. The caller records the result
// in taken.
func NextUnique(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
