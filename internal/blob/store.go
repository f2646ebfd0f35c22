// Package blob implements the content-addressable blob store.
//
// Every distinct byte sequence is identified by its SHA-512 digest and
// stored exactly once: large payloads as external files sharded by
// year/month/hash-prefix under the output root, small payloads inline in
// the database row, gzip-compressed when they are big enough and their
// source extension is on the compressible allow-list.
//
// The store keeps an in-memory hash index seeded from prior database state
// at startup. The index is a process-lifetime cache for exactly one writer
// process per database; it is not safe for concurrent writers.
package blob

import (
	"bytes"
	"compress/gzip"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/contentstruct/contentstruct/internal/atomicfile"
)

// Descriptor identifies one stored blob.
type Descriptor struct {
	UID         int64  // compact identifier, stable across runs
	Hash        string // sha512 hex over the raw bytes
	Size        int64
	Path        string // external location relative to the output root, "" when inline
	Payload     []byte // inline payload, nil when external
	Compression bool   // inline payload is gzip-compressed
	Known       bool   // hash was already recorded by a previous run
}

// Store decides blob placement and deduplicates by content hash.
type Store struct {
	outDir             string
	now                time.Time
	externalThreshold  int64
	inlineCompressMin  int64
	compressibleExts   map[string]bool
	index              map[string]*Descriptor // hash -> descriptor
	order              []string               // hashes in first-seen order
	nextUID            int64
	reencounteredKnown []string
}

// Options configures a Store.
type Options struct {
	// OutDir is the output root external blobs are written under.
	OutDir string

	// Now anchors the year/month shard for external blobs written this run.
	Now time.Time

	// ExternalThresholdBytes is the size above which payloads go to
	// external files. Zero or negative selects the 512 KiB default.
	ExternalThresholdBytes int64

	// InlineCompressMinBytes is the inline size at or above which
	// compression is attempted. Zero or negative selects the 32 KiB
	// default.
	InlineCompressMinBytes int64

	// CompressibleExtensions is the per-extension allow-list consulted for
	// payloads sourced from files.
	CompressibleExtensions map[string]bool
}

const (
	defaultExternalThreshold = 512 * 1024
	defaultInlineCompressMin = 32 * 1024
)

// NewStore creates a Store. Seed known hashes with Seed before first use so
// blob identity stays stable across runs.
func NewStore(opts Options) *Store {
	externalThreshold := opts.ExternalThresholdBytes
	if externalThreshold <= 0 {
		externalThreshold = defaultExternalThreshold
	}
	inlineCompressMin := opts.InlineCompressMinBytes
	if inlineCompressMin <= 0 {
		inlineCompressMin = defaultInlineCompressMin
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Store{
		outDir:            opts.OutDir,
		now:               now,
		externalThreshold: externalThreshold,
		inlineCompressMin: inlineCompressMin,
		compressibleExts:  opts.CompressibleExtensions,
		index:             make(map[string]*Descriptor),
		nextUID:           1,
	}
}

// Seed registers hashes already present in the database. maxUID is the
// highest blob uid assigned by any prior run; new blobs get uids above it.
func (s *Store) Seed(known map[string]int64, maxUID int64) {
	for hash, uid := range known {
		s.index[hash] = &Descriptor{UID: uid, Hash: hash, Known: true}
	}
	if maxUID >= s.nextUID {
		s.nextUID = maxUID + 1
	}
}

// Ensure stores data if its hash is new and returns the blob descriptor.
// extensionHint is the source file extension (no dot) when the bytes came
// from a file, or "" for in-memory content.
func (s *Store) Ensure(data []byte, extensionHint string) (*Descriptor, error) {
	sum := sha512.Sum512(data)
	hash := hex.EncodeToString(sum[:])

	if existing, ok := s.index[hash]; ok {
		if existing.Known && !containsString(s.reencounteredKnown, hash) {
			s.reencounteredKnown = append(s.reencounteredKnown, hash)
		}
		return existing, nil
	}

	desc, err := s.persist(data, hash, extensionHint)
	if err != nil {
		return nil, err
	}
	desc.UID = s.nextUID
	s.nextUID++
	s.index[hash] = desc
	s.order = append(s.order, hash)
	return desc, nil
}

// EnsureFromFile reads absPath and stores its contents. The compression
// hint is inferred from the file extension.
func (s *Store) EnsureFromFile(absPath string) (*Descriptor, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob source %s: %w", absPath, err)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(absPath), "."))
	return s.Ensure(data, ext)
}

// NewDescriptors returns the blobs first seen this run, in first-seen
// order. These are the rows the writer must insert.
func (s *Store) NewDescriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(s.order))
	for _, hash := range s.order {
		out = append(out, s.index[hash])
	}
	return out
}

// ReencounteredHashes returns known hashes seen again this run, for
// last_seen updates.
func (s *Store) ReencounteredHashes() []string {
	return s.reencounteredKnown
}

func (s *Store) persist(data []byte, hash, extensionHint string) (*Descriptor, error) {
	size := int64(len(data))

	if size > s.externalThreshold {
		relPath := s.externalPath(hash)
		if err := s.writeExternal(relPath, data); err != nil {
			return nil, err
		}
		return &Descriptor{Hash: hash, Size: size, Path: relPath}, nil
	}

	payload, compressed, err := s.prepareInline(data, extensionHint)
	if err != nil {
		return nil, err
	}
	return &Descriptor{Hash: hash, Size: size, Payload: payload, Compression: compressed}, nil
}

// externalPath shards external blobs by year/month/hash-prefix so no single
// directory accumulates every blob.
func (s *Store) externalPath(hash string) string {
	return path.Join("blobs",
		fmt.Sprintf("%04d", s.now.Year()),
		fmt.Sprintf("%02d", int(s.now.Month())),
		hash[:2],
		hash)
}

// writeExternal writes the blob file unless it already exists; a prior run
// with the same hash produced identical bytes.
func (s *Store) writeExternal(relPath string, data []byte) error {
	absPath := filepath.Join(s.outDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(absPath); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := atomicfile.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", relPath, err)
	}
	return nil
}

func (s *Store) prepareInline(data []byte, extensionHint string) (payload []byte, compressed bool, err error) {
	if !s.shouldCompress(int64(len(data)), extensionHint) {
		return append([]byte(nil), data...), false, nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, false, fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to compress blob: %w", err)
	}
	return buf.Bytes(), true, nil
}

func (s *Store) shouldCompress(size int64, extensionHint string) bool {
	if size < s.inlineCompressMin {
		return false
	}
	// In-memory content is always compressible; file-sourced content
	// defers to the extension allow-list.
	if extensionHint == "" {
		return true
	}
	return s.compressibleExts[extensionHint]
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
