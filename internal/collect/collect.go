// Package collect runs a full indexing pass: enumerate documents, extract
// items and assets, place blobs, and write the structure database.
package collect

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/contentstruct/contentstruct/internal/assets"
	"github.com/contentstruct/contentstruct/internal/blob"
	"github.com/contentstruct/contentstruct/internal/catalog"
	"github.com/contentstruct/contentstruct/internal/config"
	"github.com/contentstruct/contentstruct/internal/document"
	"github.com/contentstruct/contentstruct/internal/extract"
	"github.com/contentstruct/contentstruct/internal/imagemeta"
	"github.com/contentstruct/contentstruct/internal/index"
	"github.com/contentstruct/contentstruct/internal/version"
)

// DatabaseFile is the structure database file name under the output root.
const DatabaseFile = "structure.db"

// Stats summarizes one run.
type Stats struct {
	Documents int
	Items     int
	Assets    int // asset rows inserted this run
	Images    int // image rows inserted this run
	Blobs     int // blob rows inserted this run
	Pruned    int // documents removed because their source disappeared
	VersionID string
	Warnings  int
}

// Runner wires the indexing pipeline together. Everything it needs arrives
// through the constructor; it holds no global state.
type Runner struct {
	cfg      *config.Config
	now      func() time.Time
	prober   imagemeta.Prober
	warnf    func(format string, args ...any)
	warnings int
}

// NewRunner builds a runner. A nil now defaults to time.Now, a nil prober
// to the file prober, a nil warnf to discarding warnings.
func NewRunner(cfg *config.Config, now func() time.Time, prober imagemeta.Prober, warnf func(string, ...any)) *Runner {
	if now == nil {
		now = time.Now
	}
	if prober == nil {
		prober = imagemeta.FileProber{}
	}
	return &Runner{cfg: cfg, now: now, prober: prober, warnf: warnf}
}

// Run executes one indexing pass.
func (r *Runner) Run() (*Stats, error) {
	cat, err := catalog.Load(r.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	ds := cat.Structure()

	db, err := index.Open(filepath.Join(r.cfg.AbsOutDir(), DatabaseFile))
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stats, err := r.run(db, ds)
	if err != nil {
		return nil, err
	}
	if err := db.Analyze(); err != nil {
		return nil, err
	}
	return stats, nil
}

// RunOn executes one pass against an already-open database. Used by tests
// to index into an in-memory database.
func (r *Runner) RunOn(db *index.Database, ds *catalog.Dataset) (*Stats, error) {
	return r.run(db, ds)
}

func (r *Runner) run(db *index.Database, ds *catalog.Dataset) (*Stats, error) {
	var migrator index.Migrator = index.SQLiteMigrator{}
	if err := migrator.Reconcile(db.DB(), ds); err != nil {
		return nil, err
	}

	state, err := db.LoadState()
	if err != nil {
		return nil, err
	}

	runTime := r.now().UTC()
	store := blob.NewStore(blob.Options{
		OutDir:                 r.cfg.AbsOutDir(),
		Now:                    runTime,
		ExternalThresholdBytes: int64(r.cfg.ExternalStorageKB) * 1024,
		InlineCompressMinBytes: int64(r.cfg.InlineCompressionKB) * 1024,
		CompressibleExtensions: r.cfg.CompressibleExtensionSet(),
	})
	store.Seed(state.Blobs, state.MaxBlobUID)

	contentDir := r.cfg.AbsContentDir()
	resolver := &assets.Resolver{
		ContentDir: contentDir,
		PublicDir:  r.cfg.PublicDir(),
		Warnf:      r.warn,
	}
	walker := &extract.Walker{
		ContentDir:     contentDir,
		Resolver:       resolver,
		Prober:         r.prober,
		LinkExtensions: r.cfg.LinkExtensionSet(),
		Warnf:          r.warn,
	}

	documents, ok := ds.Table("documents")
	if !ok {
		return nil, fmt.Errorf("catalog does not define table %q", "documents")
	}
	enum := document.NewEnumerator(contentDir, r.cfg.FolderBundle,
		document.KnownFieldSet(documents.ColumnNames()))

	writer := index.NewWriter(db, ds, r.now)
	stats := &Stats{VersionID: version.Compute(runTime)}

	var assetRows []index.AssetRow
	var imageRows []index.ImageRow
	var seenSIDs []string

	err = enum.Walk(func(src document.Source) error {
		doc := src.Entry
		result := walker.Walk(src.Body, doc)

		all := result.Assets
		if src.Model != nil {
			if src.Model.Ref != nil {
				resolver.ResolveAll([]assets.Asset{src.Model})
			}
			all = append(all, src.Model)
		}

		uids := make([]string, 0, len(all))
		for _, asset := range all {
			blobUID := r.ensureBlob(store, asset)
			uids = append(uids, asset.UID())

			switch a := asset.(type) {
			case *assets.Image:
				imageRows = append(imageRows, imageRow(a, blobUID))
			case *assets.GalleryImage:
				imageRows = append(imageRows, galleryImageRow(a, blobUID))
			default:
				assetRows = append(assetRows, assetRow(asset, blobUID))
			}
		}

		if err := writer.InsertDocument(doc, result.Items, uids); err != nil {
			return err
		}
		seenSIDs = append(seenSIDs, doc.SID)
		stats.Documents++
		stats.Items += len(result.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats.Pruned, err = writer.PruneDocuments(seenSIDs)
	if err != nil {
		return nil, err
	}

	// Blob rows go in before the asset rows that reference them, so an
	// interrupted run never commits an asset pointing at an unwritten blob.
	descs := store.NewDescriptors()
	stats.Blobs, err = writer.InsertBlobs(descriptorValues(descs))
	if err != nil {
		return nil, err
	}
	if err := writer.TouchBlobs(store.ReencounteredHashes()); err != nil {
		return nil, err
	}

	stats.Assets, err = writer.UpsertAssets(assetRows, state)
	if err != nil {
		return nil, err
	}
	stats.Images, err = writer.UpsertImages(imageRows, state)
	if err != nil {
		return nil, err
	}
	if _, err := writer.EnsureVersion(stats.VersionID, r.cfg.RunType, r.cfg.Tags, state); err != nil {
		return nil, err
	}

	stats.Warnings = r.warnings
	return stats, nil
}

// ensureBlob stores the asset's content and returns its blob uid, 0 when
// the asset has no storable content or storing it failed.
func (r *Runner) ensureBlob(store *blob.Store, asset assets.Asset) int64 {
	switch a := asset.(type) {
	case *assets.Table:
		data, err := json.Marshal(a.Data)
		if err != nil {
			r.warn("failed to serialize table %s: %v", a.UID(), err)
			return 0
		}
		return r.ensure(store, data, "json", a.UID())

	case *assets.Code:
		return r.ensure(store, []byte(a.Body), "", a.UID())

	case *assets.Model:
		if a.Payload != nil {
			return r.ensure(store, a.Payload, "json", a.UID())
		}
		return r.ensureFile(store, a)

	default:
		return r.ensureFile(store, asset)
	}
}

func (r *Runner) ensure(store *blob.Store, data []byte, extHint, uid string) int64 {
	desc, err := store.Ensure(data, extHint)
	if err != nil {
		r.warn("failed to store blob for %s: %v", uid, err)
		return 0
	}
	return desc.UID
}

func (r *Runner) ensureFile(store *blob.Store, asset assets.Asset) int64 {
	ref := asset.FileRef()
	if ref == nil || !ref.Exists {
		return 0
	}
	desc, err := store.EnsureFromFile(ref.AbsPath)
	if err != nil {
		r.warn("failed to store blob for %s: %v", asset.UID(), err)
		return 0
	}
	return desc.UID
}

func (r *Runner) warn(format string, args ...any) {
	r.warnings++
	if r.warnf != nil {
		r.warnf(format, args...)
	}
}

func assetRow(asset assets.Asset, blobUID int64) index.AssetRow {
	row := index.AssetRow{
		UID:     asset.UID(),
		SID:     asset.SID(),
		Type:    string(asset.Kind()),
		DocSID:  asset.DocSID(),
		BlobUID: blobUID,
	}
	if ref := asset.FileRef(); ref != nil {
		row.Path = ref.Path
		row.AbsPath = ref.AbsPath
		row.Ext = ref.Ext
		row.Exists = ref.Exists
	}
	switch a := asset.(type) {
	case *assets.Code:
		row.Language = a.Language
		row.Exists = true
	case *assets.Table:
		row.Exists = true
	case *assets.Model:
		if a.Payload != nil {
			row.Exists = true
		}
	case *assets.LinkedFile:
		row.URL = a.URL
	}
	return row
}

func imageRow(a *assets.Image, blobUID int64) index.ImageRow {
	return index.ImageRow{
		UID:        a.UID(),
		SID:        a.SID(),
		DocSID:     a.DocSID(),
		Slug:       a.Slug,
		Title:      a.Title,
		Alt:        a.Alt,
		URL:        a.URL,
		Width:      a.Width,
		Height:     a.Height,
		TextList:   a.TextList,
		BlobUID:    blobUID,
		OrderIndex: a.OrderIndex,
	}
}

func galleryImageRow(a *assets.GalleryImage, blobUID int64) index.ImageRow {
	return index.ImageRow{
		UID:     a.UID(),
		SID:     a.SID(),
		DocSID:  a.DocSID(),
		Slug:    a.Slug,
		URL:     a.Ref.Path,
		BlobUID: blobUID,
	}
}

func descriptorValues(descs []*blob.Descriptor) []blob.Descriptor {
	out := make([]blob.Descriptor, len(descs))
	for i, d := range descs {
		out[i] = *d
	}
	return out
}
