package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/contentstruct/contentstruct/internal/blob"
	"github.com/contentstruct/contentstruct/internal/catalog"
	"github.com/contentstruct/contentstruct/internal/document"
	"github.com/contentstruct/contentstruct/internal/extract"
	"github.com/contentstruct/contentstruct/internal/sqlutil"
)

// Writer persists one run's output. Row shapes are driven by the catalog:
// only declared columns are written, list columns are JSON-serialized.
type Writer struct {
	db  *sql.DB
	ds  *catalog.Dataset
	now func() time.Time
}

// NewWriter builds a writer over an open, reconciled database. A nil now
// defaults to time.Now.
func NewWriter(d *Database, ds *catalog.Dataset, now func() time.Time) *Writer {
	if now == nil {
		now = time.Now
	}
	return &Writer{db: d.db, ds: ds, now: now}
}

// AssetRow is the flat storage shape of a non-image asset.
type AssetRow struct {
	UID      string
	SID      string
	Type     string
	DocSID   string
	Path     string
	AbsPath  string
	URL      string
	Ext      string
	Exists   bool
	External bool
	Language string
	BlobUID  int64 // 0 when the asset has no stored blob
}

// ImageRow is the flat storage shape of an image asset.
type ImageRow struct {
	UID        string
	SID        string
	DocSID     string
	Slug       string
	Title      string
	Alt        string
	URL        string
	Width      int
	Height     int
	TextList   []string
	BlobUID    int64
	OrderIndex int
}

// InsertDocument replaces one document's rows: its document row, its items,
// and its asset back-references, all in one transaction keyed by the
// document sid.
func (w *Writer) InsertDocument(doc *document.Document, items []extract.Item, assetUIDs []string) error {
	documents, err := w.table("documents")
	if err != nil {
		return err
	}
	itemsTable, err := w.table("items")
	if err != nil {
		return err
	}
	refs, err := w.table("refs")
	if err != nil {
		return err
	}

	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Delete existing rows for this document
	if _, err := tx.Exec("DELETE FROM documents WHERE sid = ?", doc.SID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM items WHERE doc_sid = ?", doc.SID); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM refs WHERE doc_sid = ?", doc.SID); err != nil {
		return err
	}

	if err := insertRow(tx, documents, w.documentRow(doc)); err != nil {
		return fmt.Errorf("failed to insert document %s: %w", doc.UID, err)
	}

	itemStmt, err := tx.Prepare(insertSQL(itemsTable))
	if err != nil {
		return err
	}
	defer itemStmt.Close()
	for _, item := range items {
		args, err := rowArgs(itemsTable, itemRow(doc.SID, item))
		if err != nil {
			return err
		}
		if _, err := itemStmt.Exec(args...); err != nil {
			return fmt.Errorf("failed to insert item %d of %s: %w", item.OrderIndex, doc.UID, err)
		}
	}

	refStmt, err := tx.Prepare(insertSQL(refs))
	if err != nil {
		return err
	}
	defer refStmt.Close()
	for _, uid := range assetUIDs {
		args, err := rowArgs(refs, map[string]any{"asset_uid": uid, "doc_sid": doc.SID})
		if err != nil {
			return err
		}
		if _, err := refStmt.Exec(args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpsertAssets inserts asset rows whose (uid, blob_uid) pair is new and
// touches last_seen on the rest, as one transaction. Returns the number of
// inserted rows. The state index is only updated after the commit.
func (w *Writer) UpsertAssets(rows []AssetRow, state *State) (int, error) {
	table, err := w.table("assets")
	if err != nil {
		return 0, err
	}
	now := w.timestamp()

	tx, err := w.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var newKeys []string
	for _, row := range rows {
		key := PairKey(row.UID, row.BlobUID)
		if state.AssetPairs[key] {
			_, err := tx.Exec(
				"UPDATE assets SET last_seen = ? WHERE uid = ? AND blob_uid IS ?",
				now, row.UID, blobUIDValue(row.BlobUID),
			)
			if err != nil {
				return 0, err
			}
			continue
		}

		err := insertRow(tx, table, map[string]any{
			"uid":        row.UID,
			"sid":        row.SID,
			"type":       row.Type,
			"doc_sid":    row.DocSID,
			"path":       row.Path,
			"abs_path":   row.AbsPath,
			"url":        row.URL,
			"ext":        row.Ext,
			"exists":     row.Exists,
			"external":   row.External,
			"language":   row.Language,
			"blob_uid":   blobUIDValue(row.BlobUID),
			"first_seen": now,
			"last_seen":  now,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to insert asset %s: %w", row.UID, err)
		}
		newKeys = append(newKeys, key)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	for _, key := range newKeys {
		state.AssetPairs[key] = true
	}
	return len(newKeys), nil
}

// UpsertImages is UpsertAssets for the images table.
func (w *Writer) UpsertImages(rows []ImageRow, state *State) (int, error) {
	table, err := w.table("images")
	if err != nil {
		return 0, err
	}
	now := w.timestamp()

	tx, err := w.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var newKeys []string
	for _, row := range rows {
		key := PairKey(row.UID, row.BlobUID)
		if state.ImagePairs[key] {
			_, err := tx.Exec(
				"UPDATE images SET last_seen = ? WHERE uid = ? AND blob_uid IS ?",
				now, row.UID, blobUIDValue(row.BlobUID),
			)
			if err != nil {
				return 0, err
			}
			continue
		}

		err := insertRow(tx, table, map[string]any{
			"uid":         row.UID,
			"sid":         row.SID,
			"doc_sid":     row.DocSID,
			"slug":        row.Slug,
			"title":       row.Title,
			"alt":         row.Alt,
			"url":         row.URL,
			"width":       row.Width,
			"height":      row.Height,
			"text_list":   row.TextList,
			"blob_uid":    blobUIDValue(row.BlobUID),
			"order_index": row.OrderIndex,
			"first_seen":  now,
			"last_seen":   now,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to insert image %s: %w", row.UID, err)
		}
		newKeys = append(newKeys, key)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	for _, key := range newKeys {
		state.ImagePairs[key] = true
	}
	return len(newKeys), nil
}

// InsertBlobs writes rows for new blob descriptors as one transaction.
// Returns the number written.
func (w *Writer) InsertBlobs(descs []blob.Descriptor) (int, error) {
	table, err := w.table("blobs")
	if err != nil {
		return 0, err
	}
	now := w.timestamp()

	tx, err := w.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, desc := range descs {
		var payload any
		if len(desc.Payload) > 0 {
			payload = desc.Payload
		}
		err := insertRow(tx, table, map[string]any{
			"blob_uid":    desc.UID,
			"hash":        desc.Hash,
			"size":        desc.Size,
			"path":        desc.Path,
			"payload":     payload,
			"compression": desc.Compression,
			"first_seen":  now,
			"last_seen":   now,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to insert blob %d: %w", desc.UID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(descs), nil
}

// PruneDocuments removes document, item and ref rows whose sid was not
// seen this run, so files removed from the corpus do not linger. Asset and
// blob rows are kept: their identity outlives any one document. Returns
// the number of documents removed.
func (w *Writer) PruneDocuments(seenSIDs []string) (int, error) {
	tx, err := w.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	docWhere, itemWhere := "", ""
	var args []any
	if len(seenSIDs) > 0 {
		placeholders, inArgs := sqlutil.InClauseArgs(seenSIDs)
		docWhere = " WHERE sid NOT IN (" + placeholders + ")"
		itemWhere = " WHERE doc_sid NOT IN (" + placeholders + ")"
		args = inArgs
	}
	res, err := tx.Exec("DELETE FROM documents"+docWhere, args...)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("DELETE FROM items"+itemWhere, args...); err != nil {
		return 0, err
	}
	if _, err := tx.Exec("DELETE FROM refs"+itemWhere, args...); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

// TouchBlobs updates last_seen for blobs re-encountered this run.
func (w *Writer) TouchBlobs(hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	placeholders, args := sqlutil.InClauseArgs(hashes)
	args = append([]any{w.timestamp()}, args...)
	_, err := w.db.Exec("UPDATE blobs SET last_seen = ? WHERE hash IN ("+placeholders+")", args...)
	return err
}

// EnsureVersion records the run's version row unless the id already
// exists. Reports whether a row was written.
func (w *Writer) EnsureVersion(id, runType string, tags []string, state *State) (bool, error) {
	if state.Versions[id] {
		return false, nil
	}
	table, err := w.table("versions")
	if err != nil {
		return false, err
	}
	err = insertRow(w.db, table, map[string]any{
		"version_id": id,
		"created_at": w.timestamp(),
		"type":       runType,
		"tags_list":  tags,
	})
	if err != nil {
		return false, fmt.Errorf("failed to insert version %s: %w", id, err)
	}
	state.Versions[id] = true
	return true, nil
}

func (w *Writer) documentRow(doc *document.Document) map[string]any {
	row := map[string]any{
		"sid":           doc.SID,
		"uid":           doc.UID,
		"path":          doc.Path,
		"url":           doc.URL,
		"url_type":      doc.URLType,
		"slug":          doc.Slug,
		"title":         doc.Title,
		"format":        doc.Format,
		"level":         doc.Level,
		"order":         doc.Order,
		"base_dir":      doc.BaseDir,
		"model":         doc.ModelUID,
		"headings_list": doc.Headings,
	}
	if len(doc.Meta) > 0 {
		if data, err := json.Marshal(doc.Meta); err == nil {
			row["meta"] = string(data)
		}
	}
	for name, value := range doc.Fields {
		row[name] = value
	}
	return row
}

func itemRow(docSID string, item extract.Item) map[string]any {
	return map[string]any{
		"doc_sid":     docSID,
		"type":        string(item.Type),
		"level":       item.Level,
		"order_index": item.OrderIndex,
		"body_text":   item.BodyText,
		"slug":        item.Slug,
		"asset_uid":   item.AssetUID,
		"tree":        item.Tree,
	}
}

func (w *Writer) table(name string) (*catalog.Table, error) {
	table, ok := w.ds.Table(name)
	if !ok {
		return nil, fmt.Errorf("catalog does not define table %q", name)
	}
	return table, nil
}

func (w *Writer) timestamp() string {
	return w.now().UTC().Format(time.RFC3339)
}

func blobUIDValue(uid int64) any {
	if uid == 0 {
		return nil
	}
	return uid
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertSQL renders the insert statement for a table's non-autoincrement
// columns.
func insertSQL(table *catalog.Table) string {
	cols := table.InsertColumns()
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		names[i] = quoteIdent(col.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
}

// rowArgs converts a row map into bind args in the table's column order.
// Columns absent from the map bind NULL; list columns are JSON-serialized.
func rowArgs(table *catalog.Table, row map[string]any) ([]any, error) {
	cols := table.InsertColumns()
	args := make([]any, len(cols))
	for i, col := range cols {
		value, err := columnValue(col, row[col.Name])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		args[i] = value
	}
	return args, nil
}

func columnValue(col catalog.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if col.IsList() {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
	if col.Type == catalog.TypeBoolean {
		if b, ok := value.(bool); ok {
			if b {
				return 1, nil
			}
			return 0, nil
		}
	}
	return value, nil
}

func insertRow(e execer, table *catalog.Table, row map[string]any) error {
	args, err := rowArgs(table, row)
	if err != nil {
		return err
	}
	_, err = e.Exec(insertSQL(table), args...)
	return err
}
