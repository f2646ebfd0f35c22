package index

import (
	"database/sql"
	"strconv"

	"github.com/contentstruct/contentstruct/internal/sqlutil"
)

// State is what a run needs to know about previous runs: which blobs
// already exist, which asset and image identities have been recorded for
// which blob, and which version ids are taken.
type State struct {
	// Blobs maps content hash to the blob_uid already assigned to it.
	Blobs map[string]int64

	// MaxBlobUID is the highest blob_uid in use, 0 on a fresh database.
	MaxBlobUID int64

	// AssetPairs and ImagePairs hold the (uid, blob_uid) combinations
	// already recorded, keyed by PairKey. An asset row is only inserted
	// when its pair is new; otherwise its last_seen is touched.
	AssetPairs map[string]bool
	ImagePairs map[string]bool

	// Versions holds the version ids already recorded.
	Versions map[string]bool
}

// PairKey keys an (uid, blob_uid) combination.
func PairKey(uid string, blobUID int64) string {
	return uid + "|" + strconv.FormatInt(blobUID, 10)
}

// LoadState reads prior-run state. The schema must already be reconciled.
func (d *Database) LoadState() (*State, error) {
	state := &State{
		Blobs:      make(map[string]int64),
		AssetPairs: make(map[string]bool),
		ImagePairs: make(map[string]bool),
		Versions:   make(map[string]bool),
	}

	if err := d.loadBlobs(state); err != nil {
		return nil, err
	}
	var err error
	state.AssetPairs, err = d.loadPairs("assets")
	if err != nil {
		return nil, err
	}
	state.ImagePairs, err = d.loadPairs("images")
	if err != nil {
		return nil, err
	}
	if err := d.loadVersions(state); err != nil {
		return nil, err
	}
	return state, nil
}

func (d *Database) loadBlobs(state *State) error {
	rows, err := d.db.Query("SELECT hash, blob_uid FROM blobs")
	if err != nil {
		return err
	}

	type blobRow struct {
		hash string
		uid  int64
	}
	scanned, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (blobRow, error) {
		var r blobRow
		err := rows.Scan(&r.hash, &r.uid)
		return r, err
	})
	if err != nil {
		return err
	}

	for _, r := range scanned {
		state.Blobs[r.hash] = r.uid
		if r.uid > state.MaxBlobUID {
			state.MaxBlobUID = r.uid
		}
	}
	return nil
}

func (d *Database) loadPairs(table string) (map[string]bool, error) {
	rows, err := d.db.Query("SELECT uid, blob_uid FROM " + quoteIdent(table))
	if err != nil {
		return nil, err
	}

	keys, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var uid string
		var blobUID sql.NullInt64
		if err := rows.Scan(&uid, &blobUID); err != nil {
			return "", err
		}
		return PairKey(uid, blobUID.Int64), nil
	})
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]bool, len(keys))
	for _, key := range keys {
		pairs[key] = true
	}
	return pairs, nil
}

func (d *Database) loadVersions(state *State) error {
	rows, err := d.db.Query("SELECT version_id FROM versions")
	if err != nil {
		return err
	}

	ids, err := sqlutil.ScanRows(rows, func(rows *sql.Rows) (string, error) {
		var id string
		err := rows.Scan(&id)
		return id, err
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		state.Versions[id] = true
	}
	return nil
}
