package index

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/contentstruct/contentstruct/internal/catalog"
)

// Migrator reconciles the physical schema of a database with a catalog
// dataset.
type Migrator interface {
	Reconcile(db *sql.DB, ds *catalog.Dataset) error
}

// SQLiteMigrator is the production Migrator. It creates missing tables,
// adds missing columns in place, and rebuilds a table through a temporary
// copy when its primary key no longer matches the catalog. Columns present
// physically but absent from the catalog are left alone.
type SQLiteMigrator struct{}

// Reconcile brings every table of the dataset in line with the catalog.
func (m SQLiteMigrator) Reconcile(db *sql.DB, ds *catalog.Dataset) error {
	for _, table := range ds.Tables {
		if err := m.reconcileTable(db, table); err != nil {
			return fmt.Errorf("failed to reconcile table %s: %w", table.Name, err)
		}
	}
	return nil
}

func (m SQLiteMigrator) reconcileTable(db *sql.DB, table *catalog.Table) error {
	exists, err := tableExists(db, table.Name)
	if err != nil {
		return err
	}
	if !exists {
		_, err := db.Exec(createTableSQL(table.Name, table))
		return err
	}

	physical, err := physicalColumns(db, table.Name)
	if err != nil {
		return err
	}

	if !primaryKeysMatch(physical, table.PrimaryKey()) {
		return m.rebuildTable(db, table, physical)
	}
	return m.addMissingColumns(db, table, physical)
}

// rebuildTable recreates the table under a temporary name, copies the rows
// of every column both shapes share, then swaps the tables. Autoincrement
// primary keys are not copied so their sequence restarts cleanly.
func (m SQLiteMigrator) rebuildTable(db *sql.DB, table *catalog.Table, physical []physicalColumn) error {
	tempName := table.Name + "_rebuild"

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(tempName)); err != nil {
		return err
	}
	if _, err := tx.Exec(createTableSQL(tempName, table)); err != nil {
		return err
	}

	common := commonColumns(table, physical)
	if len(common) > 0 {
		cols := strings.Join(quoteAll(common), ", ")
		copySQL := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			quoteIdent(tempName), cols, cols, quoteIdent(table.Name))
		if _, err := tx.Exec(copySQL); err != nil {
			return err
		}
	}

	if _, err := tx.Exec("DROP TABLE " + quoteIdent(table.Name)); err != nil {
		return err
	}
	renameSQL := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdent(tempName), quoteIdent(table.Name))
	if _, err := tx.Exec(renameSQL); err != nil {
		return err
	}
	return tx.Commit()
}

func (m SQLiteMigrator) addMissingColumns(db *sql.DB, table *catalog.Table, physical []physicalColumn) error {
	have := make(map[string]bool, len(physical))
	for _, col := range physical {
		have[col.name] = true
	}
	for _, col := range table.Columns {
		if have[col.Name] {
			continue
		}
		addSQL := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			quoteIdent(table.Name), quoteIdent(col.Name), col.SQLType())
		if _, err := db.Exec(addSQL); err != nil {
			return err
		}
	}
	return nil
}

// createTableSQL renders the CREATE TABLE statement for a catalog table.
// A single autoincrement primary key is declared inline, as SQLite
// requires; composite keys get a trailing PRIMARY KEY clause.
func createTableSQL(name string, table *catalog.Table) string {
	pk := table.PrimaryKey()
	inlineAutoPK := ""
	if len(pk) == 1 {
		if col, ok := table.Column(pk[0]); ok && col.Autoincrement {
			inlineAutoPK = col.Name
		}
	}

	var defs []string
	for _, col := range table.Columns {
		def := quoteIdent(col.Name) + " " + col.SQLType()
		if col.Name == inlineAutoPK {
			def += " PRIMARY KEY AUTOINCREMENT"
		}
		defs = append(defs, def)
	}
	if len(pk) > 0 && inlineAutoPK == "" {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoteAll(pk), ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

type physicalColumn struct {
	name    string
	pkOrder int // 0 when not part of the primary key
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var found string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func physicalColumns(db *sql.DB, name string) ([]physicalColumn, error) {
	rows, err := db.Query("PRAGMA table_info(" + quoteIdent(name) + ")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []physicalColumn
	for rows.Next() {
		var cid, notNull, pk int
		var colName, colType string
		var dflt any
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, physicalColumn{name: colName, pkOrder: pk})
	}
	return cols, rows.Err()
}

// primaryKeysMatch compares the physical primary key, in key order,
// against the catalog's declared key.
func primaryKeysMatch(physical []physicalColumn, declared []string) bool {
	var keyed []physicalColumn
	for _, col := range physical {
		if col.pkOrder > 0 {
			keyed = append(keyed, col)
		}
	}
	sort.Slice(keyed, func(i, j int) bool { return keyed[i].pkOrder < keyed[j].pkOrder })

	if len(keyed) != len(declared) {
		return false
	}
	for i, col := range keyed {
		if col.name != declared[i] {
			return false
		}
	}
	return true
}

// commonColumns returns the catalog columns that also exist physically,
// minus autoincrement keys.
func commonColumns(table *catalog.Table, physical []physicalColumn) []string {
	have := make(map[string]bool, len(physical))
	for _, col := range physical {
		have[col.name] = true
	}
	var common []string
	for _, col := range table.Columns {
		if col.Primary && col.Autoincrement {
			continue
		}
		if have[col.Name] {
			common = append(common, col.Name)
		}
	}
	return common
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}
