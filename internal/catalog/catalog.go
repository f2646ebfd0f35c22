// Package catalog loads the declarative schema catalog that drives the
// structure database: which datasets exist, which tables they contain, and
// the typed columns of each table.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StructureDataset is the dataset every catalog must define.
const StructureDataset = "structure"

// Tables the structure dataset must declare. The writer reads startup
// state from every one of them, so a missing table must fail validation
// rather than surface as a driver error mid-run.
var requiredTables = []string{"documents", "items", "assets", "images", "blobs", "refs", "versions"}

// ColumnType enumerates the logical column types a catalog may declare.
type ColumnType string

const (
	TypeString     ColumnType = "string"
	TypeInt        ColumnType = "int"
	TypeBoolean    ColumnType = "boolean"
	TypeBlob       ColumnType = "blob"
	TypeStringList ColumnType = "string_list"
	TypeObjectList ColumnType = "object_list"
)

// Column describes one declared column.
type Column struct {
	Name          string     `yaml:"name"`
	Type          ColumnType `yaml:"type"`
	Primary       bool       `yaml:"primary,omitempty"`
	Autoincrement bool       `yaml:"autoincrement,omitempty"`
}

// SQLType returns the SQLite storage type for the column. List-typed
// columns are stored as JSON text.
func (c Column) SQLType() string {
	switch c.Type {
	case TypeInt, TypeBoolean:
		return "INTEGER"
	case TypeBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// IsList reports whether the column holds a JSON-serialized list.
func (c Column) IsList() bool {
	return c.Type == TypeStringList || c.Type == TypeObjectList
}

// Table describes one declared table.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// PrimaryKey returns the ordered list of primary-key column names.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, col := range t.Columns {
		if col.Primary {
			pk = append(pk, col.Name)
		}
	}
	return pk
}

// InsertColumns returns the columns eligible for insertion, which excludes
// autoincrement primary keys.
func (t *Table) InsertColumns() []Column {
	out := make([]Column, 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.Primary && col.Autoincrement {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Column returns the declared column with the given name, if any.
func (t *Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the declared column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Dataset groups the tables of one database file.
type Dataset struct {
	Name   string   `yaml:"name"`
	Tables []*Table `yaml:"tables"`
}

// Table returns the declared table with the given name, if any.
func (d *Dataset) Table(name string) (*Table, bool) {
	for _, table := range d.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return nil, false
}

// Catalog is the root of the declarative schema description.
type Catalog struct {
	Datasets []*Dataset `yaml:"datasets"`
}

// Dataset returns the dataset with the given name, if any.
func (c *Catalog) Dataset(name string) (*Dataset, bool) {
	for _, ds := range c.Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return nil, false
}

// Structure returns the required structure dataset.
func (c *Catalog) Structure() *Dataset {
	ds, _ := c.Dataset(StructureDataset)
	return ds
}

// Load reads a catalog from path. An empty path loads the built-in default
// catalog. The returned catalog is validated: a missing structure dataset
// or a missing required table is an error, because writing a partial
// database would be worse than not writing one at all.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse([]byte(defaultCatalog))
}

func (c *Catalog) validate() error {
	ds, ok := c.Dataset(StructureDataset)
	if !ok {
		return fmt.Errorf("catalog does not define required dataset %q", StructureDataset)
	}
	for _, name := range requiredTables {
		if _, ok := ds.Table(name); !ok {
			return fmt.Errorf("catalog dataset %q does not define required table %q", StructureDataset, name)
		}
	}
	for _, table := range ds.Tables {
		if len(table.Columns) == 0 {
			return fmt.Errorf("catalog table %q declares no columns", table.Name)
		}
		for _, col := range table.Columns {
			switch col.Type {
			case TypeString, TypeInt, TypeBoolean, TypeBlob, TypeStringList, TypeObjectList:
			default:
				return fmt.Errorf("catalog table %q column %q has unknown type %q", table.Name, col.Name, col.Type)
			}
		}
	}
	return nil
}
