package index

import (
	"testing"

	"github.com/contentstruct/contentstruct/internal/catalog"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	d, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func structureDataset(t *testing.T) *catalog.Dataset {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	return cat.Structure()
}

func TestReconcileCreatesTables(t *testing.T) {
	d := openTestDB(t)
	ds := structureDataset(t)

	if err := (SQLiteMigrator{}).Reconcile(d.DB(), ds); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	for _, name := range []string{"documents", "items", "assets", "images", "blobs", "refs", "versions"} {
		exists, err := tableExists(d.DB(), name)
		if err != nil {
			t.Fatal(err)
		}
		if !exists {
			t.Errorf("table %s was not created", name)
		}
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	ds := structureDataset(t)

	m := SQLiteMigrator{}
	if err := m.Reconcile(d.DB(), ds); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	if _, err := d.DB().Exec(
		"INSERT INTO versions (version_id, created_at, type, tags_list) VALUES ('A', '', 'dev', '[]')",
	); err != nil {
		t.Fatal(err)
	}
	if err := m.Reconcile(d.DB(), ds); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	var count int
	if err := d.DB().QueryRow("SELECT COUNT(*) FROM versions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("versions count = %d after re-reconcile, want 1", count)
	}
}

func TestReconcileAddsMissingColumn(t *testing.T) {
	d := openTestDB(t)
	m := SQLiteMigrator{}

	v1 := &catalog.Dataset{Tables: []*catalog.Table{{
		Name: "things",
		Columns: []catalog.Column{
			{Name: "uid", Type: catalog.TypeString, Primary: true},
			{Name: "title", Type: catalog.TypeString},
		},
	}}}
	if err := m.Reconcile(d.DB(), v1); err != nil {
		t.Fatalf("v1 Reconcile: %v", err)
	}
	if _, err := d.DB().Exec("INSERT INTO things (uid, title) VALUES ('a', 'first')"); err != nil {
		t.Fatal(err)
	}

	v2 := &catalog.Dataset{Tables: []*catalog.Table{{
		Name: "things",
		Columns: []catalog.Column{
			{Name: "uid", Type: catalog.TypeString, Primary: true},
			{Name: "title", Type: catalog.TypeString},
			{Name: "weight", Type: catalog.TypeInt},
		},
	}}}
	if err := m.Reconcile(d.DB(), v2); err != nil {
		t.Fatalf("v2 Reconcile: %v", err)
	}

	// Existing rows survive an additive change.
	var title string
	var weight any
	err := d.DB().QueryRow("SELECT title, weight FROM things WHERE uid = 'a'").Scan(&title, &weight)
	if err != nil {
		t.Fatalf("select after add column: %v", err)
	}
	if title != "first" {
		t.Errorf("title = %q", title)
	}
	if weight != nil {
		t.Errorf("new column should default to NULL, got %v", weight)
	}
}

func TestReconcileRebuildsOnPrimaryKeyChange(t *testing.T) {
	d := openTestDB(t)
	m := SQLiteMigrator{}

	v1 := &catalog.Dataset{Tables: []*catalog.Table{{
		Name: "things",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.TypeInt, Primary: true},
			{Name: "uid", Type: catalog.TypeString},
			{Name: "title", Type: catalog.TypeString},
		},
	}}}
	if err := m.Reconcile(d.DB(), v1); err != nil {
		t.Fatalf("v1 Reconcile: %v", err)
	}
	if _, err := d.DB().Exec("INSERT INTO things (id, uid, title) VALUES (1, 'a', 'first'), (2, 'b', 'second')"); err != nil {
		t.Fatal(err)
	}

	v2 := &catalog.Dataset{Tables: []*catalog.Table{{
		Name: "things",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.TypeInt},
			{Name: "uid", Type: catalog.TypeString, Primary: true},
			{Name: "title", Type: catalog.TypeString},
		},
	}}}
	if err := m.Reconcile(d.DB(), v2); err != nil {
		t.Fatalf("v2 Reconcile: %v", err)
	}

	physical, err := physicalColumns(d.DB(), "things")
	if err != nil {
		t.Fatal(err)
	}
	if !primaryKeysMatch(physical, []string{"uid"}) {
		t.Errorf("primary key not rebuilt, columns = %+v", physical)
	}

	// Shared columns carry their data through the rebuild.
	var title string
	if err := d.DB().QueryRow("SELECT title FROM things WHERE uid = 'b'").Scan(&title); err != nil {
		t.Fatalf("select after rebuild: %v", err)
	}
	if title != "second" {
		t.Errorf("title = %q", title)
	}
}

func TestReconcileAutoincrementKey(t *testing.T) {
	d := openTestDB(t)
	m := SQLiteMigrator{}

	ds := &catalog.Dataset{Tables: []*catalog.Table{{
		Name: "seq",
		Columns: []catalog.Column{
			{Name: "id", Type: catalog.TypeInt, Primary: true, Autoincrement: true},
			{Name: "label", Type: catalog.TypeString},
		},
	}}}
	if err := m.Reconcile(d.DB(), ds); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if _, err := d.DB().Exec("INSERT INTO seq (label) VALUES ('x'), ('y')"); err != nil {
		t.Fatal(err)
	}
	var maxID int64
	if err := d.DB().QueryRow("SELECT MAX(id) FROM seq").Scan(&maxID); err != nil {
		t.Fatal(err)
	}
	if maxID != 2 {
		t.Errorf("max id = %d, want autoincrement to assign 1, 2", maxID)
	}
}
