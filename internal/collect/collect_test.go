package collect

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contentstruct/contentstruct/internal/imagemeta"
	"github.com/contentstruct/contentstruct/internal/index"
	"github.com/contentstruct/contentstruct/internal/testutil"
	"github.com/contentstruct/contentstruct/internal/version"
)

type fixedProber struct{}

func (fixedProber) Probe(string) (imagemeta.Info, error)  { return imagemeta.Info{Width: 800, Height: 600}, nil }
func (fixedProber) EmbeddedText(string) ([]string, error) { return nil, nil }

func buildCorpus(t *testing.T) *testutil.Corpus {
	t.Helper()
	return testutil.NewCorpus(t).
		WithContent("readme.md", "# Home\n\nWelcome text.\n").
		WithContent("guides/setup.md",
			"---\ntitle: Setup\n---\n![Chart](img/chart.png)\n\n```go\nfmt.Println()\n```\n").
		WithContent("guides/img/chart.png", "fake png bytes").
		Build()
}

func runAt(t *testing.T, c *testutil.Corpus, at time.Time) *Stats {
	t.Helper()
	cfg := c.Config()
	r := NewRunner(cfg, func() time.Time { return at }, fixedProber{}, nil)
	stats, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return stats
}

func TestRunEndToEnd(t *testing.T) {
	c := buildCorpus(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	stats := runAt(t, c, at)

	if stats.Documents != 2 {
		t.Errorf("documents = %d, want 2", stats.Documents)
	}
	if stats.Items != 4 {
		t.Errorf("items = %d, want 4", stats.Items)
	}
	if stats.Assets != 1 {
		t.Errorf("asset rows = %d, want 1 code block", stats.Assets)
	}
	if stats.Images != 1 {
		t.Errorf("image rows = %d, want 1", stats.Images)
	}
	if stats.Blobs != 2 {
		t.Errorf("blob rows = %d, want code and image blobs", stats.Blobs)
	}
	if stats.Warnings != 0 {
		t.Errorf("warnings = %d", stats.Warnings)
	}
	if want := version.Compute(at); stats.VersionID != want {
		t.Errorf("version = %q, want %q", stats.VersionID, want)
	}

	if !c.FileExists(filepath.Join(".structure", DatabaseFile)) {
		t.Error("structure database was not written")
	}
}

func TestRunIsRepeatable(t *testing.T) {
	c := buildCorpus(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	first := runAt(t, c, at)
	second := runAt(t, c, at.Add(time.Hour))

	if second.Documents != first.Documents {
		t.Errorf("documents = %d, want %d", second.Documents, first.Documents)
	}
	if second.Assets != 0 {
		t.Errorf("rerun asset rows = %d, want 0", second.Assets)
	}
	if second.Images != 0 {
		t.Errorf("rerun image rows = %d, want 0", second.Images)
	}
	if second.Blobs != 0 {
		t.Errorf("rerun blob rows = %d, want 0", second.Blobs)
	}
	if second.VersionID == first.VersionID {
		t.Error("reruns should record distinct versions")
	}
}

func TestRunPicksUpNewContent(t *testing.T) {
	c := buildCorpus(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	runAt(t, c, at)
	c.WriteContent("guides/extra.md", "New page with fresh text.\n")
	second := runAt(t, c, at.Add(time.Hour))

	if second.Documents != 3 {
		t.Errorf("documents = %d, want 3", second.Documents)
	}
	if second.Blobs != 0 {
		t.Errorf("blob rows = %d; a plain paragraph stores no blob", second.Blobs)
	}
}

func openStructureDB(t *testing.T, c *testutil.Corpus) *index.Database {
	t.Helper()
	db, err := index.Open(filepath.Join(c.Root, ".structure", DatabaseFile))
	if err != nil {
		t.Fatalf("open structure db: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *index.Database, query string) int {
	t.Helper()
	var n int
	if err := db.DB().QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestRunRecoversAfterInterruptedRun(t *testing.T) {
	c := buildCorpus(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	runAt(t, c, at)

	// A run that stops after the blob phase leaves blob rows without their
	// asset rows. The next run must reuse the stored blob uids instead of
	// allocating fresh ones.
	db := openStructureDB(t, c)
	for _, stmt := range []string{"DELETE FROM assets", "DELETE FROM images"} {
		if _, err := db.DB().Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	second := runAt(t, c, at.Add(time.Hour))
	if second.Blobs != 0 {
		t.Errorf("blob rows = %d, want 0: stored hashes keep their uids", second.Blobs)
	}
	if second.Assets != 1 || second.Images != 1 {
		t.Errorf("assets = %d, images = %d, want the rows restored", second.Assets, second.Images)
	}

	db = openStructureDB(t, c)
	defer db.Close()
	dangling := countRows(t, db,
		"SELECT COUNT(*) FROM assets WHERE blob_uid IS NOT NULL AND blob_uid NOT IN (SELECT blob_uid FROM blobs)")
	dangling += countRows(t, db,
		"SELECT COUNT(*) FROM images WHERE blob_uid IS NOT NULL AND blob_uid NOT IN (SELECT blob_uid FROM blobs)")
	if dangling != 0 {
		t.Errorf("%d rows reference blob uids missing from blobs", dangling)
	}
}

func TestRunPrunesDeletedDocuments(t *testing.T) {
	c := buildCorpus(t)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	first := runAt(t, c, at)
	if first.Documents != 2 {
		t.Fatalf("documents = %d, want 2", first.Documents)
	}

	if err := os.Remove(filepath.Join(c.ContentDir(), "guides", "setup.md")); err != nil {
		t.Fatal(err)
	}
	second := runAt(t, c, at.Add(time.Hour))

	if second.Documents != 1 {
		t.Errorf("documents = %d, want 1", second.Documents)
	}
	if second.Pruned != 1 {
		t.Errorf("pruned = %d, want 1", second.Pruned)
	}

	db := openStructureDB(t, c)
	defer db.Close()
	if got := countRows(t, db, "SELECT COUNT(*) FROM documents"); got != 1 {
		t.Errorf("document rows = %d, want 1", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM refs"); got != 0 {
		t.Errorf("ref rows = %d, want 0 after prune", got)
	}
	// Asset and blob history survives the document's removal.
	if got := countRows(t, db, "SELECT COUNT(*) FROM blobs"); got != 2 {
		t.Errorf("blob rows = %d, want 2", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM assets"); got != 1 {
		t.Errorf("asset rows = %d, want 1", got)
	}
}

func TestRunWritesExternalBlobs(t *testing.T) {
	large := make([]byte, 4096)
	for i := range large {
		large[i] = byte('a' + i%26)
	}
	c := testutil.NewCorpus(t).
		WithContent("page.md", "![Big](big.png)\n").
		WithContent("big.png", string(large)).
		Build()

	cfg := c.Config()
	cfg.ExternalStorageKB = 1
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r := NewRunner(cfg, func() time.Time { return at }, fixedProber{}, nil)
	stats, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Blobs != 1 {
		t.Fatalf("blob rows = %d, want 1", stats.Blobs)
	}

	shardDir := filepath.Join(c.Root, ".structure", "blobs", "2026", "05")
	if _, err := os.Stat(shardDir); err != nil {
		t.Fatalf("external blob shard missing: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(shardDir, "*", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Errorf("external blob files = %v, want exactly one", matches)
	}
}

func TestRunWarnsOnMissingImage(t *testing.T) {
	c := testutil.NewCorpus(t).
		WithContent("page.md", "![Gone](img/gone.png)\n").
		Build()

	var warned []string
	r := NewRunner(c.Config(), nil, fixedProber{}, func(format string, args ...any) {
		warned = append(warned, format)
	})
	stats, err := r.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Warnings != 1 || len(warned) != 1 {
		t.Errorf("warnings = %d (%v), want 1", stats.Warnings, warned)
	}
	if stats.Images != 0 {
		t.Errorf("image rows = %d, want 0 for unresolved image", stats.Images)
	}
}
