package ids

import "testing"

func TestShort(t *testing.T) {
	got := Short("getting-started")
	if len(got) != 8 {
		t.Errorf("expected 8 characters, got %q", got)
	}
	if got != Short("getting-started") {
		t.Error("expected stable output for identical input")
	}
	if got == Short("getting-started-2") {
		t.Error("expected different hashes for different input")
	}
}

func TestDocumentUID(t *testing.T) {
	tests := []struct {
		name     string
		urlPath  string
		slug     string
		fallback string
		want     string
	}{
		{"url path", "guides/setup", "setup", "guides/setup.md", "guides.setup"},
		{"single segment", "setup", "setup", "setup.md", "setup"},
		{"leading slash ignored", "/guides/setup", "setup", "guides/setup.md", "guides.setup"},
		{"empty url uses slug", "", "my-page", "page.md", "my-page"},
		{"slug slashes become dots", "", "a/b", "page.md", "a.b"},
		{"empty url and slug use path", "", "", "docs/page.md", "docs.page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DocumentUID(tt.urlPath, tt.slug, tt.fallback)
			if got != tt.want {
				t.Errorf("DocumentUID(%q, %q, %q) = %q, want %q",
					tt.urlPath, tt.slug, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestDocumentUIDNeverEmpty(t *testing.T) {
	got := DocumentUID("", "", "")
	if got == "" {
		t.Error("expected non-empty uid for empty inputs")
	}
}

func TestAssetUID(t *testing.T) {
	got := AssetUID("guides.setup", "table-1")
	if got != "guides.setup#table-1" {
		t.Errorf("AssetUID = %q", got)
	}
}

func TestNextUnique(t *testing.T) {
	taken := map[string]bool{}

	if got := NextUnique("figure", taken); got != "figure" {
		t.Errorf("first use = %q, want figure", got)
	}
	taken["figure"] = true

	if got := NextUnique("figure", taken); got != "figure-2" {
		t.Errorf("second use = %q, want figure-2", got)
	}
	taken["figure-2"] = true

	if got := NextUnique("figure", taken); got != "figure-3" {
		t.Errorf("third use = %q, want figure-3", got)
	}
}
