package document

import "testing"

func TestURLTypeOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"guides/readme.md", URLTypeDir},
		{"guides/README.md", URLTypeDir},
		{"guides/guides.md", URLTypeDir},
		{"guides/setup.md", URLTypeFile},
		{"setup.md", URLTypeFile},
		{"readme.md", URLTypeDir},
	}
	for _, tt := range tests {
		if got := URLTypeOf(tt.path); got != tt.want {
			t.Errorf("URLTypeOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestURLOf(t *testing.T) {
	tests := []struct {
		name    string
		urlType string
		path    string
		slug    string
		want    string
	}{
		{"dir doc uses its directory", URLTypeDir, "guides/readme.md", "guides", "guides"},
		{"root dir doc", URLTypeDir, "readme.md", "home", ""},
		{"file doc appends slug", URLTypeFile, "guides/setup.md", "setup", "guides/setup"},
		{"root file doc", URLTypeFile, "setup.md", "setup", "setup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URLOf(tt.urlType, tt.path, tt.slug); got != tt.want {
				t.Errorf("URLOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name    string
		urlType string
		path    string
		want    int
	}{
		{"root file", URLTypeFile, "page.md", 1},
		{"root readme", URLTypeDir, "readme.md", 1},
		{"dir doc one deep", URLTypeDir, "guides/readme.md", 2},
		{"file one deep", URLTypeFile, "guides/setup.md", 3},
		{"file two deep", URLTypeFile, "guides/advanced/tips.md", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelOf(tt.urlType, tt.path); got != tt.want {
				t.Errorf("LevelOf(%q, %q) = %d, want %d", tt.urlType, tt.path, got, tt.want)
			}
		})
	}
}

func TestSlugOf(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]any
		path    string
		urlType string
		want    string
	}{
		{"explicit slug wins", map[string]any{"slug": "custom", "title": "My Page"}, "a/b.md", URLTypeFile, "custom"},
		{"title slugified", map[string]any{"title": "My Page"}, "a/b.md", URLTypeFile, "my-page"},
		{"dir doc falls back to directory", nil, "guides/readme.md", URLTypeDir, "guides"},
		{"root readme falls back to stem", nil, "readme.md", URLTypeDir, "readme"},
		{"file doc falls back to stem", nil, "guides/setup.md", URLTypeFile, "setup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlugOf(tt.fields, tt.path, tt.urlType); got != tt.want {
				t.Errorf("SlugOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderAllocator(t *testing.T) {
	a := newOrderAllocator()

	if got := a.Assign("guides", 2, 0); got != 1 {
		t.Errorf("first implicit = %d, want 1", got)
	}
	if got := a.Assign("guides", 2, 5); got != 5 {
		t.Errorf("free explicit = %d, want 5", got)
	}
	if got := a.Assign("guides", 2, 5); got != 2 {
		t.Errorf("taken explicit should fall back to smallest unused, got %d", got)
	}
	if got := a.Assign("guides", 2, 0); got != 3 {
		t.Errorf("next implicit = %d, want 3", got)
	}

	// Other groups are independent
	if got := a.Assign("guides", 3, 0); got != 1 {
		t.Errorf("different level starts at 1, got %d", got)
	}
	if got := a.Assign("other", 2, 0); got != 1 {
		t.Errorf("different dir starts at 1, got %d", got)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantRaw  string
		wantBody string
	}{
		{
			name:     "present",
			content:  "---\ntitle: Hi\n---\nbody text",
			wantRaw:  "title: Hi",
			wantBody: "body text",
		},
		{
			name:     "absent",
			content:  "just body",
			wantRaw:  "",
			wantBody: "just body",
		},
		{
			name:     "unclosed treated as absent",
			content:  "---\ntitle: Hi\nbody text",
			wantRaw:  "",
			wantBody: "---\ntitle: Hi\nbody text",
		},
		{
			name:     "empty block",
			content:  "---\n---\nbody",
			wantRaw:  "",
			wantBody: "body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, body := SplitFrontmatter(tt.content)
			if raw != tt.wantRaw {
				t.Errorf("raw = %q, want %q", raw, tt.wantRaw)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestParseFrontmatterPartitions(t *testing.T) {
	known := map[string]bool{"title": true, "tags": true}
	fm := ParseFrontmatter("title: Hi\ntags: [a, b]\nauthor: someone\nrating: 5", known)

	if fm.Known["title"] != "Hi" {
		t.Errorf("Known[title] = %v", fm.Known["title"])
	}
	if _, ok := fm.Known["author"]; ok {
		t.Error("author should be opaque")
	}
	if fm.Opaque["author"] != "someone" {
		t.Errorf("Opaque[author] = %v", fm.Opaque["author"])
	}
	if len(fm.Opaque) != 2 {
		t.Errorf("Opaque = %v", fm.Opaque)
	}
}

func TestParseFrontmatterMalformedYAML(t *testing.T) {
	fm := ParseFrontmatter("title: [unclosed", map[string]bool{"title": true})
	if len(fm.Known) != 0 || len(fm.Opaque) != 0 {
		t.Errorf("malformed YAML should yield empty frontmatter, got %+v", fm)
	}
}
