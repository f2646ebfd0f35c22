package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveAll(t *testing.T) {
	contentDir := t.TempDir()
	publicDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(contentDir, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(contentDir, "img", "a.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(publicDir, "logo.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}

	var warnings []string
	r := &Resolver{
		ContentDir: contentDir,
		PublicDir:  publicDir,
		Warnf: func(format string, args ...any) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	}

	local := &Image{Identity: Identity{AssetUID: "d#a"}, Ref: FileRef{Path: "img/a.png"}}
	public := &Image{Identity: Identity{AssetUID: "d#logo"}, Ref: FileRef{Path: "/logo.svg"}}
	missing := &Image{Identity: Identity{AssetUID: "d#gone"}, Ref: FileRef{Path: "img/gone.png"}}

	r.ResolveAll([]Asset{local, public, missing})

	if !local.Ref.Exists {
		t.Error("local image should exist")
	}
	if local.Ref.AbsPath != filepath.Join(contentDir, "img", "a.png") {
		t.Errorf("AbsPath = %q", local.Ref.AbsPath)
	}
	if local.Ref.Ext != "png" {
		t.Errorf("Ext = %q", local.Ref.Ext)
	}

	if !public.Ref.Exists {
		t.Error("public image should resolve against the public directory")
	}

	if missing.Ref.Exists {
		t.Error("missing image should not exist")
	}
	if len(warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", warnings)
	}
}

func TestExtOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"img/photo.PNG", "png"},
		{"doc.pdf?download=1", "pdf"},
		{"page.html#section", "html"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := ExtOf(tt.in); got != tt.want {
			t.Errorf("ExtOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsExternalURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"mailto:someone@example.com", true},
		{"//cdn.example.com/a.png", true},
		{"img/a.png", false},
		{"/img/a.png", false},
		{"a:b", true},
		{":broken", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsExternalURL(tt.in); got != tt.want {
			t.Errorf("IsExternalURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveDocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		baseDir string
		target  string
		want    string
	}{
		{"relative joins base dir", "guides", "img/a.png", "guides/img/a.png"},
		{"root base dir", ".", "img/a.png", "img/a.png"},
		{"root-relative untouched", "guides", "/shared/a.png", "/shared/a.png"},
		{"percent decoding", "guides", "img/my%20file.png", "guides/img/my file.png"},
		{"parent traversal normalizes", "guides/sub", "../a.png", "guides/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDocumentPath(tt.baseDir, tt.target); got != tt.want {
				t.Errorf("ResolveDocumentPath(%q, %q) = %q, want %q", tt.baseDir, tt.target, got, tt.want)
			}
		})
	}
}
