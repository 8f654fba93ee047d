package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "badges.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
badges:
  - key: first_post
    name: 初次发声
    counter: posts_created
    threshold: 1
  - key: ten_posts
    name: 十全十美
    counter: posts_created
    threshold: 10
`)

	defs, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog error: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("defs=%d, want 2", len(defs))
	}
	if defs[0].Key != "first_post" || defs[0].Threshold != 1 {
		t.Fatalf("first def=%+v", defs[0])
	}
}

func TestLoadCatalogRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name, content string
	}{
		{"empty file", `badges: []`},
		{"missing key", "badges:\n  - counter: posts_created\n    threshold: 1"},
		{"missing counter", "badges:\n  - key: x\n    threshold: 1"},
		{"zero threshold", "badges:\n  - key: x\n    counter: posts_created\n    threshold: 0"},
		{"duplicate key", "badges:\n  - key: x\n    counter: posts_created\n    threshold: 1\n  - key: x\n    counter: posts_created\n    threshold: 2"},
	}

	for _, tc := range cases {
		path := writeCatalog(t, tc.content)
		if _, err := LoadCatalog(path); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
