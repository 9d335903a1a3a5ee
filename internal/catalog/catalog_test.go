package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expenses/internal/core"
)

func TestLoad(t *testing.T) {
	cat, err := Load(strings.NewReader(`{"Food": ["Lunch", "Dinner"], "Transport": []}`))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !cat.Contains("Food") || !cat.Contains("Transport") {
		t.Fatalf("expected both categories present")
	}
	if cat.Contains("Pets") {
		t.Fatalf("unexpected category")
	}
	if !cat.ContainsSubcategory("Food", "Lunch") {
		t.Fatalf("expected Food/Lunch")
	}
	if cat.ContainsSubcategory("Food", "Fuel") {
		t.Fatalf("unexpected Food/Fuel")
	}
	if cat.ContainsSubcategory("Pets", "Vet") {
		t.Fatalf("unknown category must not match subcategories")
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"duplicate category", `{"Food": ["Lunch"], "Food": ["Dinner"]}`},
		{"non-string subcategory", `{"Food": ["Lunch", 42]}`},
		{"value not a list", `{"Food": "Lunch"}`},
		{"top level not an object", `["Food"]`},
		{"truncated", `{"Food": ["Lunch"`},
		{"empty object", `{}`},
		{"garbage", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat, err := Load(strings.NewReader(tc.in))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !core.IsConfig(err) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if cat != nil {
				t.Fatalf("must never return a partial catalog")
			}
		})
	}
}

func TestSortedAccessors(t *testing.T) {
	cat, err := Load(strings.NewReader(`{"B": ["z", "a"], "A": []}`))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	names := cat.Categories()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("Categories() = %v, want [A B]", names)
	}
	subs := cat.Subcategories("B")
	if len(subs) != 2 || subs[0] != "a" || subs[1] != "z" {
		t.Fatalf("Subcategories(B) = %v, want [a z]", subs)
	}
	if cat.Subcategories("missing") != nil {
		t.Fatalf("unknown category should return nil")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	if err := os.WriteFile(path, []byte(`{"Food": ["Lunch"]}`), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !cat.Contains("Food") {
		t.Fatalf("expected Food")
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	} else if !core.IsConfig(err) {
		t.Fatalf("expected ConfigError, got %T", err)
	}
}

func TestLoadDefault(t *testing.T) {
	cat, err := LoadDefault()
	if err != nil {
		t.Fatalf("embedded catalog must load: %v", err)
	}
	if !cat.Contains("Food") {
		t.Fatalf("embedded catalog should include Food")
	}
}
