// Package catalog supplies the fixed vocabulary of valid expense categories
// and their allowed subcategories. A catalog is loaded once at startup from a
// JSON resource and never mutated afterwards, so lookups are safe for
// concurrent readers.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"expenses/internal/core"
)

//go:embed categories.json
var defaultFS embed.FS

// Catalog maps each category to its allowed subcategory set.
type Catalog struct {
	categories map[string]map[string]struct{}
}

// Load parses a nested mapping of category to subcategory list. It fails with
// a ConfigError on malformed JSON, duplicate category keys, or non-string
// subcategory entries, and never returns a partial catalog.
func Load(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, &core.ConfigError{Reason: fmt.Sprintf("parse: %v", err)}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &core.ConfigError{Reason: "top level must be an object of category to subcategory list"}
	}

	categories := make(map[string]map[string]struct{})
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &core.ConfigError{Reason: fmt.Sprintf("parse: %v", err)}
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, &core.ConfigError{Reason: "category key must be a string"}
		}
		if name == "" {
			return nil, &core.ConfigError{Reason: "category key must not be empty"}
		}
		if _, exists := categories[name]; exists {
			return nil, &core.ConfigError{Reason: fmt.Sprintf("duplicate category %q", name)}
		}

		subs, err := decodeSubcategories(dec, name)
		if err != nil {
			return nil, err
		}
		categories[name] = subs
	}
	if _, err := dec.Token(); err != nil {
		return nil, &core.ConfigError{Reason: fmt.Sprintf("parse: %v", err)}
	}
	if len(categories) == 0 {
		return nil, &core.ConfigError{Reason: "catalog must define at least one category"}
	}

	return &Catalog{categories: categories}, nil
}

func decodeSubcategories(dec *json.Decoder, category string) (map[string]struct{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, &core.ConfigError{Reason: fmt.Sprintf("parse category %q: %v", category, err)}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, &core.ConfigError{Reason: fmt.Sprintf("category %q must map to a list of subcategory names", category)}
	}

	subs := make(map[string]struct{})
	for dec.More() {
		entry, err := dec.Token()
		if err != nil {
			return nil, &core.ConfigError{Reason: fmt.Sprintf("parse category %q: %v", category, err)}
		}
		name, ok := entry.(string)
		if !ok {
			return nil, &core.ConfigError{Reason: fmt.Sprintf("category %q has a non-string subcategory entry", category)}
		}
		subs[name] = struct{}{}
	}
	if _, err := dec.Token(); err != nil {
		return nil, &core.ConfigError{Reason: fmt.Sprintf("parse category %q: %v", category, err)}
	}
	return subs, nil
}

// LoadFile loads a catalog from a JSON file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &core.ConfigError{Source: path, Reason: err.Error()}
	}
	defer f.Close()

	cat, err := Load(f)
	if err != nil {
		if ce, ok := err.(*core.ConfigError); ok {
			ce.Source = path
		}
		return nil, err
	}
	return cat, nil
}

// LoadDefault parses the catalog embedded in the binary.
func LoadDefault() (*Catalog, error) {
	f, err := defaultFS.Open("categories.json")
	if err != nil {
		return nil, &core.ConfigError{Source: "embedded", Reason: err.Error()}
	}
	defer f.Close()
	return Load(f)
}

// Contains reports whether category is part of the vocabulary.
func (c *Catalog) Contains(category string) bool {
	_, ok := c.categories[category]
	return ok
}

// ContainsSubcategory reports whether subcategory belongs to category's
// allowed set.
func (c *Catalog) ContainsSubcategory(category, subcategory string) bool {
	subs, ok := c.categories[category]
	if !ok {
		return false
	}
	_, ok = subs[subcategory]
	return ok
}

// Categories returns the category names in sorted order.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subcategories returns the sorted subcategory names for a category, or nil
// when the category is unknown.
func (c *Catalog) Subcategories(category string) []string {
	subs, ok := c.categories[category]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(subs))
	for name := range subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
