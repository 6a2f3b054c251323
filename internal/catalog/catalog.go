// Package catalog loads the deployment's help-category and location catalogs.
// Both sets are pure data: deployments override them with a YAML file instead
// of recompiling.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Category is one enumerated kind of assistance.
type Category struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon" json:"icon,omitempty"`
}

// Location is a named help point defined by the deployment.
type Location struct {
	Slug string  `yaml:"slug" json:"slug"`
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

// Catalog holds the recognized categories and locations.
type Catalog struct {
	Categories []Category `yaml:"categories"`
	Locations  []Location `yaml:"locations"`

	categoryIDs map[string]struct{}
}

// Load reads the catalog from path, or the embedded default when path is
// empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		data = b
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Categories) == 0 {
		return nil, fmt.Errorf("catalog defines no help categories")
	}
	if len(cat.Locations) == 0 {
		return nil, fmt.Errorf("catalog defines no locations")
	}

	cat.categoryIDs = make(map[string]struct{}, len(cat.Categories))
	for _, c := range cat.Categories {
		if c.ID == "" {
			return nil, fmt.Errorf("catalog category with empty id")
		}
		cat.categoryIDs[c.ID] = struct{}{}
	}
	return &cat, nil
}

// ValidCategory reports whether id is a recognized help category.
func (c *Catalog) ValidCategory(id string) bool {
	_, ok := c.categoryIDs[id]
	return ok
}
