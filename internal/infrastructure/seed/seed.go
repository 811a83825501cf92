// Package seed loads the starter vegetable catalog from YAML.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hapkiduki/apnacart/internal/domain/entity"
	"github.com/hapkiduki/apnacart/internal/domain/valueobject"
)

//go:embed vegetables.yaml
var defaultCatalog []byte

// ErrEmptyCatalog is returned when a seed file lists no vegetables.
var ErrEmptyCatalog = errors.New("seed catalog has no vegetables")

// Item is one seed entry.
type Item struct {
	Name   string `yaml:"name"`
	Weight string `yaml:"weight"`
	Image  string `yaml:"image,omitempty"`
}

type catalogFile struct {
	Vegetables []Item `yaml:"vegetables"`
}

// Default returns the built-in catalog.
func Default() ([]*entity.Vegetable, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from path. An empty path returns Default.
func LoadFile(path string) ([]*entity.Vegetable, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
// Names must be unique ignoring case.
func Parse(data []byte) ([]*entity.Vegetable, error) {
	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	if len(doc.Vegetables) == 0 {
		return nil, ErrEmptyCatalog
	}

	seen := make(map[string]int, len(doc.Vegetables))
	out := make([]*entity.Vegetable, 0, len(doc.Vegetables))
	for i, item := range doc.Vegetables {
		token, err := valueobject.ParseWeightToken(item.Weight)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d (%s): %w", i+1, item.Name, err)
		}
		v, err := entity.NewVegetable(item.Name, token, item.Image)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d (%s): %w", i+1, item.Name, err)
		}

		key := strings.ToLower(v.Name)
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("seed entry %d duplicates entry %d: %s", i+1, prev, v.Name)
		}
		seen[key] = i + 1
		out = append(out, v)
	}
	return out, nil
}
