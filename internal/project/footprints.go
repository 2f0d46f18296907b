package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/homalozoa/pcb-placement-generator/internal/model"
)

// LoadFootprintOverrides reads a JSON file mapping package name fragments to
// footprint sizes, e.g. {"myconn-12": {"width": 8.0, "height": 3.5}}.
// A missing file yields an empty map with no error so the overrides path can
// be configured before the file exists.
func LoadFootprintOverrides(path string) (map[string]model.FootprintSize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.FootprintSize{}, nil
		}
		return nil, err
	}

	var sizes map[string]model.FootprintSize
	if err := json.Unmarshal(data, &sizes); err != nil {
		return nil, fmt.Errorf("invalid footprint overrides file: %w", err)
	}

	for k, v := range sizes {
		if v.Width <= 0 || v.Height <= 0 {
			return nil, fmt.Errorf("footprint override %q has non-positive dimensions", k)
		}
	}
	return sizes, nil
}

// LoadCatalog builds the footprint catalog, merging overrides from path on
// top of the builtin table when path is non-empty.
func LoadCatalog(path string) (*model.Catalog, error) {
	catalog := model.NewCatalog()
	if path == "" {
		return catalog, nil
	}
	overrides, err := LoadFootprintOverrides(path)
	if err != nil {
		return nil, err
	}
	catalog.Merge(overrides)
	return catalog, nil
}
