package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML pricing file at path on top of the built-in
// defaults. Only vendors present in the file are replaced; their config
// is taken wholesale, not field-merged. An empty path returns defaults.
func LoadFile(path string) (Table, error) {
	table := Defaults()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing file: %w", err)
	}

	var overrides Table
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse pricing file %s: %w", path, err)
	}

	for vendor, cfg := range overrides {
		table[vendor] = cfg
	}
	return table, nil
}
