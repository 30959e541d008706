package data

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedEntry describes one entity spawned at boot.
type SeedEntry struct {
	Name     string     `yaml:"name"`
	Tag      string     `yaml:"tag"`
	Pos      [3]float32 `yaml:"pos"`
	Vel      [3]float32 `yaml:"vel"`
	MaxVel   float32    `yaml:"max_vel"`
	Collider bool       `yaml:"collider"`
	Parent   string     `yaml:"parent"` // name of an earlier entry
}

// SeedTable is the ordered list of boot entities.
type SeedTable struct {
	entries []SeedEntry
}

// LoadSeedTable loads an entity seed YAML file. A missing file yields an
// empty table.
func LoadSeedTable(path string) (*SeedTable, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &SeedTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed list: %w", err)
	}
	var entries []SeedEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse seed list: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.Parent != "" && !seen[e.Parent] {
			return nil, fmt.Errorf("seed %d (%q): parent %q not defined earlier", i, e.Name, e.Parent)
		}
		if e.Name != "" {
			seen[e.Name] = true
		}
	}
	return &SeedTable{entries: entries}, nil
}

func (t *SeedTable) Entries() []SeedEntry { return t.entries }

// Count returns the total number of seed entries loaded.
func (t *SeedTable) Count() int {
	return len(t.entries)
}
