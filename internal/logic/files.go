package logic

import (
	"fmt"
	"os"

	"github.com/smashlab/matchup-api/internal/models"
)

// LoadAliasFile reads a JSON alias table from path. An empty path selects
// DefaultAliases.
func LoadAliasFile(path string) (AliasTable, error) {
	if path == "" {
		return DefaultAliases(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return AliasTable{}, fmt.Errorf("open alias table: %w", err)
	}
	defer f.Close()
	return LoadAliasTable(f)
}

// LoadProfilesFile reads an attribute table CSV from path.
func LoadProfilesFile(path string, schema Schema) ([]models.CharacterProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	defer f.Close()

	profiles, err := LoadProfilesCSV(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}
