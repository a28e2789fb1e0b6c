package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/baseraid/internal/battle"
)

// catalogFile mirrors the YAML layout. Kinds are plain strings here and
// converted to closed enums during validation.
type catalogFile struct {
	Rules     rulesFile               `yaml:"rules"`
	Units     map[string]unitFile     `yaml:"units"`
	Buildings map[string]buildingFile `yaml:"buildings"`
}

type rulesFile struct {
	GridSize      int     `yaml:"grid_size"`
	DeployDepth   int     `yaml:"deploy_depth"`
	TickRate      int     `yaml:"tick_rate"`
	MaxBattleSecs int     `yaml:"max_battle_secs"`
	LootFactor    float64 `yaml:"loot_factor"`
	TroopBudget   int     `yaml:"troop_budget"`
}

type unitFile struct {
	MaxHP      float64 `yaml:"max_hp"`
	Damage     float64 `yaml:"damage"`
	AttackRate float64 `yaml:"attack_rate"`
	Range      float64 `yaml:"range"`
	MoveSpeed  float64 `yaml:"move_speed"`
	Prefers    string  `yaml:"prefers"`
}

type buildingFile struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	BaseHP     float64 `yaml:"base_hp"`
	HPPerLevel float64 `yaml:"hp_per_level"`
	Defensive  bool    `yaml:"defensive"`
}

// Load loads the stat catalog.
// Search order: customPath -> ~/.baseraid/configs/catalog.yaml -> ./configs/catalog.yaml -> embedded default
func Load(customPath string) (*Catalog, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", customPath, err)
		}
		cat, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse catalog %s: %w", customPath, err)
		}
		return cat, nil
	}

	// Try user config directory
	if userPath := userConfigPath("catalog.yaml"); userPath != "" {
		if data, err := os.ReadFile(userPath); err == nil {
			if cat, err := parse(data); err == nil {
				return cat, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/catalog.yaml"); err == nil {
		if cat, err := parse(data); err == nil {
			return cat, nil
		}
	}

	// Use embedded default YAML
	cat, err := parse(defaultCatalogYAML)
	if err != nil {
		return DefaultCatalog(), nil // Fallback to hardcoded if embed fails
	}
	return cat, nil
}

// userConfigPath returns the path to a user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".baseraid", "configs", filename)
}

// parse unmarshals and validates a catalog document.
func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	if err := validateRules(file.Rules); err != nil {
		return nil, err
	}

	cat := &Catalog{
		Rules: BattleRules{
			GridSize:      file.Rules.GridSize,
			DeployDepth:   file.Rules.DeployDepth,
			TickRate:      file.Rules.TickRate,
			MaxBattleSecs: file.Rules.MaxBattleSecs,
			LootFactor:    file.Rules.LootFactor,
			TroopBudget:   file.Rules.TroopBudget,
		},
		Units:     make(map[battle.UnitKind]battle.UnitStats, len(file.Units)),
		Buildings: make(map[battle.BuildingKind]BuildingSpec, len(file.Buildings)),
	}

	for name, entry := range file.Units {
		kind, err := battle.ParseUnitKind(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: units: %w", err)
		}
		prefers, err := battle.ParseTargetPreference(entry.Prefers)
		if err != nil {
			return nil, fmt.Errorf("catalog: unit %s: %w", name, err)
		}
		if entry.MaxHP <= 0 || entry.Damage <= 0 || entry.AttackRate <= 0 || entry.MoveSpeed <= 0 {
			return nil, fmt.Errorf("catalog: unit %s has non-positive stats", name)
		}
		if entry.Range < 0 {
			return nil, fmt.Errorf("catalog: unit %s has negative range", name)
		}
		cat.Units[kind] = battle.UnitStats{
			MaxHP:      entry.MaxHP,
			Damage:     entry.Damage,
			AttackRate: entry.AttackRate,
			Range:      entry.Range,
			MoveSpeed:  entry.MoveSpeed,
			Prefers:    prefers,
		}
	}

	for name, entry := range file.Buildings {
		kind, err := battle.ParseBuildingKind(name)
		if err != nil {
			return nil, fmt.Errorf("catalog: buildings: %w", err)
		}
		if entry.Width <= 0 || entry.Height <= 0 {
			return nil, fmt.Errorf("catalog: building %s has non-positive size", name)
		}
		if entry.BaseHP <= 0 || entry.HPPerLevel < 0 {
			return nil, fmt.Errorf("catalog: building %s has bad hit points", name)
		}
		cat.Buildings[kind] = BuildingSpec{
			Width:      entry.Width,
			Height:     entry.Height,
			BaseHP:     entry.BaseHP,
			HPPerLevel: entry.HPPerLevel,
			Defensive:  entry.Defensive,
		}
	}

	return cat, nil
}

func validateRules(r rulesFile) error {
	if r.GridSize <= 0 {
		return fmt.Errorf("catalog: grid_size must be positive")
	}
	if r.DeployDepth <= 0 {
		return fmt.Errorf("catalog: deploy_depth must be positive")
	}
	if r.TickRate <= 0 {
		return fmt.Errorf("catalog: tick_rate must be positive")
	}
	if r.MaxBattleSecs <= 0 {
		return fmt.Errorf("catalog: max_battle_secs must be positive")
	}
	if r.LootFactor < 0 || r.LootFactor > 1 {
		return fmt.Errorf("catalog: loot_factor must be within [0, 1]")
	}
	if r.TroopBudget <= 0 {
		return fmt.Errorf("catalog: troop_budget must be positive")
	}
	return nil
}
