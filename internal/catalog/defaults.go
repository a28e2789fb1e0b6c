package catalog

import (
	_ "embed"

	"github.com/vovakirdan/baseraid/internal/battle"
)

//go:embed defaults/catalog.yaml
var defaultCatalogYAML []byte

// DefaultCatalog returns the built-in stat catalog. It mirrors the
// embedded defaults/catalog.yaml and serves as the last-resort fallback.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Rules: BattleRules{
			GridSize:      40,
			DeployDepth:   2,
			TickRate:      20,
			MaxBattleSecs: 180,
			LootFactor:    0.2,
			TroopBudget:   30,
		},
		Units: map[battle.UnitKind]battle.UnitStats{
			battle.UnitWarrior: {
				MaxHP:      100,
				Damage:     20,
				AttackRate: 1.0,
				Range:      1.0,
				MoveSpeed:  2.0,
				Prefers:    battle.TargetAny,
			},
			battle.UnitArcher: {
				MaxHP:      60,
				Damage:     14,
				AttackRate: 1.2,
				Range:      5.0,
				MoveSpeed:  1.8,
				Prefers:    battle.TargetAny,
			},
			battle.UnitHorseman: {
				MaxHP:      160,
				Damage:     26,
				AttackRate: 0.9,
				Range:      1.0,
				MoveSpeed:  4.0,
				Prefers:    battle.TargetAny,
			},
			battle.UnitRam: {
				MaxHP:      320,
				Damage:     60,
				AttackRate: 0.4,
				Range:      1.0,
				MoveSpeed:  1.2,
				Prefers:    battle.TargetDefensive,
			},
		},
		Buildings: map[battle.BuildingKind]BuildingSpec{
			battle.BuildingTownCenter: {Width: 4, Height: 4, BaseHP: 1500, HPPerLevel: 300},
			battle.BuildingHouse:      {Width: 2, Height: 2, BaseHP: 300, HPPerLevel: 60},
			battle.BuildingFarm:       {Width: 2, Height: 2, BaseHP: 500, HPPerLevel: 100},
			battle.BuildingBarracks:   {Width: 3, Height: 3, BaseHP: 700, HPPerLevel: 150},
			battle.BuildingTower:      {Width: 2, Height: 2, BaseHP: 600, HPPerLevel: 150, Defensive: true},
			battle.BuildingWall:       {Width: 1, Height: 1, BaseHP: 800, HPPerLevel: 200},
			battle.BuildingStorage:    {Width: 3, Height: 3, BaseHP: 900, HPPerLevel: 200},
			battle.BuildingGoldMine:   {Width: 2, Height: 2, BaseHP: 400, HPPerLevel: 100},
			battle.BuildingMarket:     {Width: 3, Height: 3, BaseHP: 550, HPPerLevel: 110},
			battle.BuildingTemple:     {Width: 3, Height: 3, BaseHP: 650, HPPerLevel: 140},
		},
	}
}
