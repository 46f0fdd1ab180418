package game

import (
	"stellarforge.ai/internal/sim/catalogs"
)

// testCatalogs builds a small in-memory catalog set: one currency, a
// few tradable kinds, the colony base plus two production buildings,
// two ship classes and a four-tech tree ending in a capstone.
func testCatalogs() *catalogs.Catalogs {
	c := &catalogs.Catalogs{}

	c.Resources.Currency = "CREDITS"
	c.Resources.Defs = map[string]catalogs.ResourceDef{
		"CREDITS": {ID: "CREDITS", Capacity: 1_000_000, Currency: true},
		"METAL":   {ID: "METAL", BasePrice: 1.5, Capacity: 1000},
		"FOOD":    {ID: "FOOD", BasePrice: 1.0, Capacity: 500},
		"CRYSTAL": {ID: "CRYSTAL", BasePrice: 8.0, Capacity: 200, Rare: true},
	}
	c.Resources.Palette = []string{"CREDITS", "CRYSTAL", "FOOD", "METAL"}
	c.Resources.Index = map[string]uint16{}
	for i, id := range c.Resources.Palette {
		c.Resources.Index[id] = uint16(i)
	}

	c.Buildings.ByID = map[string]catalogs.BuildingDef{
		"COLONY_BASE": {
			ID:         "COLONY_BASE",
			Cost:       []catalogs.ResourceCount{{Resource: "METAL", Amount: 100}},
			Production: []catalogs.ResourceCount{{Resource: "FOOD", Amount: 5}},
			Science:    1,
			Population: 10,
		},
		"MINE": {
			ID:         "MINE",
			Cost:       []catalogs.ResourceCount{{Resource: "METAL", Amount: 25}},
			Production: []catalogs.ResourceCount{{Resource: "METAL", Amount: 10}},
			Population: 5,
		},
		"LAB": {
			ID:         "LAB",
			Cost:       []catalogs.ResourceCount{{Resource: "METAL", Amount: 40}},
			Science:    5,
			Population: 3,
		},
	}

	c.Ships.ByID = map[string]catalogs.ShipDef{
		"FRIGATE": {ID: "FRIGATE", Class: "escort", Cost: []catalogs.ResourceCount{{Resource: "METAL", Amount: 30}}, Strength: 10},
		"CRUISER": {ID: "CRUISER", Class: "capital", Cost: []catalogs.ResourceCount{{Resource: "METAL", Amount: 80}}, Strength: 25},
	}

	c.Techs.ByID = map[string]catalogs.TechDef{
		"T_MINING":          {ID: "T_MINING", Cost: 10, Effect: EffectProductionBoost},
		"T_XENOLINGUISTICS": {ID: "T_XENOLINGUISTICS", Cost: 15, Effect: EffectScienceBoost},
		"T_ARCHIVES":        {ID: "T_ARCHIVES", Cost: 20, Effect: EffectStorageBoost, Prereqs: []string{"T_MINING"}},
		"T_ASCENSION_GATE":  {ID: "T_ASCENSION_GATE", Cost: 100, Prereqs: []string{"T_ARCHIVES"}, Capstone: true},
	}

	return c
}

func testGame(seed int64) *Game {
	return New(Config{ID: "test", Seed: seed}, testCatalogs())
}

func mustAddFaction(g *Game, id, name string) *Faction {
	f, err := g.AddFaction(id, name, false)
	if err != nil {
		panic(err)
	}
	return f
}
