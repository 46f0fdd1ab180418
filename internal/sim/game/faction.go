package game

import (
	"sort"

	"stellarforge.ai/internal/sim/catalogs"
)

// FactionStats are aggregate numbers recomputed from scratch every
// turn by re-summing over colonies and ships. Full recomputation trades
// efficiency for correctness.
type FactionStats struct {
	Population    int     `json:"population"`
	Production    float64 `json:"production"`
	Science       float64 `json:"science"`
	FleetStrength float64 `json:"fleet_strength"`
}

type Faction struct {
	ID     string
	Name   string
	Player bool

	Ledger   *Ledger
	Colonies map[string]*Colony
	Ships    map[string]int

	Research ResearchState
	Bonuses  Bonuses

	Stats      FactionStats
	Eliminated bool

	// Advisor drives non-player factions. Nil for the player.
	Advisor Advisor
}

func newFaction(id, name string, player bool, cats *catalogs.Catalogs) *Faction {
	return &Faction{
		ID:       id,
		Name:     name,
		Player:   player,
		Ledger:   NewLedger(id, cats),
		Colonies: map[string]*Colony{},
		Ships:    map[string]int{},
		Research: newResearchState(),
		Bonuses:  defaultBonuses(),
	}
}

func (f *Faction) Alive() bool { return !f.Eliminated }

// colonyIDs returns the faction's colony IDs sorted, for deterministic
// iteration.
func (f *Faction) colonyIDs() []string {
	ids := make([]string, 0, len(f.Colonies))
	for id := range f.Colonies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// recomputeStats re-sums population, production, science and fleet
// strength over colonies and ships.
func (f *Faction) recomputeStats(cats *catalogs.Catalogs) {
	var s FactionStats
	for _, id := range f.colonyIDs() {
		c := f.Colonies[id]
		s.Population += c.Population(cats)
		produced, science := c.Output(cats)
		for _, amt := range produced {
			s.Production += amt * f.Bonuses.ProductionMult
		}
		s.Science += science * f.Bonuses.ScienceMult
	}
	for shipID, n := range f.Ships {
		s.FleetStrength += cats.Ships.ByID[shipID].Strength * float64(n)
	}
	f.Stats = s
}
