package game

import "stellarforge.ai/internal/sim/catalogs"

// Colony is a faction-owned settlement. Output is derived entirely
// from its building list against the building catalog.
type Colony struct {
	ID        string
	Name      string
	Planet    string
	Buildings []string
}

// Population sums the population attached to each building.
func (c *Colony) Population(cats *catalogs.Catalogs) int {
	total := 0
	for _, id := range c.Buildings {
		total += cats.Buildings.ByID[id].Population
	}
	return total
}

// Output returns per-kind resource production and science for one turn,
// before faction-level bonuses.
func (c *Colony) Output(cats *catalogs.Catalogs) (map[string]float64, float64) {
	produced := map[string]float64{}
	science := 0.0
	for _, id := range c.Buildings {
		def, ok := cats.Buildings.ByID[id]
		if !ok {
			continue
		}
		for _, rc := range def.Production {
			produced[rc.Resource] += rc.Amount
		}
		science += def.Science
	}
	return produced, science
}
