package game

import (
	"encoding/json"
	"fmt"
	"os"

	"stellarforge.ai/internal/sim/catalogs"
)

// Scenario is a declarative starting position: factions, their opening
// stockpiles, colonies and fleets. Loaded from JSON at game creation.
type Scenario struct {
	Name     string            `json:"name"`
	Factions []ScenarioFaction `json:"factions"`
}

type ScenarioFaction struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Player    bool               `json:"player,omitempty"`
	Stockpile map[string]float64 `json:"stockpile,omitempty"`
	Colonies  []ScenarioColony   `json:"colonies,omitempty"`
	Ships     map[string]int     `json:"ships,omitempty"`
}

type ScenarioColony struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Planet    string   `json:"planet"`
	Buildings []string `json:"buildings,omitempty"`
}

func LoadScenario(path string, cats *catalogs.Catalogs) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if err := s.validate(cats); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate(cats *catalogs.Catalogs) error {
	if len(s.Factions) == 0 {
		return fmt.Errorf("no factions")
	}
	seen := map[string]bool{}
	colonySeen := map[string]bool{}
	for _, f := range s.Factions {
		if f.ID == "" || f.Name == "" {
			return fmt.Errorf("faction with empty id or name")
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate faction %s", f.ID)
		}
		seen[f.ID] = true
		for kind := range f.Stockpile {
			if _, ok := cats.Resources.Defs[kind]; !ok {
				return fmt.Errorf("faction %s: unknown resource %s", f.ID, kind)
			}
		}
		for _, c := range f.Colonies {
			if colonySeen[c.ID] {
				return fmt.Errorf("duplicate colony %s", c.ID)
			}
			colonySeen[c.ID] = true
			for _, b := range c.Buildings {
				if _, ok := cats.Buildings.ByID[b]; !ok {
					return fmt.Errorf("colony %s: unknown building %s", c.ID, b)
				}
			}
		}
		for shipID := range f.Ships {
			if _, ok := cats.Ships.ByID[shipID]; !ok {
				return fmt.Errorf("faction %s: unknown ship %s", f.ID, shipID)
			}
		}
	}
	return nil
}

// ApplyScenario populates a fresh game with the scenario's factions.
// Non-player factions are given the stock advisor.
func (g *Game) ApplyScenario(s *Scenario) error {
	for _, sf := range s.Factions {
		f, err := g.AddFaction(sf.ID, sf.Name, sf.Player)
		if err != nil {
			return err
		}
		for kind, amt := range sf.Stockpile {
			f.Ledger.Add(kind, amt)
		}
		for _, sc := range sf.Colonies {
			f.Colonies[sc.ID] = &Colony{
				ID:        sc.ID,
				Name:      sc.Name,
				Planet:    sc.Planet,
				Buildings: append([]string(nil), sc.Buildings...),
			}
		}
		for shipID, n := range sf.Ships {
			f.Ships[shipID] = n
		}
		if !sf.Player {
			f.Advisor = NewBasicAdvisor(g, sf.ID)
		}
		f.recomputeStats(g.catalogs)
	}
	return nil
}
