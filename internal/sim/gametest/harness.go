// Package gametest provides an integration harness that runs a full
// game against the real persistence stack: scenario bootstrap, turn
// logs on disk, autosaves, resume.
package gametest

import (
	"fmt"
	"os"
	"path/filepath"

	persistlog "stellarforge.ai/internal/persistence/log"
	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
)

const scenarioJSON = `{
  "name": "harness",
  "factions": [
    {
      "id": "F_TERRA",
      "name": "Terran Directorate",
      "player": true,
      "stockpile": {"CREDITS": 500, "METAL": 200},
      "colonies": [
        {"id": "C_HOME", "name": "Homeworld", "planet": "Terra", "buildings": ["COLONY_BASE", "MINE", "LAB"]}
      ]
    },
    {
      "id": "F_VEGA",
      "name": "Vegan Combine",
      "stockpile": {"CREDITS": 500},
      "colonies": [
        {"id": "C_VEGA", "name": "Vega Prime", "planet": "Vega", "buildings": ["COLONY_BASE"]}
      ]
    }
  ]
}`

// Harness owns one game wired to on-disk persistence under Dir.
type Harness struct {
	Game     *game.Game
	Catalogs *catalogs.Catalogs
	Dir      string
	SavesDir string

	turnLog *persistlog.TurnLogger
}

// Catalogs builds the harness catalog set in memory.
func Catalogs() *catalogs.Catalogs {
	c := &catalogs.Catalogs{}

	c.Resources.Currency = "CREDITS"
	c.Resources.Defs = map[string]catalogs.ResourceDef{
		"CREDITS": {ID: "CREDITS", Capacity: 1_000_000, Currency: true},
		"METAL":   {ID: "METAL", BasePrice: 1.5, Capacity: 1000},
		"FOOD":    {ID: "FOOD", BasePrice: 1.0, Capacity: 500},
	}
	c.Resources.Palette = []string{"CREDITS", "FOOD", "METAL"}
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
	}

	c.Techs.ByID = map[string]catalogs.TechDef{
		"T_MINING":         {ID: "T_MINING", Cost: 10, Effect: "PRODUCTION_BOOST"},
		"T_ARCHIVES":       {ID: "T_ARCHIVES", Cost: 20, Effect: "STORAGE_BOOST", Prereqs: []string{"T_MINING"}},
		"T_ASCENSION_GATE": {ID: "T_ASCENSION_GATE", Cost: 2000, Prereqs: []string{"T_ARCHIVES"}, Capstone: true},
	}

	return c
}

type diskSaver struct{ dir string }

func (s diskSaver) AutoSave(snap snapshot.SnapshotV1) error {
	return snapshot.WriteSnapshot(snapshot.PathFor(s.dir, snap.Header.Turn), snap)
}

// New builds a fresh harness game in dir with the given seed. Autosaves
// land in dir/saves and turn logs in dir/turns.
func New(dir string, seed int64) (*Harness, error) {
	cats := Catalogs()

	scenPath := filepath.Join(dir, "scenario.json")
	if err := os.WriteFile(scenPath, []byte(scenarioJSON), 0o644); err != nil {
		return nil, err
	}
	scen, err := game.LoadScenario(scenPath, cats)
	if err != nil {
		return nil, err
	}

	g := game.New(game.Config{ID: "harness", Seed: seed, AutosaveEveryTurns: 5}, cats)
	if err := g.ApplyScenario(scen); err != nil {
		return nil, err
	}

	h := &Harness{
		Game:     g,
		Catalogs: cats,
		Dir:      dir,
		SavesDir: filepath.Join(dir, "saves"),
		turnLog:  persistlog.NewTurnLogger(dir),
	}
	if err := os.MkdirAll(h.SavesDir, 0o755); err != nil {
		return nil, err
	}
	g.SetTurnLogger(h.turnLog)
	g.SetSaver(diskSaver{dir: h.SavesDir})
	return h, nil
}

// RunTurns advances up to n turns, stopping early at game over.
func (h *Harness) RunTurns(n int) error {
	for i := 0; i < n; i++ {
		if err := h.Game.NextTurn(); err != nil {
			if err == game.ErrGameOver {
				return nil
			}
			return fmt.Errorf("turn %d: %w", i, err)
		}
		if h.Game.GameOver() {
			return nil
		}
	}
	return nil
}

// Close flushes the turn log.
func (h *Harness) Close() error { return h.turnLog.Close() }
