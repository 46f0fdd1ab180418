package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTuning(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeTuning(t, `
protocol_version: "1.0"
turn_interval_ms: 250
autosave_every_turns: 5
market:
  sale_ratio: 0.8
diplomacy:
  war_delta: -60
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TurnIntervalMs != 250 || got.AutosaveEveryTurns != 5 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Market.SaleRatio != 0.8 {
		t.Fatalf("sale_ratio = %v", got.Market.SaleRatio)
	}
	if got.Diplomacy.WarDelta != -60 {
		t.Fatalf("war_delta = %v", got.Diplomacy.WarDelta)
	}
	// Unset fields keep their defaults.
	if got.Market.MultiplierMax != 5.0 || got.EventLogCap != 100 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := writeTuning(t, `
turn_interval_ms: -5
market:
  sale_ratio: 1.7
  multiplier_min: -1
diplomacy:
  decay_chance: 3.0
`)
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := Defaults()
	if got.TurnIntervalMs != d.TurnIntervalMs {
		t.Fatalf("turn_interval_ms = %v", got.TurnIntervalMs)
	}
	if got.Market.SaleRatio != d.Market.SaleRatio || got.Market.MultiplierMin != d.Market.MultiplierMin {
		t.Fatalf("market not normalized: %+v", got.Market)
	}
	if got.Diplomacy.DecayChance != d.Diplomacy.DecayChance {
		t.Fatalf("decay_chance = %v", got.Diplomacy.DecayChance)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want IsNotExist, got %v", err)
	}
}
