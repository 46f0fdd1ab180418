package catalogs

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const (
	goodResources = `[
  {"id": "CREDITS", "base_price": 0, "capacity": 1000000, "currency": true},
  {"id": "METAL", "base_price": 1.5, "capacity": 1000},
  {"id": "FOOD", "base_price": 1.0, "capacity": 500}
]`
	goodBuildings = `[
  {"id": "COLONY_BASE", "cost": [{"resource": "METAL", "amount": 100}], "production": [{"resource": "FOOD", "amount": 5}], "science": 1, "population": 10}
]`
	goodShips = `[
  {"id": "FRIGATE", "class": "escort", "cost": [{"resource": "METAL", "amount": 30}], "strength": 10}
]`
	goodTechs = `[
  {"id": "T_MINING", "cost": 10, "effect": "PRODUCTION_BOOST"},
  {"id": "T_GATE", "cost": 100, "prereqs": ["T_MINING"], "capstone": true}
]`
)

func writeConfigs(t *testing.T, resources, buildings, ships, techs string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"resources.json": resources,
		"buildings.json": buildings,
		"ships.json":     ships,
		"techs.json":     techs,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadBuildsPaletteWithCurrencyFirst(t *testing.T) {
	dir := writeConfigs(t, goodResources, goodBuildings, goodShips, goodTechs)
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if c.Resources.Currency != "CREDITS" {
		t.Fatalf("currency = %s", c.Resources.Currency)
	}
	if !reflect.DeepEqual(c.Resources.Palette, []string{"CREDITS", "FOOD", "METAL"}) {
		t.Fatalf("palette = %v", c.Resources.Palette)
	}
	if c.Resources.Index["CREDITS"] != 0 || c.Resources.Index["METAL"] != 2 {
		t.Fatalf("index = %v", c.Resources.Index)
	}
	for _, digest := range []string{c.Resources.PaletteDigest, c.Resources.DefsDigest, c.Buildings.Digest, c.Ships.Digest, c.Techs.Digest} {
		if len(digest) != 64 {
			t.Fatalf("bad digest %q", digest)
		}
	}
	if c.Buildings.ByID["COLONY_BASE"].Population != 10 {
		t.Fatalf("buildings = %+v", c.Buildings.ByID)
	}
}

func TestLoadRejectsBadCatalogs(t *testing.T) {
	cases := []struct {
		name                               string
		resources, buildings, ships, techs string
		want                               string
	}{
		{
			"missing currency",
			`[{"id": "METAL", "base_price": 1, "capacity": 10}]`,
			goodBuildings, goodShips, goodTechs,
			"missing currency",
		},
		{
			"two currencies",
			`[{"id": "A", "capacity": 1, "currency": true}, {"id": "B", "capacity": 1, "currency": true}]`,
			goodBuildings, goodShips, goodTechs,
			"multiple currency",
		},
		{
			"nonpositive capacity",
			`[{"id": "CREDITS", "capacity": 0, "currency": true}]`,
			goodBuildings, goodShips, goodTechs,
			"capacity must be positive",
		},
		{
			"unknown prereq",
			goodResources, goodBuildings, goodShips,
			`[{"id": "T_A", "cost": 1, "prereqs": ["T_MISSING"], "capstone": true}]`,
			"unknown prereq",
		},
		{
			"no capstone",
			goodResources, goodBuildings, goodShips,
			`[{"id": "T_A", "cost": 1}]`,
			"missing capstone",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := writeConfigs(t, c.resources, c.buildings, c.ships, c.techs)
			_, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("want error containing %q, got %v", c.want, err)
			}
		})
	}
}
