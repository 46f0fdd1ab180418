package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Catalogs struct {
	Resources ResourceCatalog
	Buildings BuildingCatalog
	Ships     ShipCatalog
	Techs     TechCatalog
}

type ResourceCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ResourceDef
	Currency      string
	PaletteDigest string
	DefsDigest    string
}

type ResourceDef struct {
	ID        string  `json:"id"`
	BasePrice float64 `json:"base_price"`
	Capacity  float64 `json:"capacity"`
	Rare      bool    `json:"rare,omitempty"`
	Currency  bool    `json:"currency,omitempty"`
}

type BuildingCatalog struct {
	ByID   map[string]BuildingDef
	Digest string
}

type BuildingDef struct {
	ID         string          `json:"id"`
	Cost       []ResourceCount `json:"cost"`
	Production []ResourceCount `json:"production,omitempty"`
	Science    float64         `json:"science,omitempty"`
	Population int             `json:"population,omitempty"`
}

type ResourceCount struct {
	Resource string  `json:"resource"`
	Amount   float64 `json:"amount"`
}

type ShipCatalog struct {
	ByID   map[string]ShipDef
	Digest string
}

type ShipDef struct {
	ID       string          `json:"id"`
	Class    string          `json:"class"`
	Cost     []ResourceCount `json:"cost"`
	Strength float64         `json:"strength"`
}

type TechCatalog struct {
	ByID   map[string]TechDef
	Digest string
}

type TechDef struct {
	ID       string   `json:"id"`
	Cost     float64  `json:"cost"`
	Prereqs  []string `json:"prereqs,omitempty"`
	Effect   string   `json:"effect,omitempty"`
	Capstone bool     `json:"capstone,omitempty"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadResources(filepath.Join(configDir, "resources.json"), &c.Resources); err != nil {
		return nil, err
	}
	if err := loadBuildings(filepath.Join(configDir, "buildings.json"), &c.Buildings); err != nil {
		return nil, err
	}
	if err := loadShips(filepath.Join(configDir, "ships.json"), &c.Ships); err != nil {
		return nil, err
	}
	if err := loadTechs(filepath.Join(configDir, "techs.json"), &c.Techs); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadResources(path string, out *ResourceCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ResourceDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("resources.json: %w", err)
	}
	out.Defs = map[string]ResourceDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("resources.json: empty id")
		}
		if d.Capacity <= 0 {
			return fmt.Errorf("resources.json: %s: capacity must be positive", d.ID)
		}
		if d.Currency {
			if out.Currency != "" {
				return fmt.Errorf("resources.json: multiple currency kinds (%s, %s)", out.Currency, d.ID)
			}
			out.Currency = d.ID
		}
		out.Defs[d.ID] = d
	}
	if out.Currency == "" {
		return fmt.Errorf("resources.json: missing currency kind")
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// The currency kind is always palette id 0.
	ids = append([]string{out.Currency}, filterOut(ids, out.Currency)...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadBuildings(path string, out *BuildingCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []BuildingDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("buildings.json: %w", err)
	}
	out.ByID = map[string]BuildingDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("buildings.json: empty id")
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadShips(path string, out *ShipCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ShipDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("ships.json: %w", err)
	}
	out.ByID = map[string]ShipDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("ships.json: empty id")
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadTechs(path string, out *TechCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []TechDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("techs.json: %w", err)
	}
	out.ByID = map[string]TechDef{}
	capstones := 0
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("techs.json: empty id")
		}
		if d.Cost <= 0 {
			return fmt.Errorf("techs.json: %s: cost must be positive", d.ID)
		}
		if d.Capstone {
			capstones++
		}
		out.ByID[d.ID] = d
	}
	for _, d := range out.ByID {
		for _, p := range d.Prereqs {
			if _, ok := out.ByID[p]; !ok {
				return fmt.Errorf("techs.json: %s: unknown prereq %s", d.ID, p)
			}
		}
	}
	if capstones == 0 {
		return fmt.Errorf("techs.json: missing capstone tech")
	}
	return nil
}

func filterOut(ids []string, drop string) []string {
	outIDs := ids[:0]
	for _, id := range ids {
		if id != drop {
			outIDs = append(outIDs, id)
		}
	}
	return outIDs
}
