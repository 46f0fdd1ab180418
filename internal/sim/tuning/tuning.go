package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TurnIntervalMs     int `yaml:"turn_interval_ms"`
	AutosaveEveryTurns int `yaml:"autosave_every_turns"`
	EventLogCap        int `yaml:"event_log_cap"`

	Market    Market    `yaml:"market"`
	Diplomacy Diplomacy `yaml:"diplomacy"`
}

type Market struct {
	BuyVolumeStep float64 `yaml:"buy_volume_step"`
	SellDecayStep float64 `yaml:"sell_decay_step"`
	SaleRatio     float64 `yaml:"sale_ratio"`
	MultiplierMin float64 `yaml:"multiplier_min"`
	MultiplierMax float64 `yaml:"multiplier_max"`
}

type Diplomacy struct {
	DecayChance        float64 `yaml:"decay_chance"`
	ForceRederiveDelta int     `yaml:"force_rederive_delta"`
	WarDelta           int     `yaml:"war_delta"`
	PeaceDelta         int     `yaml:"peace_delta"`
	TradeDelta         int     `yaml:"trade_delta"`
	EmbargoDelta       int     `yaml:"embargo_delta"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TurnIntervalMs:     1000,
		AutosaveEveryTurns: 10,
		EventLogCap:        100,
		Market: Market{
			BuyVolumeStep: 0.02,
			SellDecayStep: 0.01,
			SaleRatio:     0.7,
			MultiplierMin: 0.5,
			MultiplierMax: 5.0,
		},
		Diplomacy: Diplomacy{
			DecayChance:        0.10,
			ForceRederiveDelta: 10,
			WarDelta:           -50,
			PeaceDelta:         20,
			TradeDelta:         15,
			EmbargoDelta:       -10,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.normalize()
	return t, nil
}

func (t *Tuning) normalize() {
	d := Defaults()
	if t.TurnIntervalMs <= 0 {
		t.TurnIntervalMs = d.TurnIntervalMs
	}
	if t.AutosaveEveryTurns <= 0 {
		t.AutosaveEveryTurns = d.AutosaveEveryTurns
	}
	if t.EventLogCap <= 0 {
		t.EventLogCap = d.EventLogCap
	}
	if t.Market.BuyVolumeStep <= 0 {
		t.Market.BuyVolumeStep = d.Market.BuyVolumeStep
	}
	if t.Market.SellDecayStep <= 0 {
		t.Market.SellDecayStep = d.Market.SellDecayStep
	}
	if t.Market.SaleRatio <= 0 || t.Market.SaleRatio > 1 {
		t.Market.SaleRatio = d.Market.SaleRatio
	}
	if t.Market.MultiplierMin <= 0 {
		t.Market.MultiplierMin = d.Market.MultiplierMin
	}
	if t.Market.MultiplierMax < t.Market.MultiplierMin {
		t.Market.MultiplierMax = d.Market.MultiplierMax
	}
	if t.Diplomacy.DecayChance < 0 || t.Diplomacy.DecayChance > 1 {
		t.Diplomacy.DecayChance = d.Diplomacy.DecayChance
	}
	if t.Diplomacy.ForceRederiveDelta <= 0 {
		t.Diplomacy.ForceRederiveDelta = d.Diplomacy.ForceRederiveDelta
	}
	if t.Diplomacy.WarDelta == 0 {
		t.Diplomacy.WarDelta = d.Diplomacy.WarDelta
	}
	if t.Diplomacy.PeaceDelta == 0 {
		t.Diplomacy.PeaceDelta = d.Diplomacy.PeaceDelta
	}
	if t.Diplomacy.TradeDelta == 0 {
		t.Diplomacy.TradeDelta = d.Diplomacy.TradeDelta
	}
	if t.Diplomacy.EmbargoDelta == 0 {
		t.Diplomacy.EmbargoDelta = d.Diplomacy.EmbargoDelta
	}
}
