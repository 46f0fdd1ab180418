package game

// StateSnapshot is an immutable summary of the world handed to
// advisors and observers. It is a copy; mutating it has no effect on
// the simulation.
type StateSnapshot struct {
	Turn        uint64             `json:"turn"`
	GameOver    bool               `json:"game_over"`
	Victor      string             `json:"victor,omitempty"`
	VictoryType string             `json:"victory_type,omitempty"`
	Factions    []FactionSummary   `json:"factions"`
	Prices      map[string]float64 `json:"prices"`
	Relations   []Relationship     `json:"relations"`
}

type FactionSummary struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Player     bool               `json:"player,omitempty"`
	Eliminated bool               `json:"eliminated,omitempty"`
	Colonies   int                `json:"colonies"`
	Stats      FactionStats       `json:"stats"`
	Stockpile  map[string]float64 `json:"stockpile"`
	Researched int                `json:"researched"`
	Current    string             `json:"current_tech,omitempty"`
}

// SnapshotState builds a StateSnapshot from current world state.
func (g *Game) SnapshotState() StateSnapshot {
	victor, vtype := g.Result()
	snap := StateSnapshot{
		Turn:        g.Turn(),
		GameOver:    g.GameOver(),
		Victor:      victor,
		VictoryType: vtype,
		Prices:      g.market.PriceBoard(),
		Relations:   g.relations.Snapshot(),
	}
	for _, f := range g.factionList() {
		snap.Factions = append(snap.Factions, FactionSummary{
			ID:         f.ID,
			Name:       f.Name,
			Player:     f.Player,
			Eliminated: f.Eliminated,
			Colonies:   len(f.Colonies),
			Stats:      f.Stats,
			Stockpile:  f.Ledger.Snapshot(),
			Researched: len(f.Research.Researched),
			Current:    f.Research.Current,
		})
	}
	return snap
}
