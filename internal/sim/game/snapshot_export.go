package game

import (
	"fmt"
	"sort"

	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
)

// ExportSnapshot builds a complete, self-contained save of the current
// world. Call it between turns; it takes the same locks observer reads
// take and never blocks the engine for long.
func (g *Game) ExportSnapshot() snapshot.SnapshotV1 {
	victor, victoryType := g.Result()
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			GameID:  g.cfg.ID,
			Turn:    g.Turn(),
		},
		Seed:               g.cfg.Seed,
		AutosaveEveryTurns: g.cfg.AutosaveEveryTurns,
		EventLogCap:        g.cfg.EventLogCap,
		GameOver:           g.GameOver(),
		Victor:             victor,
		VictoryType:        victoryType,
		Market: snapshot.MarketV1{
			Multipliers: g.market.Multipliers(),
			Volumes:     g.market.Volumes(),
		},
		Counters: snapshot.CountersV1{
			Turn:       g.Turn(),
			NextColony: g.nextColonyNum.Load(),
		},
	}

	for _, f := range g.factionList() {
		fv := snapshot.FactionV1{
			ID:         f.ID,
			Name:       f.Name,
			Player:     f.Player,
			Eliminated: f.Eliminated,
			Stockpile:  f.Ledger.Snapshot(),
			Capacities: f.Ledger.CapacitiesSnapshot(),
			Current:    f.Research.Current,
			Progress:   f.Research.Progress,

			ProductionMult: f.Bonuses.ProductionMult,
			ScienceMult:    f.Bonuses.ScienceMult,
			StorageMult:    f.Bonuses.StorageMult,
		}
		g.mu.Lock()
		for _, id := range f.colonyIDs() {
			c := f.Colonies[id]
			fv.Colonies = append(fv.Colonies, snapshot.ColonyV1{
				ID:        c.ID,
				Name:      c.Name,
				Planet:    c.Planet,
				Buildings: append([]string(nil), c.Buildings...),
			})
		}
		if len(f.Ships) > 0 {
			fv.Ships = make(map[string]int, len(f.Ships))
			for id, n := range f.Ships {
				fv.Ships[id] = n
			}
		}
		g.mu.Unlock()
		for id := range f.Research.Researched {
			fv.Researched = append(fv.Researched, id)
		}
		sort.Strings(fv.Researched)
		snap.Factions = append(snap.Factions, fv)
	}

	for _, r := range g.relations.Snapshot() {
		snap.Relations = append(snap.Relations, snapshot.RelationV1{A: r.A, B: r.B, Value: r.Value})
	}
	for _, ev := range g.events.Entries() {
		snap.Events = append(snap.Events, snapshot.EventV1{Turn: ev.Turn, At: ev.At, Name: ev.Name, Text: ev.Text})
	}
	return snap
}

// Resume reconstructs a Game from a snapshot. cfg supplies the tuning
// knobs (market, diplomacy); identity, seed and counters come from the
// save. Non-player factions get the stock advisor reattached.
func Resume(snap snapshot.SnapshotV1, cfg Config, cats *catalogs.Catalogs) (*Game, error) {
	if snap.Header.Version != snapshot.Version {
		return nil, fmt.Errorf("snapshot version %d not supported", snap.Header.Version)
	}
	cfg.ID = snap.Header.GameID
	cfg.Seed = snap.Seed
	if snap.AutosaveEveryTurns > 0 {
		cfg.AutosaveEveryTurns = snap.AutosaveEveryTurns
	}
	if snap.EventLogCap > 0 {
		cfg.EventLogCap = snap.EventLogCap
	}

	g := New(cfg, cats)
	turn := snap.Counters.Turn
	if turn == 0 {
		turn = snap.Header.Turn
	}
	g.turn.Store(turn)
	g.nextColonyNum.Store(snap.Counters.NextColony)

	for _, fv := range snap.Factions {
		f, err := g.AddFaction(fv.ID, fv.Name, fv.Player)
		if err != nil {
			return nil, err
		}
		f.Ledger.restore(fv.Stockpile, fv.Capacities)
		for _, cv := range fv.Colonies {
			for _, b := range cv.Buildings {
				if _, ok := cats.Buildings.ByID[b]; !ok {
					return nil, fmt.Errorf("snapshot: colony %s references unknown building %s", cv.ID, b)
				}
			}
			f.Colonies[cv.ID] = &Colony{
				ID:        cv.ID,
				Name:      cv.Name,
				Planet:    cv.Planet,
				Buildings: append([]string(nil), cv.Buildings...),
			}
		}
		for id, n := range fv.Ships {
			if _, ok := cats.Ships.ByID[id]; !ok {
				return nil, fmt.Errorf("snapshot: faction %s references unknown ship %s", fv.ID, id)
			}
			f.Ships[id] = n
		}
		for _, id := range fv.Researched {
			if _, ok := cats.Techs.ByID[id]; !ok {
				return nil, fmt.Errorf("snapshot: faction %s references unknown tech %s", fv.ID, id)
			}
			f.Research.Researched[id] = true
		}
		f.Research.Current = fv.Current
		f.Research.Progress = fv.Progress
		if fv.ProductionMult > 0 {
			f.Bonuses.ProductionMult = fv.ProductionMult
		}
		if fv.ScienceMult > 0 {
			f.Bonuses.ScienceMult = fv.ScienceMult
		}
		if fv.StorageMult > 0 {
			f.Bonuses.StorageMult = fv.StorageMult
		}
		f.Eliminated = fv.Eliminated
		if !fv.Player && !fv.Eliminated {
			f.Advisor = NewBasicAdvisor(g, fv.ID)
		}
		f.recomputeStats(cats)
	}

	g.market.restore(snap.Market.Multipliers, snap.Market.Volumes)
	for _, rv := range snap.Relations {
		g.relations.restore(Relationship{A: rv.A, B: rv.B, Value: rv.Value})
	}
	entries := make([]EventEntry, 0, len(snap.Events))
	for _, ev := range snap.Events {
		entries = append(entries, EventEntry{Turn: ev.Turn, At: ev.At, Name: ev.Name, Text: ev.Text})
	}
	g.events.restore(entries)

	if snap.GameOver {
		g.resultMu.Lock()
		g.victor = snap.Victor
		g.victoryType = snap.VictoryType
		g.resultMu.Unlock()
		g.market.freeze()
		g.phase.Store(phaseGameOver)
	}
	return g, nil
}
