package game

import (
	"fmt"

	"stellarforge.ai/internal/protocol"
)

// NextTurn advances the simulation by exactly one turn. Exactly one
// turn may be in flight: a second call while advancing returns
// ErrTurnInFlight, and any call after game over returns ErrGameOver
// without mutating anything.
//
// Per-turn order matters, later steps observe earlier effects:
// turn-start event, faction processing, relationship drift, counter
// advance + turn log, periodic autosave, victory evaluation.
func (g *Game) NextTurn() error {
	if !g.phase.CompareAndSwap(phaseIdle, phaseAdvancing) {
		if g.phase.Load() == phaseGameOver {
			return ErrGameOver
		}
		return ErrTurnInFlight
	}

	nowTurn := g.turn.Load()

	var turnEvents []EventEntry
	collector := g.events.Subscribe(func(e EventEntry) { turnEvents = append(turnEvents, e) })

	g.events.Emit(nowTurn, protocol.EventTurnStart, fmt.Sprintf("turn %d begins", nowTurn))

	for _, f := range g.factionList() {
		if f.Eliminated {
			continue
		}
		g.processFactionTurn(f, nowTurn)
	}

	g.relations.PeriodicDecay()

	g.events.Unsubscribe(collector)
	g.turn.Add(1)

	digest := g.StateDigest()
	if g.turnLogger != nil {
		entry := TurnLogEntry{Turn: nowTurn, Events: turnEvents, Digest: digest}
		if err := g.turnLogger.WriteTurn(entry); err != nil {
			g.events.Emit(nowTurn, protocol.EventLogFault, fmt.Sprintf("turn log: %v", err))
		}
	}

	if g.saver != nil && nowTurn%uint64(g.cfg.AutosaveEveryTurns) == 0 {
		if err := g.saver.AutoSave(g.ExportSnapshot()); err != nil {
			// Autosave failure is logged, never fatal.
			g.events.Emit(nowTurn, protocol.EventAutosaveFault, fmt.Sprintf("autosave: %v", err))
		}
	}

	if g.checkVictory() {
		g.market.freeze()
		g.phase.Store(phaseGameOver)
		return nil
	}

	g.phase.Store(phaseIdle)
	return nil
}

// processFactionTurn runs one faction's turn: colony production into
// the ledger, science into research, a full stat recompute, then the
// advisor call for non-player factions.
func (g *Game) processFactionTurn(f *Faction, nowTurn uint64) {
	science := 0.0
	for _, id := range f.colonyIDs() {
		c := f.Colonies[id]
		produced, colonyScience := c.Output(g.catalogs)
		for kind, amt := range produced {
			f.Ledger.Add(kind, amt*f.Bonuses.ProductionMult)
		}
		science += colonyScience
	}
	science *= f.Bonuses.ScienceMult

	for _, techID := range f.Research.Advance(science, g.catalogs) {
		g.completeTech(f, techID, nowTurn)
	}

	f.recomputeStats(g.catalogs)

	if !f.Player {
		g.runAdvisor(f, g.SnapshotState())
	}
}

// completeTech applies the tech's effect through the dispatch table and
// propagates storage changes into the ledger.
func (g *Game) completeTech(f *Faction, techID string, nowTurn uint64) {
	def := g.catalogs.Techs.ByID[techID]
	before := f.Bonuses
	f.Bonuses = applyTechEffect(def.Effect, before)
	if before.StorageMult > 0 && f.Bonuses.StorageMult != before.StorageMult {
		f.Ledger.ScaleCapacities(f.Bonuses.StorageMult / before.StorageMult)
	}
	g.events.Emit(nowTurn, protocol.EventTechResearched,
		fmt.Sprintf("%s completed research of %s", f.Name, techID))
	if def.Capstone {
		g.events.Emit(nowTurn, protocol.EventCapstoneComplete,
			fmt.Sprintf("%s has completed the %s", f.Name, techID))
	}
}

// checkVictory evaluates every living faction in sorted ID order. The
// first satisfied condition wins; simultaneous winners resolve by that
// stable order.
func (g *Game) checkVictory() bool {
	all := g.factionList()
	for _, f := range all {
		vtype, won := EvaluateVictory(f, all, g.catalogs)
		if !won {
			continue
		}
		g.resultMu.Lock()
		g.victor = f.ID
		g.victoryType = vtype
		g.resultMu.Unlock()
		g.events.Emit(g.Turn(), protocol.EventVictory,
			fmt.Sprintf("%s wins by %s", f.Name, vtype))
		return true
	}
	return false
}
