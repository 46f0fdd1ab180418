package game

import (
	"fmt"

	"stellarforge.ai/internal/protocol"
)

// Advisor is the AI collaborator contract for non-player factions. The
// engine calls MakeDecision once per faction per turn, fire-and-forget:
// no return value is consumed, and a panicking advisor is caught and
// logged without aborting the turn.
type Advisor interface {
	MakeDecision(snap StateSnapshot)
}

// AdvisorFunc adapts a plain function to the Advisor interface.
type AdvisorFunc func(snap StateSnapshot)

func (f AdvisorFunc) MakeDecision(snap StateSnapshot) { f(snap) }

// runAdvisor isolates one advisor call. Advisor calls are expected to
// be bounded and synchronous; misbehavior is contained per faction.
func (g *Game) runAdvisor(f *Faction, snap StateSnapshot) {
	if f.Advisor == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.events.Emit(g.Turn(), protocol.EventAdvisorFault,
				fmt.Sprintf("advisor for %s panicked: %v", f.ID, r))
		}
	}()
	f.Advisor.MakeDecision(snap)
}

// BasicAdvisor is a deterministic baseline strategy: keep a metal
// reserve, dump surplus onto the market, and sue for peace when
// outnumbered by hostiles.
type BasicAdvisor struct {
	game    *Game
	faction string
}

func NewBasicAdvisor(g *Game, factionID string) *BasicAdvisor {
	return &BasicAdvisor{game: g, faction: factionID}
}

func (a *BasicAdvisor) MakeDecision(snap StateSnapshot) {
	g := a.game
	f := g.faction(a.faction)
	if f == nil || f.Eliminated {
		return
	}

	cur := g.market.Currency()
	metal := f.Ledger.Amount("METAL")
	credits := f.Ledger.Amount(cur)

	// Stock up while metal is cheap, sell down when flush.
	switch {
	case metal < 100 && credits >= g.market.QuotePurchase("METAL", 50):
		_ = g.market.Buy(f.Ledger, "METAL", 50)
	case metal > 500:
		_ = g.market.Sell(f.Ledger, "METAL", 100)
	}

	// Diplomacy: mend the worst hostile relation each turn.
	hostiles := g.relations.HostileTo(a.faction)
	if len(hostiles) > 0 {
		_, _ = g.MakePeace(a.faction, hostiles[0])
	}
}
