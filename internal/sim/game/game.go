package game

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/protocol"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/tuning"
)

type Config struct {
	ID   string
	Seed int64

	AutosaveEveryTurns int
	EventLogCap        int

	Market    tuning.Market
	Diplomacy tuning.Diplomacy
}

func (c *Config) applyDefaults() {
	d := tuning.Defaults()
	if c.AutosaveEveryTurns <= 0 {
		c.AutosaveEveryTurns = d.AutosaveEveryTurns
	}
	if c.EventLogCap <= 0 {
		c.EventLogCap = d.EventLogCap
	}
	var zeroM tuning.Market
	if c.Market == zeroM {
		c.Market = d.Market
	}
	var zeroD tuning.Diplomacy
	if c.Diplomacy == zeroD {
		c.Diplomacy = d.Diplomacy
	}
}

// Saver is the autosave collaborator, passed in explicitly at
// construction rather than reached through a global.
type Saver interface {
	AutoSave(snap snapshot.SnapshotV1) error
}

// TurnLogger receives one entry per completed turn (may be nil).
type TurnLogger interface {
	WriteTurn(entry TurnLogEntry) error
}

type TurnLogEntry struct {
	Turn   uint64       `json:"turn"`
	Events []EventEntry `json:"events,omitempty"`
	Digest string       `json:"digest"`
}

// Game is the authoritative simulation state. All turn-driven mutation
// happens on the goroutine calling NextTurn; ledgers, the market, the
// relationship graph and the event log each carry their own exclusion
// for observer reads.
type Game struct {
	cfg      Config
	catalogs *catalogs.Catalogs

	mu       sync.Mutex
	factions map[string]*Faction

	relations *RelationshipGraph
	market    *Market
	events    *EventLog

	turn  atomic.Uint64
	phase atomic.Int32

	resultMu    sync.Mutex
	victor      string
	victoryType string

	saver      Saver
	turnLogger TurnLogger

	nextColonyNum atomic.Uint64
}

// Engine phases.
const (
	phaseIdle int32 = iota
	phaseAdvancing
	phaseGameOver
)

func New(cfg Config, cats *catalogs.Catalogs) *Game {
	cfg.applyDefaults()
	g := &Game{
		cfg:       cfg,
		catalogs:  cats,
		factions:  map[string]*Faction{},
		relations: NewRelationshipGraph(cfg.Seed, cfg.Diplomacy),
		market:    NewMarket(cats, cfg.Market),
		events:    NewEventLog(cfg.EventLogCap),
	}
	g.turn.Store(1)
	return g
}

func (g *Game) Config() Config                  { return g.cfg }
func (g *Game) Catalogs() *catalogs.Catalogs    { return g.catalogs }
func (g *Game) Market() *Market                 { return g.market }
func (g *Game) Relations() *RelationshipGraph   { return g.relations }
func (g *Game) Events() *EventLog               { return g.events }
func (g *Game) SetSaver(s Saver)                { g.saver = s }
func (g *Game) SetTurnLogger(l TurnLogger)      { g.turnLogger = l }
func (g *Game) Turn() uint64                    { return g.turn.Load() }
func (g *Game) GameOver() bool                  { return g.phase.Load() == phaseGameOver }

// Result returns the victor and victory type once the game is over.
func (g *Game) Result() (victor, victoryType string) {
	g.resultMu.Lock()
	defer g.resultMu.Unlock()
	return g.victor, g.victoryType
}

// AddFaction registers a faction with an empty ledger and no colonies.
func (g *Game) AddFaction(id, name string, player bool) (*Faction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.factions[id]; exists {
		return nil, fmt.Errorf("faction %s already exists", id)
	}
	f := newFaction(id, name, player, g.catalogs)
	g.factions[id] = f
	return f, nil
}

func (g *Game) faction(id string) *Faction {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.factions[id]
}

// factionList returns factions sorted by ID for deterministic
// iteration.
func (g *Game) factionList() []*Faction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Faction, 0, len(g.factions))
	for _, f := range g.factions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FactionLedger exposes a faction's ledger for UI/advisor use.
func (g *Game) FactionLedger(id string) (*Ledger, error) {
	f := g.faction(id)
	if f == nil {
		return nil, ErrUnknownFaction
	}
	return f.Ledger, nil
}

func (g *Game) newColonyID() string {
	return fmt.Sprintf("C%06d", g.nextColonyNum.Add(1))
}

func costMap(cost []catalogs.ResourceCount) map[string]float64 {
	out := make(map[string]float64, len(cost))
	for _, rc := range cost {
		out[rc.Resource] += rc.Amount
	}
	return out
}

// EstablishColony founds a new colony for the faction, paying the
// COLONY_BASE cost from its ledger all-or-nothing.
func (g *Game) EstablishColony(factionID, name, planet string) (string, error) {
	if g.GameOver() {
		return "", ErrGameOver
	}
	f := g.faction(factionID)
	if f == nil {
		return "", ErrUnknownFaction
	}
	base, ok := g.catalogs.Buildings.ByID["COLONY_BASE"]
	if !ok {
		return "", fmt.Errorf("building catalog: missing COLONY_BASE")
	}
	if err := f.Ledger.ConsumeAll(costMap(base.Cost)); err != nil {
		return "", err
	}

	id := g.newColonyID()
	g.mu.Lock()
	f.Colonies[id] = &Colony{ID: id, Name: name, Planet: planet, Buildings: []string{"COLONY_BASE"}}
	g.mu.Unlock()

	g.events.Emit(g.Turn(), protocol.EventColonyEstablished,
		fmt.Sprintf("%s established %s on %s", f.Name, name, planet))
	return id, nil
}

// AbandonColony removes a colony. A faction losing its last colony is
// eliminated immediately.
func (g *Game) AbandonColony(factionID, colonyID string) error {
	if g.GameOver() {
		return ErrGameOver
	}
	f := g.faction(factionID)
	if f == nil {
		return ErrUnknownFaction
	}
	g.mu.Lock()
	c, ok := f.Colonies[colonyID]
	if !ok {
		g.mu.Unlock()
		return ErrUnknownColony
	}
	delete(f.Colonies, colonyID)
	remaining := len(f.Colonies)
	g.mu.Unlock()

	g.events.Emit(g.Turn(), protocol.EventColonyAbandoned,
		fmt.Sprintf("%s abandoned %s", f.Name, c.Name))
	if remaining == 0 {
		g.eliminate(f)
	}
	return nil
}

// Construct adds a building to one of the faction's colonies, paying
// its catalog cost.
func (g *Game) Construct(factionID, colonyID, buildingID string) error {
	if g.GameOver() {
		return ErrGameOver
	}
	f := g.faction(factionID)
	if f == nil {
		return ErrUnknownFaction
	}
	def, ok := g.catalogs.Buildings.ByID[buildingID]
	if !ok {
		return fmt.Errorf("%w: building %s", ErrInvalidKind, buildingID)
	}
	g.mu.Lock()
	c, ok := f.Colonies[colonyID]
	g.mu.Unlock()
	if !ok {
		return ErrUnknownColony
	}
	if err := f.Ledger.ConsumeAll(costMap(def.Cost)); err != nil {
		return err
	}
	g.mu.Lock()
	c.Buildings = append(c.Buildings, buildingID)
	g.mu.Unlock()
	return nil
}

// CommissionShip adds one ship of the given class to the faction's
// fleet, paying its catalog cost.
func (g *Game) CommissionShip(factionID, shipID string) error {
	if g.GameOver() {
		return ErrGameOver
	}
	f := g.faction(factionID)
	if f == nil {
		return ErrUnknownFaction
	}
	def, ok := g.catalogs.Ships.ByID[shipID]
	if !ok {
		return fmt.Errorf("%w: ship %s", ErrInvalidKind, shipID)
	}
	if err := f.Ledger.ConsumeAll(costMap(def.Cost)); err != nil {
		return err
	}
	g.mu.Lock()
	f.Ships[shipID]++
	g.mu.Unlock()
	return nil
}

// Diplomatic actions routed through the relationship graph, with
// events for the log.

func (g *Game) DeclareWar(a, b string) (Relationship, error) {
	if err := g.checkPair(a, b); err != nil {
		return Relationship{}, err
	}
	r := g.relations.DeclareWar(a, b)
	g.events.Emit(g.Turn(), protocol.EventWarDeclared,
		fmt.Sprintf("%s declared war on %s", a, b))
	return r, nil
}

func (g *Game) MakePeace(a, b string) (Relationship, error) {
	if err := g.checkPair(a, b); err != nil {
		return Relationship{}, err
	}
	r := g.relations.MakePeace(a, b)
	g.events.Emit(g.Turn(), protocol.EventPeaceSigned,
		fmt.Sprintf("%s signed peace with %s", a, b))
	return r, nil
}

func (g *Game) EstablishTrade(a, b string) (Relationship, error) {
	if err := g.checkPair(a, b); err != nil {
		return Relationship{}, err
	}
	r := g.relations.EstablishTrade(a, b)
	g.events.Emit(g.Turn(), protocol.EventTradeEstablished,
		fmt.Sprintf("%s opened trade with %s", a, b))
	return r, nil
}

func (g *Game) TerminateTrade(a, b string) (Relationship, error) {
	if err := g.checkPair(a, b); err != nil {
		return Relationship{}, err
	}
	r := g.relations.TerminateTrade(a, b)
	g.events.Emit(g.Turn(), protocol.EventTradeTerminated,
		fmt.Sprintf("%s cut trade with %s", a, b))
	return r, nil
}

func (g *Game) checkPair(a, b string) error {
	if g.GameOver() {
		return ErrGameOver
	}
	if a == b {
		return fmt.Errorf("%w: self-relation %s", ErrUnknownFaction, a)
	}
	if g.faction(a) == nil || g.faction(b) == nil {
		return ErrUnknownFaction
	}
	return nil
}

// eliminate clears the faction's ledger, drops its diplomatic pairs
// and marks it dead. Its record stays for end-of-game accounting.
func (g *Game) eliminate(f *Faction) {
	g.mu.Lock()
	if f.Eliminated {
		g.mu.Unlock()
		return
	}
	f.Eliminated = true
	g.mu.Unlock()

	f.Ledger.Clear()
	g.relations.DropFaction(f.ID)
	g.events.Emit(g.Turn(), protocol.EventFactionEliminated,
		fmt.Sprintf("%s has been eliminated", f.Name))
}
