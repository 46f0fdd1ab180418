package game

import (
	"math/rand"
	"sort"
	"sync"

	"stellarforge.ai/internal/sim/tuning"
)

// Status is the primary three-state standing between two factions,
// derived purely from the relationship value.
type Status string

const (
	StatusHostile  Status = "HOSTILE"
	StatusNeutral  Status = "NEUTRAL"
	StatusPeaceful Status = "PEACEFUL"
)

// Standing is the four-tier variant used by bulk queries.
type Standing string

const (
	StandingHostile  Standing = "HOSTILE"
	StandingNeutral  Standing = "NEUTRAL"
	StandingFriendly Standing = "FRIENDLY"
	StandingAllied   Standing = "ALLIED"
)

// Fixed threshold tables. Both derivations read the same value.
const (
	relMin = -100
	relMax = 100

	peacefulMin = 25
	neutralMin  = -25
	alliedMin   = 75
	friendlyMin = 25
)

func statusOf(value int) Status {
	switch {
	case value >= peacefulMin:
		return StatusPeaceful
	case value >= neutralMin:
		return StatusNeutral
	default:
		return StatusHostile
	}
}

func standingOf(value int) Standing {
	switch {
	case value >= alliedMin:
		return StandingAllied
	case value >= friendlyMin:
		return StandingFriendly
	case value >= neutralMin:
		return StandingNeutral
	default:
		return StandingHostile
	}
}

// Relationship is one unordered faction pair. A and B are stored in
// canonical (lexicographic) order so {x,y} and {y,x} share one record.
type Relationship struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Value  int    `json:"value"`
	Status Status `json:"status"`
}

func (r *Relationship) Standing() Standing { return standingOf(r.Value) }

func pairKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// RelationshipGraph tracks pairwise diplomatic state. Pairs are created
// lazily at Neutral/0 and never deleted while both factions exist.
type RelationshipGraph struct {
	mu    sync.Mutex
	pairs map[[2]string]*Relationship
	rng   *rand.Rand
	cfg   tuning.Diplomacy
}

func NewRelationshipGraph(seed int64, cfg tuning.Diplomacy) *RelationshipGraph {
	return &RelationshipGraph{
		pairs: map[[2]string]*Relationship{},
		rng:   rand.New(rand.NewSource(seed)),
		cfg:   cfg,
	}
}

func (g *RelationshipGraph) get(a, b string) *Relationship {
	ca, cb := pairKey(a, b)
	key := [2]string{ca, cb}
	r := g.pairs[key]
	if r == nil {
		r = &Relationship{A: ca, B: cb, Value: 0, Status: StatusNeutral}
		g.pairs[key] = r
	}
	return r
}

// Relation returns a copy of the pair record, creating it at Neutral/0
// if absent.
func (g *RelationshipGraph) Relation(a, b string) Relationship {
	g.mu.Lock()
	defer g.mu.Unlock()
	return *g.get(a, b)
}

// Adjust adds delta to the pair value, clamps to [-100, 100], and
// re-derives the status. A delta whose magnitude exceeds the configured
// threshold forces re-derivation even when no boundary was crossed.
func (g *RelationshipGraph) Adjust(a, b string, delta int) Relationship {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := g.get(a, b)
	r.Value += delta
	if r.Value > relMax {
		r.Value = relMax
	}
	if r.Value < relMin {
		r.Value = relMin
	}

	next := statusOf(r.Value)
	big := delta
	if big < 0 {
		big = -big
	}
	if next != r.Status || big > g.cfg.ForceRederiveDelta {
		r.Status = next
	}
	return *r
}

func (g *RelationshipGraph) DeclareWar(a, b string) Relationship {
	return g.Adjust(a, b, g.cfg.WarDelta)
}

func (g *RelationshipGraph) MakePeace(a, b string) Relationship {
	return g.Adjust(a, b, g.cfg.PeaceDelta)
}

func (g *RelationshipGraph) EstablishTrade(a, b string) Relationship {
	return g.Adjust(a, b, g.cfg.TradeDelta)
}

func (g *RelationshipGraph) TerminateTrade(a, b string) Relationship {
	return g.Adjust(a, b, g.cfg.EmbargoDelta)
}

// PeriodicDecay models relationship drift: once per turn every pair
// has a fixed chance of a uniformly random step in {-1, 0, +1}. Pairs
// are visited in sorted key order so a seeded source reproduces runs.
func (g *RelationshipGraph) PeriodicDecay() {
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := make([][2]string, 0, len(g.pairs))
	for k := range g.pairs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})

	for _, k := range keys {
		if g.rng.Float64() >= g.cfg.DecayChance {
			continue
		}
		r := g.pairs[k]
		delta := g.rng.Intn(3) - 1
		r.Value += delta
		if r.Value > relMax {
			r.Value = relMax
		}
		if r.Value < relMin {
			r.Value = relMin
		}
		r.Status = statusOf(r.Value)
	}
}

// DropFaction removes every pair touching id. Called on elimination.
func (g *RelationshipGraph) DropFaction(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.pairs {
		if k[0] == id || k[1] == id {
			delete(g.pairs, k)
		}
	}
}

// HostileTo lists factions in Hostile standing with id, sorted.
func (g *RelationshipGraph) HostileTo(id string) []string {
	return g.bucket(id, func(v int) bool { return standingOf(v) == StandingHostile })
}

// FriendsOf lists factions in Friendly or Allied standing with id,
// sorted.
func (g *RelationshipGraph) FriendsOf(id string) []string {
	return g.bucket(id, func(v int) bool {
		s := standingOf(v)
		return s == StandingFriendly || s == StandingAllied
	})
}

// NeutralsOf lists factions in Neutral standing with id, sorted.
func (g *RelationshipGraph) NeutralsOf(id string) []string {
	return g.bucket(id, func(v int) bool { return standingOf(v) == StandingNeutral })
}

func (g *RelationshipGraph) bucket(id string, match func(int) bool) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for k, r := range g.pairs {
		other := ""
		switch id {
		case k[0]:
			other = k[1]
		case k[1]:
			other = k[0]
		default:
			continue
		}
		if match(r.Value) {
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot returns copies of all pair records, sorted by key.
func (g *RelationshipGraph) Snapshot() []Relationship {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Relationship, 0, len(g.pairs))
	for _, r := range g.pairs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// restore reinstates a pair record verbatim (snapshot resume).
func (g *RelationshipGraph) restore(r Relationship) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ca, cb := pairKey(r.A, r.B)
	g.pairs[[2]string{ca, cb}] = &Relationship{A: ca, B: cb, Value: r.Value, Status: statusOf(r.Value)}
}
