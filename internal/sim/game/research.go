package game

import (
	"sort"

	"stellarforge.ai/internal/sim/catalogs"
)

// Bonuses are faction-wide multipliers granted by completed techs.
type Bonuses struct {
	ProductionMult float64
	ScienceMult    float64
	StorageMult    float64
}

func defaultBonuses() Bonuses {
	return Bonuses{ProductionMult: 1, ScienceMult: 1, StorageMult: 1}
}

// Tech effect tags form a closed set; each maps to a pure
// Bonuses -> Bonuses function. Unknown tags fall through to identity,
// so catalog additions fail loudly in tests rather than silently here.
const (
	EffectNone            = "NONE"
	EffectProductionBoost = "PRODUCTION_BOOST"
	EffectScienceBoost    = "SCIENCE_BOOST"
	EffectStorageBoost    = "STORAGE_BOOST"
)

var techEffects = map[string]func(Bonuses) Bonuses{
	EffectNone: func(b Bonuses) Bonuses { return b },
	EffectProductionBoost: func(b Bonuses) Bonuses {
		b.ProductionMult *= 1.10
		return b
	},
	EffectScienceBoost: func(b Bonuses) Bonuses {
		b.ScienceMult *= 1.15
		return b
	},
	EffectStorageBoost: func(b Bonuses) Bonuses {
		b.StorageMult *= 1.25
		return b
	},
}

func applyTechEffect(tag string, b Bonuses) Bonuses {
	if fn, ok := techEffects[tag]; ok {
		return fn(b)
	}
	return b
}

// ResearchState is one faction's technology progression. Science points
// flow into Current each turn; completed techs apply their effect and
// the next project is auto-selected if none is queued.
type ResearchState struct {
	Researched map[string]bool
	Current    string
	Progress   float64
}

func newResearchState() ResearchState {
	return ResearchState{Researched: map[string]bool{}}
}

func (r *ResearchState) Has(id string) bool { return r.Researched[id] }

// HasCapstone reports whether any capstone tech has been completed.
func (r *ResearchState) HasCapstone(cats *catalogs.Catalogs) bool {
	for id := range r.Researched {
		if cats.Techs.ByID[id].Capstone {
			return true
		}
	}
	return false
}

// available lists techs whose prereqs are all researched, cheapest
// first with ID tie-break so selection is deterministic.
func (r *ResearchState) available(cats *catalogs.Catalogs) []string {
	var out []string
	for id, def := range cats.Techs.ByID {
		if r.Researched[id] {
			continue
		}
		ok := true
		for _, p := range def.Prereqs {
			if !r.Researched[p] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := cats.Techs.ByID[out[i]].Cost, cats.Techs.ByID[out[j]].Cost
		if ci != cj {
			return ci < cj
		}
		return out[i] < out[j]
	})
	return out
}

// Advance feeds science into the current project, completing as many
// techs as the points cover. Returns completed tech IDs in order.
func (r *ResearchState) Advance(science float64, cats *catalogs.Catalogs) []string {
	var done []string
	for science > 0 {
		if r.Current == "" {
			avail := r.available(cats)
			if len(avail) == 0 {
				return done
			}
			r.Current = avail[0]
			r.Progress = 0
		}
		def, ok := cats.Techs.ByID[r.Current]
		if !ok {
			r.Current = ""
			return done
		}
		need := def.Cost - r.Progress
		if science < need {
			r.Progress += science
			return done
		}
		science -= need
		r.Researched[r.Current] = true
		done = append(done, r.Current)
		r.Current = ""
		r.Progress = 0
	}
	return done
}
