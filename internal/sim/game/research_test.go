package game

import (
	"reflect"
	"testing"
)

func TestTechEffectsDispatch(t *testing.T) {
	b := defaultBonuses()

	b = applyTechEffect(EffectProductionBoost, b)
	if !almostEqual(b.ProductionMult, 1.10) {
		t.Fatalf("ProductionMult = %v", b.ProductionMult)
	}
	b = applyTechEffect(EffectScienceBoost, b)
	if !almostEqual(b.ScienceMult, 1.15) {
		t.Fatalf("ScienceMult = %v", b.ScienceMult)
	}
	b = applyTechEffect(EffectStorageBoost, b)
	if !almostEqual(b.StorageMult, 1.25) {
		t.Fatalf("StorageMult = %v", b.StorageMult)
	}

	// Unknown tags are identity, not a panic.
	if got := applyTechEffect("WARP_DRIVE", b); got != b {
		t.Fatalf("unknown effect mutated bonuses: %+v", got)
	}
	if got := applyTechEffect(EffectNone, b); got != b {
		t.Fatalf("NONE effect mutated bonuses: %+v", got)
	}
}

func TestResearchAvailableCheapestFirst(t *testing.T) {
	cats := testCatalogs()
	r := newResearchState()

	// T_ARCHIVES and T_ASCENSION_GATE are gated behind prereqs.
	if got := r.available(cats); !reflect.DeepEqual(got, []string{"T_MINING", "T_XENOLINGUISTICS"}) {
		t.Fatalf("available = %v", got)
	}

	r.Researched["T_MINING"] = true
	if got := r.available(cats); !reflect.DeepEqual(got, []string{"T_XENOLINGUISTICS", "T_ARCHIVES"}) {
		t.Fatalf("available after T_MINING = %v", got)
	}
}

func TestResearchAdvanceCarriesOverflow(t *testing.T) {
	cats := testCatalogs()
	r := newResearchState()

	// 12 points: completes T_MINING (10) and leaves 2 on the next
	// cheapest project.
	done := r.Advance(12, cats)
	if !reflect.DeepEqual(done, []string{"T_MINING"}) {
		t.Fatalf("done = %v", done)
	}
	if r.Current != "T_XENOLINGUISTICS" || !almostEqual(r.Progress, 2) {
		t.Fatalf("current=%s progress=%v", r.Current, r.Progress)
	}
}

func TestResearchAdvanceCompletesMultiple(t *testing.T) {
	cats := testCatalogs()
	r := newResearchState()

	done := r.Advance(45, cats)
	if !reflect.DeepEqual(done, []string{"T_MINING", "T_XENOLINGUISTICS", "T_ARCHIVES"}) {
		t.Fatalf("done = %v", done)
	}
	if r.Current != "T_ASCENSION_GATE" {
		t.Fatalf("current = %s", r.Current)
	}
	if r.HasCapstone(cats) {
		t.Fatal("capstone not yet complete")
	}

	r.Advance(100, cats)
	if !r.HasCapstone(cats) {
		t.Fatal("capstone should be complete")
	}
}

func TestResearchAdvanceStopsWhenTreeExhausted(t *testing.T) {
	cats := testCatalogs()
	r := newResearchState()
	for id := range cats.Techs.ByID {
		r.Researched[id] = true
	}

	if done := r.Advance(1000, cats); done != nil {
		t.Fatalf("exhausted tree completed techs: %v", done)
	}
}
