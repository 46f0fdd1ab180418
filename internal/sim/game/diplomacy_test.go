package game

import (
	"reflect"
	"testing"

	"stellarforge.ai/internal/sim/tuning"
)

func newTestGraph(seed int64) *RelationshipGraph {
	return NewRelationshipGraph(seed, tuning.Defaults().Diplomacy)
}

func TestStatusThresholds(t *testing.T) {
	cases := []struct {
		value int
		want  Status
	}{
		{100, StatusPeaceful},
		{25, StatusPeaceful},
		{24, StatusNeutral},
		{0, StatusNeutral},
		{-25, StatusNeutral},
		{-26, StatusHostile},
		{-100, StatusHostile},
	}
	for _, c := range cases {
		if got := statusOf(c.value); got != c.want {
			t.Errorf("statusOf(%d) = %s, want %s", c.value, got, c.want)
		}
	}
}

func TestStandingThresholds(t *testing.T) {
	cases := []struct {
		value int
		want  Standing
	}{
		{75, StandingAllied},
		{74, StandingFriendly},
		{25, StandingFriendly},
		{24, StandingNeutral},
		{-25, StandingNeutral},
		{-26, StandingHostile},
	}
	for _, c := range cases {
		if got := standingOf(c.value); got != c.want {
			t.Errorf("standingOf(%d) = %s, want %s", c.value, got, c.want)
		}
	}
}

func TestRelationSymmetry(t *testing.T) {
	g := newTestGraph(1)

	g.Adjust("F_B", "F_A", 30)
	ab := g.Relation("F_A", "F_B")
	ba := g.Relation("F_B", "F_A")
	if ab != ba {
		t.Fatalf("pair order must not matter: %+v vs %+v", ab, ba)
	}
	if ab.A != "F_A" || ab.B != "F_B" {
		t.Fatalf("canonical order broken: %+v", ab)
	}
	if ab.Value != 30 || ab.Status != StatusPeaceful {
		t.Fatalf("unexpected relation: %+v", ab)
	}
}

func TestAdjustClampsToRange(t *testing.T) {
	g := newTestGraph(1)

	r := g.Adjust("F_A", "F_B", 500)
	if r.Value != 100 {
		t.Fatalf("value must clamp at 100, got %d", r.Value)
	}
	r = g.Adjust("F_A", "F_B", -1000)
	if r.Value != -100 || r.Status != StatusHostile {
		t.Fatalf("value must clamp at -100: %+v", r)
	}
}

func TestDiplomaticActionDeltas(t *testing.T) {
	g := newTestGraph(1)

	if r := g.DeclareWar("F_A", "F_B"); r.Value != -50 || r.Status != StatusHostile {
		t.Fatalf("after war: %+v", r)
	}
	if r := g.MakePeace("F_A", "F_B"); r.Value != -30 {
		t.Fatalf("after peace: %+v", r)
	}
	if r := g.EstablishTrade("F_A", "F_B"); r.Value != -15 {
		t.Fatalf("after trade: %+v", r)
	}
	if r := g.TerminateTrade("F_A", "F_B"); r.Value != -25 || r.Status != StatusNeutral {
		t.Fatalf("after embargo: %+v", r)
	}
}

func TestPeriodicDecayIsSeedReproducible(t *testing.T) {
	build := func() *RelationshipGraph {
		g := newTestGraph(42)
		g.Adjust("F_A", "F_B", 10)
		g.Adjust("F_A", "F_C", -40)
		g.Adjust("F_B", "F_C", 60)
		return g
	}

	g1, g2 := build(), build()
	for i := 0; i < 50; i++ {
		g1.PeriodicDecay()
		g2.PeriodicDecay()
	}
	if !reflect.DeepEqual(g1.Snapshot(), g2.Snapshot()) {
		t.Fatal("same seed must produce identical drift")
	}
}

func TestPeriodicDecayStaysInRange(t *testing.T) {
	g := newTestGraph(7)
	g.Adjust("F_A", "F_B", 100)
	g.Adjust("F_A", "F_C", -100)

	for i := 0; i < 500; i++ {
		g.PeriodicDecay()
	}
	for _, r := range g.Snapshot() {
		if r.Value < -100 || r.Value > 100 {
			t.Fatalf("drift escaped range: %+v", r)
		}
		if r.Status != statusOf(r.Value) {
			t.Fatalf("status out of sync with value: %+v", r)
		}
	}
}

func TestBucketQueries(t *testing.T) {
	g := newTestGraph(1)
	g.Adjust("F_A", "F_B", 80)  // allied
	g.Adjust("F_A", "F_C", 30)  // friendly
	g.Adjust("F_A", "F_D", 0)   // neutral
	g.Adjust("F_A", "F_E", -60) // hostile

	if got := g.FriendsOf("F_A"); !reflect.DeepEqual(got, []string{"F_B", "F_C"}) {
		t.Fatalf("FriendsOf = %v", got)
	}
	if got := g.NeutralsOf("F_A"); !reflect.DeepEqual(got, []string{"F_D"}) {
		t.Fatalf("NeutralsOf = %v", got)
	}
	if got := g.HostileTo("F_A"); !reflect.DeepEqual(got, []string{"F_E"}) {
		t.Fatalf("HostileTo = %v", got)
	}
}

func TestDropFactionRemovesAllPairs(t *testing.T) {
	g := newTestGraph(1)
	g.Adjust("F_A", "F_B", 10)
	g.Adjust("F_B", "F_C", 20)
	g.Adjust("F_A", "F_C", 30)

	g.DropFaction("F_B")

	snap := g.Snapshot()
	if len(snap) != 1 || snap[0].A != "F_A" || snap[0].B != "F_C" {
		t.Fatalf("unexpected pairs after drop: %+v", snap)
	}
}
