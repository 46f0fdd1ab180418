package game

import "stellarforge.ai/internal/sim/catalogs"

// Victory types.
const (
	VictoryLastStanding  = "LAST_STANDING"
	VictoryTechAscension = "TECH_ASCENSION"
)

// EvaluateVictory is a stateless predicate over current world state:
// true if f is the sole remaining faction with at least one colony, or
// if f has completed a capstone technology. The engine evaluates every
// living faction each turn in sorted ID order; the first win stands.
func EvaluateVictory(f *Faction, all []*Faction, cats *catalogs.Catalogs) (string, bool) {
	if f.Eliminated {
		return "", false
	}

	if f.Research.HasCapstone(cats) {
		return VictoryTechAscension, true
	}

	if len(f.Colonies) == 0 {
		return "", false
	}
	solo := true
	for _, other := range all {
		if other.ID == f.ID {
			continue
		}
		if !other.Eliminated && len(other.Colonies) > 0 {
			solo = false
			break
		}
	}
	if solo {
		return VictoryLastStanding, true
	}
	return "", false
}
