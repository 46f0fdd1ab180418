package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	persistlog "stellarforge.ai/internal/persistence/log"
	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
)

// Replays a recorded game from turn 1 and verifies that every digest
// in the turn log matches the re-simulation. The sim is deterministic
// for a given seed, catalogs and scenario, so any divergence points at
// drifted configs or a code change.
func main() {
	var (
		snapPath     = flag.String("snapshot", "", "path to save_*.zst to inspect (optional)")
		gameDir      = flag.String("game_dir", "", "game data dir containing turns/ (optional)")
		configDir    = flag.String("configs", "./configs", "config directory")
		scenarioPath = flag.String("scenario", "", "path to scenario.json (default: <configs>/scenario.json)")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		seed         = flag.Int64("seed", 1337, "game seed the recording ran with")
		gameID       = flag.String("game", "game_1", "game id")
		toTurn       = flag.Uint64("to_turn", 0, "stop at turn (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" && *gameDir == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot or -game_dir")
		os.Exit(2)
	}

	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d game=%s turn=%d seed=%d factions=%d relations=%d events=%d game_over=%v\n",
			snap.Header.Version, snap.Header.GameID, snap.Header.Turn, snap.Seed,
			len(snap.Factions), len(snap.Relations), len(snap.Events), snap.GameOver)
		if snap.GameOver {
			fmt.Printf("victor=%s type=%s\n", snap.Victor, snap.VictoryType)
		}
	}

	if *gameDir == "" {
		return
	}

	entries, err := persistlog.ReadTurns(*gameDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read turn log:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no turn entries found in", filepath.Join(*gameDir, "turns"))
		os.Exit(1)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}

	sp := strings.TrimSpace(*scenarioPath)
	if sp == "" {
		sp = filepath.Join(*configDir, "scenario.json")
	}
	scen, err := game.LoadScenario(sp, cats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load scenario:", err)
		os.Exit(1)
	}

	g := game.New(game.Config{
		ID:                 *gameID,
		Seed:               *seed,
		AutosaveEveryTurns: tune.AutosaveEveryTurns,
		EventLogCap:        tune.EventLogCap,
		Market:             tune.Market,
		Diplomacy:          tune.Diplomacy,
	}, cats)
	if err := g.ApplyScenario(scen); err != nil {
		fmt.Fprintln(os.Stderr, "apply scenario:", err)
		os.Exit(1)
	}

	var checked uint64
	for _, entry := range entries {
		if *toTurn != 0 && entry.Turn > *toTurn {
			break
		}
		if entry.Turn != g.Turn() {
			fmt.Fprintf(os.Stderr, "turn mismatch: want=%d got=%d\n", g.Turn(), entry.Turn)
			os.Exit(1)
		}
		if err := g.NextTurn(); err != nil {
			fmt.Fprintf(os.Stderr, "turn %d: %v\n", entry.Turn, err)
			os.Exit(1)
		}
		got := g.StateDigest()
		if got != entry.Digest {
			fmt.Fprintf(os.Stderr, "digest mismatch at turn %d: got=%s want=%s\n", entry.Turn, got, entry.Digest)
			os.Exit(1)
		}
		checked++
	}
	fmt.Printf("replay ok: checked=%d turns\n", checked)
}
