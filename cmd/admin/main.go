package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"stellarforge.ai/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		case "snapshot":
			snapshotCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "games")
	if *gameID != "" {
		base = filepath.Join(base, *gameID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// inspectCmd prints a save file: the header alone, or the full world
// with -full.
func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "", "game id (used to locate the latest save when -snapshot is empty)")
	snapPath := fs.String("snapshot", "", "path to save_*.zst (optional; defaults to latest)")
	full := fs.Bool("full", false, "dump the entire snapshot as JSON")
	_ = fs.Parse(args)

	path := *snapPath
	if path == "" {
		if *gameID == "" {
			fmt.Fprintln(os.Stderr, "missing -snapshot or -game")
			os.Exit(2)
		}
		path = snapshot.Latest(filepath.Join(*dataDir, "games", *gameID, "saves"))
		if path == "" {
			fmt.Fprintln(os.Stderr, "no saves found; provide -snapshot or run the server until it writes one")
			os.Exit(2)
		}
	}

	if !*full {
		h, err := snapshot.PeekHeader(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "peek:", err)
			os.Exit(1)
		}
		printJSON(h)
		return
	}

	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	printJSON(snap)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
