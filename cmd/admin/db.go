package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// dbCmd reads the runtime SQLite index directly. The index is a
// best-effort query layer; the JSONL turn logs remain the source of
// truth.
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	gameID := fs.String("game", "default", "game id")
	dbPath := fs.String("db", "", "explicit path to game.sqlite (overrides -data/-game)")
	table := fs.String("table", "turns", "turns|events|snapshots|catalogs")
	turn := fs.Uint64("turn", 0, "filter events by turn (0 = all)")
	name := fs.String("name", "", "filter events by name")
	limit := fs.Int("limit", 20, "max rows")
	_ = fs.Parse(args)

	path := *dbPath
	if path == "" {
		path = filepath.Join(*dataDir, "games", *gameID, "index", "game.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "index not found:", path)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch *table {
	case "turns":
		queryTurns(db, *limit)
	case "events":
		queryEvents(db, *turn, *name, *limit)
	case "snapshots":
		querySnapshots(db, *limit)
	case "catalogs":
		queryCatalogs(db)
	default:
		fmt.Fprintln(os.Stderr, "unknown table:", *table)
		os.Exit(2)
	}
}

func queryTurns(db *sql.DB, limit int) {
	rows, err := db.Query(`SELECT turn, digest, events FROM turns ORDER BY turn DESC LIMIT ?`, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var turn uint64
		var digest string
		var events int
		if err := rows.Scan(&turn, &digest, &events); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("turn=%d events=%d digest=%s\n", turn, events, digest)
	}
}

func queryEvents(db *sql.DB, turn uint64, name string, limit int) {
	q := `SELECT turn, seq, name, text, at FROM events`
	var conds []string
	var binds []any
	if turn > 0 {
		conds = append(conds, "turn = ?")
		binds = append(binds, turn)
	}
	if name != "" {
		conds = append(conds, "name = ?")
		binds = append(binds, name)
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY turn DESC, seq ASC LIMIT ?"
	binds = append(binds, limit)

	rows, err := db.Query(q, binds...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var t uint64
		var seq int
		var evName, text, at string
		if err := rows.Scan(&t, &seq, &evName, &text, &at); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("turn=%d seq=%d %s %q at=%s\n", t, seq, evName, text, at)
	}
}

func querySnapshots(db *sql.DB, limit int) {
	if latest, err := latestSnapshotTurn(db); err == nil && latest > 0 {
		fmt.Printf("latest=%d\n", latest)
	}
	rows, err := db.Query(`SELECT turn, path, seed, factions, game_over, victor, victory_type FROM snapshots ORDER BY turn DESC LIMIT ?`, limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var turn uint64
		var path, victor, victoryType string
		var seed int64
		var factions int
		var gameOver bool
		if err := rows.Scan(&turn, &path, &seed, &factions, &gameOver, &victor, &victoryType); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("turn=%d factions=%d seed=%d game_over=%v victor=%s type=%s path=%s\n",
			turn, factions, seed, gameOver, victor, victoryType, path)
	}
}

func queryCatalogs(db *sql.DB) {
	rows, err := db.Query(`SELECT name, digest, updated_at FROM catalogs ORDER BY name`)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer rows.Close()
	for rows.Next() {
		var name, digest, updatedAt string
		if err := rows.Scan(&name, &digest, &updatedAt); err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			os.Exit(1)
		}
		fmt.Printf("%-12s %s updated=%s\n", name, digest, updatedAt)
	}
}

// latestSnapshotTurn returns the highest snapshot turn recorded in the
// index, or 0 when none exist.
func latestSnapshotTurn(db *sql.DB) (uint64, error) {
	var turn sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(turn) FROM snapshots`).Scan(&turn); err != nil {
		return 0, err
	}
	if !turn.Valid {
		return 0, nil
	}
	return uint64(turn.Int64), nil
}
