package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
)

// SQLiteIndex is a secondary, queryable index over the turn log and
// snapshot files. Writes are funneled through a buffered channel to a
// single writer goroutine; under backpressure entries are dropped, the
// JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTurn reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind reqKind

	turn     game.TurnLogEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Turn        uint64
	Path        string
	Seed        int64
	Factions    int
	GameOver    bool
	Victor      string
	VictoryType string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			events INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			turn INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			text TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (turn, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_name_turn ON events(name, turn);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			turn INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			factions INTEGER NOT NULL,
			game_over INTEGER NOT NULL,
			victor TEXT,
			victory_type TEXT
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteTurn indexes one completed turn. Never blocks the engine.
func (s *SQLiteIndex) WriteTurn(entry game.TurnLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTurn, turn: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Turn:        snap.Header.Turn,
		Path:        path,
		Seed:        snap.Seed,
		Factions:    len(snap.Factions),
		GameOver:    snap.GameOver,
		Victor:      snap.Victor,
		VictoryType: snap.VictoryType,
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
	}
}

// UpsertCatalogs records the catalog digests and raw JSON the server
// is running with, so replays can detect drift.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	raw := map[string][]byte{}
	read := func(name, path string) {
		b, err := os.ReadFile(path)
		if err != nil {
			return
		}
		raw[name] = b
	}
	if configDir != "" {
		read("resources_defs", filepath.Join(configDir, "resources.json"))
		read("buildings", filepath.Join(configDir, "buildings.json"))
		read("ships", filepath.Join(configDir, "ships.json"))
		read("techs", filepath.Join(configDir, "techs.json"))
	}

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b := raw["resources_defs"]; len(b) > 0 {
		rows = append(rows, kv{name: "resources_defs", digest: cats.Resources.DefsDigest, json: b})
	}
	if b, _ := json.Marshal(cats.Resources.Palette); len(b) > 0 {
		rows = append(rows, kv{name: "resources_palette", digest: cats.Resources.PaletteDigest, json: b})
	}
	if b := raw["buildings"]; len(b) > 0 {
		rows = append(rows, kv{name: "buildings", digest: cats.Buildings.Digest, json: b})
	}
	if b := raw["ships"]; len(b) > 0 {
		rows = append(rows, kv{name: "ships", digest: cats.Ships.Digest, json: b})
	}
	if b := raw["techs"]; len(b) > 0 {
		rows = append(rows, kv{name: "techs", digest: cats.Techs.Digest, json: b})
	}

	// Tuning: store the values we actually apply (canonical JSON).
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTurn, _ := s.db.Prepare(`INSERT OR REPLACE INTO turns(turn,digest,events,raw_json) VALUES(?,?,?,?)`)
	insertEvent, _ := s.db.Prepare(`INSERT OR REPLACE INTO events(turn,seq,name,text,at) VALUES(?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(turn,path,seed,factions,game_over,victor,victory_type) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertTurn != nil {
			_ = insertTurn.Close()
		}
		if insertEvent != nil {
			_ = insertEvent.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTurn:
			b, _ := json.Marshal(r.turn)
			if insertTurn != nil {
				if _, err := tx.Stmt(insertTurn).Exec(
					int64(r.turn.Turn),
					r.turn.Digest,
					len(r.turn.Events),
					string(b),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for i, ev := range r.turn.Events {
				if insertEvent == nil {
					break
				}
				if _, err := tx.Stmt(insertEvent).Exec(
					int64(ev.Turn),
					i,
					ev.Name,
					ev.Text,
					ev.At.UTC().Format(time.RFC3339Nano),
				); err != nil {
					rollback()
					break
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				gameOver := 0
				if sn.GameOver {
					gameOver = 1
				}
				if _, err := tx.Stmt(insertSnapshot).Exec(
					int64(sn.Turn),
					sn.Path,
					sn.Seed,
					sn.Factions,
					gameOver,
					sn.Victor,
					sn.VictoryType,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
