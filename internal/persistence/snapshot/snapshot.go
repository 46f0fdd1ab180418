package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Version is the current snapshot format version.
const Version = 1

type Header struct {
	Version int    `json:"version"`
	GameID  string `json:"game_id"`
	Turn    uint64 `json:"turn"`
}

// SnapshotV1 is the on-disk save format: everything needed to resume a
// game session deterministically.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed               int64 `json:"seed"`
	AutosaveEveryTurns int   `json:"autosave_every_turns,omitempty"`
	EventLogCap        int   `json:"event_log_cap,omitempty"`

	GameOver    bool   `json:"game_over"`
	Victor      string `json:"victor,omitempty"`
	VictoryType string `json:"victory_type,omitempty"`

	Factions  []FactionV1  `json:"factions"`
	Market    MarketV1     `json:"market"`
	Relations []RelationV1 `json:"relations"`
	Events    []EventV1    `json:"events,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type FactionV1 struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Player     bool   `json:"player,omitempty"`
	Eliminated bool   `json:"eliminated,omitempty"`

	Stockpile  map[string]float64 `json:"stockpile,omitempty"`
	Capacities map[string]float64 `json:"capacities,omitempty"`

	Colonies []ColonyV1     `json:"colonies,omitempty"`
	Ships    map[string]int `json:"ships,omitempty"`

	Researched []string `json:"researched,omitempty"`
	Current    string   `json:"current_tech,omitempty"`
	Progress   float64  `json:"tech_progress,omitempty"`

	ProductionMult float64 `json:"production_mult,omitempty"`
	ScienceMult    float64 `json:"science_mult,omitempty"`
	StorageMult    float64 `json:"storage_mult,omitempty"`
}

type ColonyV1 struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Planet    string   `json:"planet"`
	Buildings []string `json:"buildings,omitempty"`
}

type MarketV1 struct {
	Multipliers map[string]float64 `json:"multipliers,omitempty"`
	Volumes     map[string]int64   `json:"volumes,omitempty"`
}

type RelationV1 struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Value int    `json:"value"`
}

type EventV1 struct {
	Turn uint64    `json:"turn"`
	At   time.Time `json:"at"`
	Name string    `json:"name"`
	Text string    `json:"text"`
}

type CountersV1 struct {
	Turn       uint64 `json:"turn"`
	NextColony uint64 `json:"next_colony"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is a plain-JSON peek convenience; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// PeekHeader reads only the JSON header line of a snapshot file.
func PeekHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReaderSize(dec, 64*1024).ReadBytes('\n')
	if err != nil {
		return h, err
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("snapshot header: %w", err)
	}
	return h, nil
}

// Latest returns the newest snapshot path in dir by filename order, or
// "" when none exist. Autosaves are named save_<turn>.zst with
// zero-padded turns so lexicographic order is turn order.
func Latest(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "save_") && strings.HasSuffix(e.Name(), ".zst") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1])
}

// PathFor builds the autosave filename for a turn.
func PathFor(dir string, turn uint64) string {
	return filepath.Join(dir, fmt.Sprintf("save_%012d.zst", turn))
}
