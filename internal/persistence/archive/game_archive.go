// Package archive preserves the final state of a concluded game.
//
// When a game ends, the closing snapshot is copied into
// `gameDir/archives/final/` together with a small meta.json so the
// outcome survives later save-directory pruning.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"stellarforge.ai/internal/persistence/snapshot"
)

type FinalArchiveMeta struct {
	GameID      string `json:"game_id"`
	FinalTurn   uint64 `json:"final_turn"`
	Seed        int64  `json:"seed"`
	Factions    int    `json:"factions"`
	Victor      string `json:"victor"`
	VictoryType string `json:"victory_type"`
	Snapshot    string `json:"snapshot"`
	CreatedAt   string `json:"created_at"`
}

// ArchiveFinalSnapshot copies a game-over snapshot into
// `gameDir/archives/final/`. Snapshots of games still in progress are
// ignored. Returns archived=false (no error) when there is nothing to
// archive.
func ArchiveFinalSnapshot(gameDir, snapshotPath string, snap snapshot.SnapshotV1) (archivedPath string, archived bool, err error) {
	if !snap.GameOver {
		return "", false, nil
	}

	archiveDir := filepath.Join(gameDir, "archives", "final")
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", false, err
	}

	meta := FinalArchiveMeta{
		GameID:      snap.Header.GameID,
		FinalTurn:   snap.Header.Turn,
		Seed:        snap.Seed,
		Factions:    len(snap.Factions),
		Victor:      snap.Victor,
		VictoryType: snap.VictoryType,
		Snapshot:    filepath.Base(dst),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339Nano),
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644); err != nil {
		return "", false, err
	}

	return dst, true, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
