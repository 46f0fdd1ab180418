package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"stellarforge.ai/internal/persistence/indexdb"
	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
)

type runtimeIndex interface {
	game.TurnLogger
	Close() error
	UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
}

func openRuntimeIndex(gameDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("SF_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(gameDir, "index", "game.sqlite")
		return indexdb.OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unsupported SF_INDEX_BACKEND: %s", backend)
	}
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
