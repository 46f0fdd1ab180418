package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"stellarforge.ai/internal/persistence/archive"
	persistlog "stellarforge.ai/internal/persistence/log"
	"stellarforge.ai/internal/persistence/s3mirror"
	"stellarforge.ai/internal/persistence/snapshot"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
	"stellarforge.ai/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		gameID       = flag.String("game", "game_1", "game id")
		seed         = flag.Int64("seed", 1337, "game seed (used only when starting a fresh game)")
		configDir    = flag.String("configs", "./configs", "config directory")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		scenarioPath = flag.String("scenario", "", "path to scenario.json (default: <configs>/scenario.json)")
		disableDB    = flag.Bool("disable_db", false, "disable indexing (turns + catalogs + snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	gameDir := filepath.Join(*dataDir, "games", *gameID)
	savesDir := filepath.Join(gameDir, "saves")
	_ = os.MkdirAll(savesDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(savesDir)
	}

	// Load tuning (required for a fresh game; optional for snapshot resumes).
	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		if os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(gameDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	cfg := game.Config{
		ID:                 *gameID,
		Seed:               *seed,
		AutosaveEveryTurns: tune.AutosaveEveryTurns,
		EventLogCap:        tune.EventLogCap,
		Market:             tune.Market,
		Diplomacy:          tune.Diplomacy,
	}

	var g *game.Game
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.GameID != "" && snap.Header.GameID != *gameID {
			logger.Fatalf("snapshot game id mismatch: flag=%s snap=%s", *gameID, snap.Header.GameID)
		}
		g, err = game.Resume(snap, cfg, cats)
		if err != nil {
			logger.Fatalf("resume snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s turn=%d", filepath.Base(snapshotToLoad), g.Turn())
	} else {
		g = game.New(cfg, cats)
		sp := strings.TrimSpace(*scenarioPath)
		if sp == "" {
			sp = filepath.Join(*configDir, "scenario.json")
		}
		scen, err := game.LoadScenario(sp, cats)
		if err != nil {
			logger.Fatalf("load scenario: %v", err)
		}
		if err := g.ApplyScenario(scen); err != nil {
			logger.Fatalf("apply scenario: %v", err)
		}
		logger.Printf("fresh game from scenario=%s factions=%d", scen.Name, len(scen.Factions))
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Optional off-host save mirror (enabled by SF_S3_ENDPOINT).
	mirror, err := s3mirror.FromEnv(*dataDir, logger)
	if err != nil {
		logger.Fatalf("s3 mirror: %v", err)
	}
	if mirror != nil {
		defer mirror.Close()
		logger.Printf("s3 save mirror enabled")
	}

	turnLog := persistlog.NewTurnLogger(gameDir)
	defer turnLog.Close()
	g.SetTurnLogger(multiTurnLogger{primary: turnLog, index: idx})
	saver := diskSaver{dir: savesDir, idx: idx, mirror: mirror, logger: logger}
	g.SetSaver(saver)

	obsSrv := observer.NewServer(g, tune, logger)

	// Turn loop: one NextTurn per interval until the game ends or the
	// process is told to stop.
	interval := time.Duration(tune.TurnIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := g.NextTurn()
				switch err {
				case nil:
					obsSrv.BroadcastTurn(g.StateDigest())
					if g.GameOver() {
						victor, vtype := g.Result()
						logger.Printf("game over: victor=%s type=%s turn=%d", victor, vtype, g.Turn())
						archiveFinal(g, gameDir, savesDir, saver, logger)
						return
					}
				case game.ErrGameOver:
					return
				case game.ErrTurnInFlight:
					// Previous turn still running; skip this tick.
				default:
					logger.Printf("turn: %v", err)
				}
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		snap := g.SnapshotState()
		living := 0
		for _, f := range snap.Factions {
			if !f.Eliminated {
				living++
			}
		}
		gameOver := 0
		if snap.GameOver {
			gameOver = 1
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP stellarforge_game_turn Current game turn.\n")
		fmt.Fprintf(rw, "# TYPE stellarforge_game_turn gauge\n")
		fmt.Fprintf(rw, "stellarforge_game_turn{game=%q} %d\n", *gameID, snap.Turn)

		fmt.Fprintf(rw, "# HELP stellarforge_game_factions Living faction count.\n")
		fmt.Fprintf(rw, "# TYPE stellarforge_game_factions gauge\n")
		fmt.Fprintf(rw, "stellarforge_game_factions{game=%q} %d\n", *gameID, living)

		fmt.Fprintf(rw, "# HELP stellarforge_game_over Whether the game has ended.\n")
		fmt.Fprintf(rw, "# TYPE stellarforge_game_over gauge\n")
		fmt.Fprintf(rw, "stellarforge_game_over{game=%q} %d\n", *gameID, gameOver)

		fmt.Fprintf(rw, "# HELP stellarforge_market_price Live unit price per resource kind.\n")
		fmt.Fprintf(rw, "# TYPE stellarforge_market_price gauge\n")
		for _, kind := range cats.Resources.Palette {
			price, ok := snap.Prices[kind]
			if !ok {
				continue
			}
			fmt.Fprintf(rw, "stellarforge_market_price{game=%q,kind=%q} %.4f\n", *gameID, kind, price)
		}

		if mirror != nil {
			ms := mirror.Stats()
			fmt.Fprintf(rw, "# HELP stellarforge_mirror_queue_depth Pending save uploads.\n")
			fmt.Fprintf(rw, "# TYPE stellarforge_mirror_queue_depth gauge\n")
			fmt.Fprintf(rw, "stellarforge_mirror_queue_depth{game=%q} %d\n", *gameID, ms.QueueDepth)
			fmt.Fprintf(rw, "# HELP stellarforge_mirror_uploads_total Save uploads by result.\n")
			fmt.Fprintf(rw, "# TYPE stellarforge_mirror_uploads_total counter\n")
			fmt.Fprintf(rw, "stellarforge_mirror_uploads_total{game=%q,result=\"success\"} %d\n", *gameID, ms.UploadSuccessTotal)
			fmt.Fprintf(rw, "stellarforge_mirror_uploads_total{game=%q,result=\"fail\"} %d\n", *gameID, ms.UploadFailTotal)
			fmt.Fprintf(rw, "stellarforge_mirror_uploads_total{game=%q,result=\"dropped\"} %d\n", *gameID, ms.DroppedTotal)
		}
	})

	enableAdminHTTP := envBool("SF_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP())
	enablePprofHTTP := envBool("SF_ENABLE_PPROF_HTTP", false)
	if enableAdminHTTP {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(g.SnapshotState())
		})
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			snap := g.ExportSnapshot()
			path := snapshot.PathFor(savesDir, snap.Header.Turn)
			rw.Header().Set("Content-Type", "application/json")
			if err := snapshot.WriteSnapshot(path, snap); err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			if idx != nil {
				idx.RecordSnapshot(path, snap)
			}
			mirror.Enqueue(path)
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "turn": snap.Header.Turn, "path": path})
		})

		mux.HandleFunc("/observer/v1/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/observer/v1/ws", obsSrv.WSHandler())
	} else {
		logger.Printf("admin endpoints disabled (SF_ENABLE_ADMIN_HTTP=false)")
	}
	if enablePprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		logger.Printf("pprof endpoints disabled (SF_ENABLE_PPROF_HTTP=false)")
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

// diskSaver writes autosaves next to manual saves and records them in
// the index. Failures surface as AUTOSAVE_FAULT events, never as a
// stopped turn loop.
type diskSaver struct {
	dir    string
	idx    runtimeIndex
	mirror *s3mirror.Mirror
	logger *log.Logger
}

func (s diskSaver) AutoSave(snap snapshot.SnapshotV1) error {
	path := snapshot.PathFor(s.dir, snap.Header.Turn)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return err
	}
	if s.idx != nil {
		s.idx.RecordSnapshot(path, snap)
	}
	s.mirror.Enqueue(path)
	s.logger.Printf("autosave turn=%d path=%s", snap.Header.Turn, filepath.Base(path))
	return nil
}

// archiveFinal writes a closing save for a finished game and preserves
// it under the game's archives directory.
func archiveFinal(g *game.Game, gameDir, savesDir string, saver diskSaver, logger *log.Logger) {
	snap := g.ExportSnapshot()
	path := snapshot.PathFor(savesDir, snap.Header.Turn)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Printf("final save: %v", err)
		return
	}
	if saver.idx != nil {
		saver.idx.RecordSnapshot(path, snap)
	}
	saver.mirror.Enqueue(path)
	dst, archived, err := archive.ArchiveFinalSnapshot(gameDir, path, snap)
	if err != nil {
		logger.Printf("archive final save: %v", err)
		return
	}
	if archived {
		saver.mirror.Enqueue(dst)
		logger.Printf("archived final save turn=%d path=%s", snap.Header.Turn, dst)
	}
}

// multiTurnLogger fans a turn entry out to the JSONL log and the
// runtime index. The JSONL log is the source of truth: its error is
// returned so the engine raises LOG_FAULT, the index stays best-effort.
type multiTurnLogger struct {
	primary game.TurnLogger
	index   game.TurnLogger
}

func (m multiTurnLogger) WriteTurn(entry game.TurnLogEntry) error {
	var err error
	if m.primary != nil {
		err = m.primary.WriteTurn(entry)
	}
	if m.index != nil {
		_ = m.index.WriteTurn(entry)
	}
	return err
}
