package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"stellarforge.ai/internal/observerproto"
	"stellarforge.ai/internal/protocol"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
)

// Server streams turn summaries and game events to loopback websocket
// observers. The observer surface is read-only; it never accepts
// orders.
type Server struct {
	game *game.Game
	tune tuning.Tuning
	log  *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu       sync.Mutex
	sessions map[uint64]*session
}

type session struct {
	out        chan []byte
	withEvents atomic.Bool
}

func NewServer(g *game.Game, tune tuning.Tuning, logger *log.Logger) *Server {
	s := &Server{
		game:     g,
		tune:     tune,
		log:      logger,
		sessions: map[uint64]*session{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	g.Events().Subscribe(s.forwardEvent)
	return s
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.game.Config()
		cats := s.game.Catalogs()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			GameID:          cfg.ID,
			Turn:            s.game.Turn(),
			GameParams: observerproto.GameParams{
				TurnIntervalMs:     s.tune.TurnIntervalMs,
				AutosaveEveryTurns: cfg.AutosaveEveryTurns,
				Seed:               cfg.Seed,
			},
			ResourcePalette: cats.Resources.Palette,
			Catalogs:        catalogDigests(cats),
		}
		for _, f := range s.game.SnapshotState().Factions {
			resp.Factions = append(resp.Factions, observerproto.FactionRef{
				ID:     f.ID,
				Name:   f.Name,
				Player: f.Player,
			})
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func catalogDigests(cats *catalogs.Catalogs) protocol.CatalogDigests {
	return protocol.CatalogDigests{
		ResourcePalette: protocol.DigestRef{
			Digest: cats.Resources.PaletteDigest,
			Count:  len(cats.Resources.Palette),
		},
		ResourcesDigest: cats.Resources.DefsDigest,
		BuildingsDigest: cats.Buildings.Digest,
		ShipsDigest:     cats.Ships.Digest,
		TechsDigest:     cats.Techs.Digest,
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sess := &session{out: make(chan []byte, 256)}
		sess.withEvents.Store(sub.WithEvents)
		sid := s.nextID.Add(1)
		s.mu.Lock()
		s.sessions[sid] = sess
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
		}()

		s.sendBacklog(sess, sub.BacklogTurns)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-sess.out:
					if !ok {
						writeErr <- nil
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var sub observerproto.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				continue
			}
			if sub.Type != protocol.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
				continue
			}
			sess.withEvents.Store(sub.WithEvents)
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// BroadcastTurn pushes a turn summary to every connected observer. The
// server's turn loop calls it after each completed turn. Slow sessions
// miss summaries rather than stalling the loop.
func (s *Server) BroadcastTurn(digest string) {
	msg := s.buildTurnMsg(digest)
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		select {
		case sess.out <- b:
		default:
		}
	}
}

func (s *Server) buildTurnMsg(digest string) observerproto.TurnMsg {
	snap := s.game.SnapshotState()
	msg := observerproto.TurnMsg{
		Type:            protocol.TypeTurn,
		ProtocolVersion: observerproto.Version,
		Turn:            snap.Turn,
		Digest:          digest,
		GameOver:        snap.GameOver,
		Victor:          snap.Victor,
		VictoryType:     snap.VictoryType,
		Prices:          snap.Prices,
	}
	for _, f := range snap.Factions {
		msg.Factions = append(msg.Factions, observerproto.FactionState{
			ID:          f.ID,
			Name:        f.Name,
			Player:      f.Player,
			Eliminated:  f.Eliminated,
			Colonies:    f.Colonies,
			Population:  f.Stats.Population,
			Production:  f.Stats.Production,
			Science:     f.Stats.Science,
			Fleet:       f.Stats.FleetStrength,
			Stockpile:   f.Stockpile,
			Researched:  f.Researched,
			CurrentTech: f.Current,
		})
	}
	for _, r := range snap.Relations {
		msg.Relations = append(msg.Relations, observerproto.RelationState{
			A:      r.A,
			B:      r.B,
			Value:  r.Value,
			Status: string(r.Status),
		})
	}
	return msg
}

func (s *Server) forwardEvent(ev game.EventEntry) {
	b, err := json.Marshal(eventMsg(ev))
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if !sess.withEvents.Load() {
			continue
		}
		select {
		case sess.out <- b:
		default:
		}
	}
}

func (s *Server) sendBacklog(sess *session, backlogTurns int) {
	if backlogTurns <= 0 {
		return
	}
	now := s.game.Turn()
	var since uint64
	if uint64(backlogTurns) < now {
		since = now - uint64(backlogTurns)
	}
	for _, ev := range s.game.Events().Entries() {
		if ev.Turn < since {
			continue
		}
		b, err := json.Marshal(eventMsg(ev))
		if err != nil {
			continue
		}
		select {
		case sess.out <- b:
		default:
			return
		}
	}
}

func eventMsg(ev game.EventEntry) observerproto.EventMsg {
	return observerproto.EventMsg{
		Type:            protocol.TypeEvent,
		ProtocolVersion: observerproto.Version,
		Turn:            ev.Turn,
		At:              ev.At,
		Name:            ev.Name,
		Text:            ev.Text,
	}
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
