package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"stellarforge.ai/internal/observerproto"
	"stellarforge.ai/internal/sim/catalogs"
	"stellarforge.ai/internal/sim/game"
	"stellarforge.ai/internal/sim/tuning"
)

func testServer(t *testing.T) (*Server, *game.Game) {
	t.Helper()
	cats := &catalogs.Catalogs{}
	cats.Resources.Currency = "CREDITS"
	cats.Resources.Defs = map[string]catalogs.ResourceDef{
		"CREDITS": {ID: "CREDITS", Capacity: 1_000_000, Currency: true},
		"METAL":   {ID: "METAL", BasePrice: 1.5, Capacity: 1000},
	}
	cats.Resources.Palette = []string{"CREDITS", "METAL"}
	cats.Techs.ByID = map[string]catalogs.TechDef{
		"T_GATE": {ID: "T_GATE", Cost: 100, Capstone: true},
	}

	g := game.New(game.Config{ID: "obs", Seed: 1}, cats)
	if _, err := g.AddFaction("F_A", "Alpha", true); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddFaction("F_B", "Beta", false); err != nil {
		t.Fatal(err)
	}
	return NewServer(g, tuning.Defaults(), log.New(io.Discard, "", 0)), g
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1:51000", true},
		{"[::1]:51000", true},
		{"10.0.0.7:51000", false},
		{"93.184.216.34:443", false},
		{"not-an-addr", false},
	}
	for _, c := range cases {
		if got := isLoopbackRemote(c.addr); got != c.want {
			t.Errorf("isLoopbackRemote(%q) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestBootstrapHandler(t *testing.T) {
	s, g := testServer(t)
	h := s.BootstrapHandler()

	req := httptest.NewRequest(http.MethodGet, "/observer/v1/bootstrap", nil)
	req.RemoteAddr = "127.0.0.1:50001"
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp observerproto.BootstrapResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ProtocolVersion != observerproto.Version || resp.GameID != "obs" {
		t.Fatalf("bootstrap = %+v", resp)
	}
	if resp.Turn != g.Turn() || len(resp.Factions) != 2 {
		t.Fatalf("bootstrap = %+v", resp)
	}
}

func TestBootstrapHandlerRejectsNonLoopback(t *testing.T) {
	s, _ := testServer(t)
	h := s.BootstrapHandler()

	req := httptest.NewRequest(http.MethodGet, "/observer/v1/bootstrap", nil)
	req.RemoteAddr = "10.1.2.3:50001"
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestBuildTurnMsgReflectsState(t *testing.T) {
	s, g := testServer(t)
	if _, err := g.DeclareWar("F_A", "F_B"); err != nil {
		t.Fatal(err)
	}

	msg := s.buildTurnMsg(g.StateDigest())
	if msg.Type != "TURN" || msg.Turn != g.Turn() {
		t.Fatalf("msg = %+v", msg)
	}
	if len(msg.Factions) != 2 || msg.Factions[0].ID != "F_A" {
		t.Fatalf("factions = %+v", msg.Factions)
	}
	if len(msg.Relations) != 1 || msg.Relations[0].Status != "HOSTILE" {
		t.Fatalf("relations = %+v", msg.Relations)
	}
	if _, ok := msg.Prices["METAL"]; !ok {
		t.Fatalf("prices = %+v", msg.Prices)
	}
}
