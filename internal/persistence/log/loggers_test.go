package log

import (
	"testing"

	"stellarforge.ai/internal/sim/game"
)

func TestTurnLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewTurnLogger(dir)

	want := []game.TurnLogEntry{
		{Turn: 1, Digest: "aa11", Events: []game.EventEntry{{Turn: 1, Name: "TURN_START", Text: "turn 1 begins"}}},
		{Turn: 2, Digest: "bb22"},
		{Turn: 3, Digest: "cc33", Events: []game.EventEntry{{Turn: 3, Name: "WAR_DECLARED", Text: "war"}}},
	}
	for _, e := range want {
		if err := l.WriteTurn(e); err != nil {
			t.Fatalf("WriteTurn %d: %v", e.Turn, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadTurns(dir)
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Turn != want[i].Turn || got[i].Digest != want[i].Digest {
			t.Fatalf("entry %d = %+v", i, got[i])
		}
		if len(got[i].Events) != len(want[i].Events) {
			t.Fatalf("entry %d events = %+v", i, got[i].Events)
		}
	}
	if got[2].Events[0].Name != "WAR_DECLARED" {
		t.Fatalf("event = %+v", got[2].Events[0])
	}
}

func TestReadTurnsEmptyDir(t *testing.T) {
	got, err := ReadTurns(t.TempDir())
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("entries = %d", len(got))
	}
}
