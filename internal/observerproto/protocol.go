package observerproto

import (
	"time"

	"stellarforge.ai/internal/protocol"
)

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, and
// can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// WithEvents asks for individual EVENT messages between turn
	// summaries; off by default.
	WithEvents bool `json:"with_events,omitempty"`

	// BacklogTurns asks for the buffered event log on connect, limited
	// to entries from the last N turns. 0 means no backlog.
	BacklogTurns int `json:"backlog_turns,omitempty"`
}

// HTTP response for GET /observer/v1/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string                  `json:"protocol_version"`
	GameID          string                  `json:"game_id"`
	Turn            uint64                  `json:"turn"`
	GameParams      GameParams              `json:"game_params"`
	ResourcePalette []string                `json:"resource_palette"`
	Catalogs        protocol.CatalogDigests `json:"catalogs"`
	Factions        []FactionRef            `json:"factions"`
}

type GameParams struct {
	TurnIntervalMs     int   `json:"turn_interval_ms"`
	AutosaveEveryTurns int   `json:"autosave_every_turns"`
	Seed               int64 `json:"seed"`
}

type FactionRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Player bool   `json:"player,omitempty"`
}

// Server -> Client. Sent after every completed turn.
type TurnMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Turn            uint64 `json:"turn"`
	Digest          string `json:"digest"`

	GameOver    bool   `json:"game_over,omitempty"`
	Victor      string `json:"victor,omitempty"`
	VictoryType string `json:"victory_type,omitempty"`

	Factions  []FactionState     `json:"factions"`
	Prices    map[string]float64 `json:"prices"`
	Relations []RelationState    `json:"relations,omitempty"`
}

type FactionState struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Player     bool   `json:"player,omitempty"`
	Eliminated bool   `json:"eliminated,omitempty"`

	Colonies   int                `json:"colonies"`
	Population int                `json:"population"`
	Production float64            `json:"production"`
	Science    float64            `json:"science"`
	Fleet      float64            `json:"fleet_strength"`
	Stockpile  map[string]float64 `json:"stockpile,omitempty"`

	Researched  int    `json:"researched"`
	CurrentTech string `json:"current_tech,omitempty"`
}

type RelationState struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Value  int    `json:"value"`
	Status string `json:"status"`
}

// Server -> Client. One game-log entry, sent as it happens when the
// subscription asked for events.
type EventMsg struct {
	Type            string    `json:"type"`
	ProtocolVersion string    `json:"protocol_version"`
	Turn            uint64    `json:"turn"`
	At              time.Time `json:"at"`
	Name            string    `json:"name"`
	Text            string    `json:"text"`
}
