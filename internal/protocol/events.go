package protocol

// Event names as written to the game log and the turn log. Stable
// strings: replays and the observer feed match on them.
const (
	EventTurnStart = "TURN_START"

	EventColonyEstablished = "COLONY_ESTABLISHED"
	EventColonyAbandoned   = "COLONY_ABANDONED"
	EventFactionEliminated = "FACTION_ELIMINATED"

	EventWarDeclared      = "WAR_DECLARED"
	EventPeaceSigned      = "PEACE_SIGNED"
	EventTradeEstablished = "TRADE_ESTABLISHED"
	EventTradeTerminated  = "TRADE_TERMINATED"

	EventTechResearched   = "TECH_RESEARCHED"
	EventCapstoneComplete = "CAPSTONE_COMPLETE"
	EventVictory          = "VICTORY"

	// Fault events: the turn completes anyway, the failure is logged.
	EventAdvisorFault  = "ADVISOR_FAULT"
	EventAutosaveFault = "AUTOSAVE_FAULT"
	EventLogFault      = "LOG_FAULT"
)

var knownEvents = map[string]struct{}{
	EventTurnStart:         {},
	EventColonyEstablished: {},
	EventColonyAbandoned:   {},
	EventFactionEliminated: {},
	EventWarDeclared:       {},
	EventPeaceSigned:       {},
	EventTradeEstablished:  {},
	EventTradeTerminated:   {},
	EventTechResearched:    {},
	EventCapstoneComplete:  {},
	EventVictory:           {},
	EventAdvisorFault:      {},
	EventAutosaveFault:     {},
	EventLogFault:          {},
}

func IsKnownEvent(name string) bool {
	_, ok := knownEvents[name]
	return ok
}
