package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Engine state.
	ErrGameOver     = "E_GAME_OVER"
	ErrTurnInFlight = "E_TURN_IN_FLIGHT"

	// Rule/order layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrNoResource      = "E_NO_RESOURCE"
	ErrInvalidKind     = "E_INVALID_KIND"
	ErrInvalidQuantity = "E_INVALID_QUANTITY"
	ErrUnknownFaction  = "E_UNKNOWN_FACTION"
	ErrUnknownColony   = "E_UNKNOWN_COLONY"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrGameOver:        {},
	ErrTurnInFlight:    {},
	ErrBadRequest:      {},
	ErrNoResource:      {},
	ErrInvalidKind:     {},
	ErrInvalidQuantity: {},
	ErrUnknownFaction:  {},
	ErrUnknownColony:   {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
