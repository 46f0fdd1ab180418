package game

import "errors"

var (
	// Economic failures. Callers check and react; the turn never aborts.
	ErrInsufficient = errors.New("insufficient resources")

	// Invalid-input failures. Fail fast, never silently clamp.
	ErrInvalidKind     = errors.New("invalid resource kind")
	ErrInvalidQuantity = errors.New("invalid quantity")

	// Engine state failures.
	ErrGameOver     = errors.New("game is over")
	ErrTurnInFlight = errors.New("turn already in flight")

	ErrUnknownFaction = errors.New("unknown faction")
	ErrUnknownColony  = errors.New("unknown colony")
)
