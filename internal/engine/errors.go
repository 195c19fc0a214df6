package engine

import "errors"

// Rule violations. Operations wrap these with fmt.Errorf so callers can match
// them with errors.Is and still get a readable message.
var (
	ErrInvalidPlayerCount  = errors.New("player count out of range")
	ErrInvalidPhase        = errors.New("operation not allowed in this phase")
	ErrNotActivePlayer     = errors.New("player is not the active player")
	ErrSlotOutOfRange      = errors.New("slot index out of range")
	ErrSlotAlreadyRevealed = errors.New("slot is already face-up")
	ErrRevealLimit         = errors.New("player has already revealed two cards")
	ErrNoAcquiredCard      = errors.New("no drawn card to resolve")
	ErrAlreadyAcquired     = errors.New("a card has already been drawn this turn")
	ErrDeckExhausted       = errors.New("draw pile is empty")
	ErrDiscardEmpty        = errors.New("discard pile is empty")
)

// ErrorKind is a stable name for a rule violation, suitable for clients.
type ErrorKind string

const (
	KindNone               ErrorKind = ""
	KindInvalidPlayerCount ErrorKind = "invalid_player_count"
	KindInvalidPhase       ErrorKind = "invalid_phase"
	KindNotActivePlayer    ErrorKind = "not_active_player"
	KindSlotOutOfRange     ErrorKind = "slot_out_of_range"
	KindSlotRevealed       ErrorKind = "slot_already_revealed"
	KindRevealLimit        ErrorKind = "reveal_limit"
	KindNoAcquiredCard     ErrorKind = "no_acquired_card"
	KindAlreadyAcquired    ErrorKind = "already_acquired"
	KindDeckExhausted      ErrorKind = "deck_exhausted"
	KindDiscardEmpty       ErrorKind = "discard_empty"
	KindUnknown            ErrorKind = "unknown"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidPlayerCount, KindInvalidPlayerCount},
	{ErrInvalidPhase, KindInvalidPhase},
	{ErrNotActivePlayer, KindNotActivePlayer},
	{ErrSlotOutOfRange, KindSlotOutOfRange},
	{ErrSlotAlreadyRevealed, KindSlotRevealed},
	{ErrRevealLimit, KindRevealLimit},
	{ErrNoAcquiredCard, KindNoAcquiredCard},
	{ErrAlreadyAcquired, KindAlreadyAcquired},
	{ErrDeckExhausted, KindDeckExhausted},
	{ErrDiscardEmpty, KindDiscardEmpty},
}

// KindOf classifies err. A nil error has KindNone; anything that is not a
// rule violation is KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}

// IsRuleViolation reports whether err is one of the engine's rule errors.
func IsRuleViolation(err error) bool {
	k := KindOf(err)
	return k != KindNone && k != KindUnknown
}
