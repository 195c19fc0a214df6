// internal/game/game.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/cache"
	"github.com/jason-s-yu/skyjo/internal/engine"
	"github.com/sirupsen/logrus"
)

// maxHistory bounds the undo stack.
const maxHistory = 64

var (
	// ErrNothingToUndo is returned by Undo when no earlier state is kept.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrCorruptState means the engine produced a state that breaks an
	// invariant. The transition is refused and the game keeps its old state.
	ErrCorruptState = errors.New("engine produced an inconsistent state")
)

// ActionPublisher receives every accepted action, typically the Redis historian queue.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, record cache.GameActionRecord) error
}

// SkyjoGame wraps one engine game. All mutations go through Mu, one at a
// time, and every accepted one is logged, published and broadcast.
type SkyjoGame struct {
	ID         uuid.UUID
	HouseRules HouseRules
	CreatedAt  time.Time

	Mu sync.Mutex

	state        engine.GameState
	history      []engine.GameState
	actionIndex  int // increments for each accepted action, for the historian
	lastActivity time.Time

	// BroadcastFn is used to send events to the screen. If nil, no broadcast is done.
	BroadcastFn func(ev GameEvent)

	// Historian records accepted actions. If nil, actions are only logged.
	Historian ActionPublisher

	logger *logrus.Entry
}

// GameOption configures NewSkyjoGame.
type GameOption func(*SkyjoGame, *[]engine.Option)

// WithHouseRules sets the table rules.
func WithHouseRules(rules HouseRules) GameOption {
	return func(g *SkyjoGame, _ *[]engine.Option) { g.HouseRules = rules }
}

// WithEngineOptions passes options (seed, id source) through to the engine.
func WithEngineOptions(opts ...engine.Option) GameOption {
	return func(_ *SkyjoGame, eo *[]engine.Option) { *eo = append(*eo, opts...) }
}

// WithHistorian publishes accepted actions to p.
func WithHistorian(p ActionPublisher) GameOption {
	return func(g *SkyjoGame, _ *[]engine.Option) { g.Historian = p }
}

// NewSkyjoGame builds an instance in the start phase.
func NewSkyjoGame(logger *logrus.Logger, opts ...GameOption) *SkyjoGame {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id, _ := uuid.NewRandom()
	now := time.Now()
	g := &SkyjoGame{
		ID:           id,
		HouseRules:   DefaultHouseRules(),
		CreatedAt:    now,
		lastActivity: now,
	}
	var engineOpts []engine.Option
	for _, opt := range opts {
		opt(g, &engineOpts)
	}
	engineOpts = append(engineOpts, engine.WithRules(g.HouseRules.engineRules()))
	g.state = engine.NewGame(engineOpts...)
	g.logger = logger.WithField("game_id", g.ID)
	return g
}

// Start deals a new game for HouseRules.PlayerCount seats.
func (g *SkyjoGame) Start() (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.startLocked(g.HouseRules.PlayerCount)
}

// StartWithPlayers validates n as the player count and deals.
func (g *SkyjoGame) StartWithPlayers(n int) (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	rules := g.HouseRules
	rules.PlayerCount = n
	if err := rules.Validate(); err != nil {
		return g.viewLocked(), fmt.Errorf("%w: %v", engine.ErrInvalidPlayerCount, err)
	}
	return g.startLocked(n)
}

func (g *SkyjoGame) startLocked(n int) (GameView, error) {
	next, err := g.state.Start(n)
	if err := g.commit("game_start", cache.SystemSeat, map[string]interface{}{"playerCount": n}, next, err); err != nil {
		return g.viewLocked(), err
	}
	g.HouseRules.PlayerCount = n
	top, _ := g.state.TopOfDiscard()
	g.fireEvent(GameEvent{
		Type:    EventGameStart,
		Card:    buildEventCard(top, nil),
		Payload: map[string]interface{}{"playerCount": n, "deckSize": len(g.state.Deck)},
	})
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// Reset abandons the current game and returns to the start phase.
func (g *SkyjoGame) Reset() GameView {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	wasPlaying := g.state.Phase != engine.PhaseStart
	g.state = g.state.Reset()
	g.history = nil
	g.touch()
	g.logAction(cache.SystemSeat, "game_reset", map[string]interface{}{"wasStarted": wasPlaying})
	g.logger.Info("game reset")
	g.fireEvent(GameEvent{Type: EventGameReset})
	g.broadcastSyncState()
	return g.viewLocked()
}

// Reveal flips one card of seat during the reveal phase.
func (g *SkyjoGame) Reveal(seat, slot int) (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	prev := g.state
	next, err := prev.RevealCard(seat, slot)
	payload := map[string]interface{}{"slot": slot}
	if err := g.commit("player_reveal", seat, payload, next, err); err != nil {
		return g.viewLocked(), err
	}

	g.fireEvent(GameEvent{
		Type: EventPlayerReveal,
		Seat: seatPtr(seat),
		Card: buildEventCard(g.state.Players[seat].Cards[slot], idxPtr(slot)),
	})
	if prev.Phase == engine.PhaseReveal && g.state.Phase == engine.PhasePlay {
		starter := g.state.Players[g.state.Starter]
		g.logger.WithFields(logrus.Fields{
			"starter":     g.state.Starter,
			"visible_sum": engine.VisibleSum(starter),
		}).Info("reveal finished, highest visible sum starts")
		g.fireEvent(GameEvent{
			Type:    EventStarterSelected,
			Seat:    seatPtr(g.state.Starter),
			Payload: map[string]interface{}{"visibleSum": engine.VisibleSum(starter)},
		})
	}
	if g.state.CurrentPlayer != prev.CurrentPlayer {
		g.broadcastPlayerTurn()
	}
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// DrawFromDeck draws the top of the deck for the active seat.
func (g *SkyjoGame) DrawFromDeck() (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	prev := g.state
	seat := prev.CurrentPlayer
	next, err := prev.DrawFromDeck()
	if err := g.commit("player_draw_deck", seat, nil, next, err); err != nil {
		return g.viewLocked(), err
	}

	if g.state.Reshuffles > prev.Reshuffles {
		g.logger.WithField("deck_size", len(g.state.Deck)+1).Info("draw pile empty, reshuffled discard pile")
		g.logAction(cache.SystemSeat, string(EventDeckReshuffled), map[string]interface{}{"newSize": len(g.state.Deck) + 1})
		g.fireEvent(GameEvent{
			Type:    EventDeckReshuffled,
			Payload: map[string]interface{}{"deckSize": len(g.state.Deck) + 1},
		})
	}
	g.fireEvent(GameEvent{
		Type:    EventPlayerDrawDeck,
		Seat:    seatPtr(seat),
		Card:    buildEventCard(*g.state.Drawn, nil),
		Payload: map[string]interface{}{"deckSize": len(g.state.Deck)},
	})
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// TakeFromDiscard takes the discard top for the active seat.
func (g *SkyjoGame) TakeFromDiscard() (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	seat := g.state.CurrentPlayer
	next, err := g.state.TakeFromDiscard()
	if err := g.commit("player_take_discard", seat, nil, next, err); err != nil {
		return g.viewLocked(), err
	}

	g.fireEvent(GameEvent{
		Type:    EventPlayerTakeDisc,
		Seat:    seatPtr(seat),
		Card:    buildEventCard(*g.state.Drawn, nil),
		Payload: map[string]interface{}{"discardSize": len(g.state.Discard)},
	})
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// PlaceDrawnAt swaps the drawn card into slot of the active seat.
func (g *SkyjoGame) PlaceDrawnAt(slot int) (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	seat := g.state.CurrentPlayer
	next, err := g.state.PlaceDrawnAt(slot)
	if err := g.commit("player_place", seat, map[string]interface{}{"slot": slot}, next, err); err != nil {
		return g.viewLocked(), err
	}

	replaced, _ := g.state.TopOfDiscard()
	g.fireEvent(GameEvent{
		Type:  EventPlayerPlace,
		Seat:  seatPtr(seat),
		Card:  buildEventCard(g.state.Players[seat].Cards[slot], idxPtr(slot)),
		Card2: buildEventCard(replaced, idxPtr(slot)),
	})
	g.broadcastPlayerTurn()
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// DiscardAndFlip discards the drawn card and flips slot, or nothing for engine.NoSlot.
func (g *SkyjoGame) DiscardAndFlip(slot int) (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.discardAndFlipLocked(slot)
}

// DiscardAndFlipFirst discards the drawn card and flips the active seat's
// first face-down card, which is what the screen offers.
func (g *SkyjoGame) DiscardAndFlipFirst() (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	slot := engine.NoSlot
	if active, ok := g.state.Active(); ok {
		slot, _ = engine.FirstFaceDownSlot(active)
	}
	return g.discardAndFlipLocked(slot)
}

func (g *SkyjoGame) discardAndFlipLocked(slot int) (GameView, error) {
	seat := g.state.CurrentPlayer
	next, err := g.state.DiscardAndFlip(slot)
	if err := g.commit("player_discard_flip", seat, map[string]interface{}{"slot": slot}, next, err); err != nil {
		return g.viewLocked(), err
	}

	discarded, _ := g.state.TopOfDiscard()
	ev := GameEvent{
		Type: EventPlayerDiscard,
		Seat: seatPtr(seat),
		Card: buildEventCard(discarded, nil),
	}
	if slot != engine.NoSlot {
		ev.Card2 = buildEventCard(g.state.Players[seat].Cards[slot], idxPtr(slot))
	}
	g.fireEvent(ev)
	g.broadcastPlayerTurn()
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// Undo restores the state before the last accepted action.
func (g *SkyjoGame) Undo() (GameView, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if len(g.history) == 0 {
		return g.viewLocked(), ErrNothingToUndo
	}
	last := len(g.history) - 1
	g.state = g.history[last]
	g.history = g.history[:last]
	g.touch()
	g.logAction(cache.SystemSeat, string(EventGameUndo), map[string]interface{}{"phase": g.state.Phase})
	g.logger.WithField("phase", g.state.Phase).Info("undid last action")
	g.fireEvent(GameEvent{Type: EventGameUndo})
	g.broadcastSyncState()
	return g.viewLocked(), nil
}

// View returns the current screen state.
func (g *SkyjoGame) View() GameView {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.viewLocked()
}

// State returns a copy of the engine state, for tests and debugging.
func (g *SkyjoGame) State() engine.GameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.state
}

// LastActivity returns when the game last changed.
func (g *SkyjoGame) LastActivity() time.Time {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.lastActivity
}

// commit installs next if the transition succeeded and keeps the engine
// invariants. On failure the old state stays and the reason is returned.
// Assumes lock is held.
func (g *SkyjoGame) commit(action string, seat int, payload map[string]interface{}, next engine.GameState, err error) error {
	fields := logrus.Fields{"action": action, "seat": seat}
	if err != nil {
		g.logger.WithFields(fields).WithField("kind", engine.KindOf(err)).Debugf("rejected: %v", err)
		return err
	}
	if invErr := next.CheckInvariants(); invErr != nil {
		g.logger.WithFields(fields).Errorf("refusing transition: %v", invErr)
		return fmt.Errorf("%w: %v", ErrCorruptState, invErr)
	}

	g.history = append(g.history, g.state)
	if len(g.history) > maxHistory {
		g.history = g.history[len(g.history)-maxHistory:]
	}
	g.state = next
	g.touch()
	g.logAction(seat, action, payload)
	g.logger.WithFields(fields).Debug("accepted")
	return nil
}

func (g *SkyjoGame) touch() { g.lastActivity = time.Now() }

// viewLocked builds the view. Assumes lock is held.
func (g *SkyjoGame) viewLocked() GameView {
	return buildView(g.ID, g.HouseRules, g.state, len(g.history) > 0)
}

// broadcastPlayerTurn notifies the screen whose turn it is now.
// Assumes lock is held.
func (g *SkyjoGame) broadcastPlayerTurn() {
	active, ok := g.state.Active()
	if !ok || g.state.Phase == engine.PhaseStart {
		return
	}
	g.fireEvent(GameEvent{
		Type:    EventGamePlayerTurn,
		Seat:    seatPtr(active.ID),
		Payload: map[string]interface{}{"turn": g.state.Turn, "phase": g.state.Phase},
	})
}

// broadcastSyncState pushes the full view after a change. Assumes lock is held.
func (g *SkyjoGame) broadcastSyncState() {
	view := g.viewLocked()
	g.fireEvent(GameEvent{Type: EventPrivateSyncState, State: &view})
}

// fireEvent sends an event to the screen. Assumes lock is held.
func (g *SkyjoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// logAction sends the action details to the historian.
// Assumes lock is held by caller.
func (g *SkyjoGame) logAction(seat int, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.Historian == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorSeat:     seat,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(pub ActionPublisher, rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pub.PublishGameAction(ctx, rec); err != nil {
			g.logger.WithField("action_index", rec.ActionIndex).Warnf("failed to publish game action: %v", err)
		}
	}(g.Historian, record)
}
