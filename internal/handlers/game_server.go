// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/engine"
	"github.com/jason-s-yu/skyjo/internal/game"
	"github.com/sirupsen/logrus"
)

// sendBuffer is how many events may queue for one socket before it is dropped.
const sendBuffer = 64

// GameServer is a high-level struct that holds a reference to a GameStore
// and the sockets watching each game.
type GameServer struct {
	GameStore    *game.GameStore
	DefaultRules game.HouseRules
	Historian    game.ActionPublisher // nil disables the audit trail
	Logger       *logrus.Logger

	// EngineOptions are passed to every new game, e.g. a fixed seed in tests.
	EngineOptions []engine.Option

	mu    sync.Mutex
	conns map[uuid.UUID]map[*wsClient]struct{}
}

// wsClient is one socket with its own ordered outgoing queue.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

func NewGameServer(logger *logrus.Logger, defaults game.HouseRules, historian game.ActionPublisher) *GameServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &GameServer{
		GameStore:    game.NewGameStore(),
		DefaultRules: defaults,
		Historian:    historian,
		Logger:       logger,
		conns:        make(map[uuid.UUID]map[*wsClient]struct{}),
	}
}

// CreateGame builds a game with rules, wires its broadcast and stores it.
func (gs *GameServer) CreateGame(rules game.HouseRules) *game.SkyjoGame {
	opts := []game.GameOption{
		game.WithHouseRules(rules),
		game.WithEngineOptions(gs.EngineOptions...),
	}
	if gs.Historian != nil {
		opts = append(opts, game.WithHistorian(gs.Historian))
	}
	g := game.NewSkyjoGame(gs.Logger, opts...)
	g.BroadcastFn = gs.broadcastFunc(g.ID)
	gs.GameStore.AddGame(g)

	gs.Logger.WithFields(logrus.Fields{
		"game_id":     g.ID,
		"playerCount": rules.PlayerCount,
	}).Info("game created")
	return g
}

// RemoveGame drops a game and closes its sockets.
func (gs *GameServer) RemoveGame(id uuid.UUID) {
	gs.GameStore.DeleteGame(id)

	gs.mu.Lock()
	clients := gs.conns[id]
	delete(gs.conns, id)
	gs.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// RunJanitor removes games idle for longer than maxIdle until ctx is done.
// A non-positive maxIdle disables it.
func (gs *GameServer) RunJanitor(ctx context.Context, maxIdle time.Duration) {
	if maxIdle <= 0 {
		gs.Logger.WithField("max_idle", maxIdle).Warn("inactivity janitor disabled")
		return
	}
	interval := time.Minute
	if maxIdle < interval {
		interval = maxIdle
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, id := range gs.GameStore.PruneInactive(now, maxIdle) {
				gs.RemoveGame(id)
				gs.Logger.WithField("game_id", id).Info("removed inactive game")
			}
		}
	}
}

// register adds a socket to a game's broadcast set.
func (gs *GameServer) register(gameID uuid.UUID, conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.conns[gameID] == nil {
		gs.conns[gameID] = make(map[*wsClient]struct{})
	}
	gs.conns[gameID][c] = struct{}{}
	return c
}

func (gs *GameServer) unregister(gameID uuid.UUID, c *wsClient) {
	gs.mu.Lock()
	if set, ok := gs.conns[gameID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(gs.conns, gameID)
		}
	}
	gs.mu.Unlock()
	c.close()
}

// clientCount returns the number of sockets watching a game.
func (gs *GameServer) clientCount(gameID uuid.UUID) int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.conns[gameID])
}

// broadcastFunc returns a function suitable for SkyjoGame.BroadcastFn.
// It is called while the game lock is held, so it only queues.
func (gs *GameServer) broadcastFunc(gameID uuid.UUID) func(ev game.GameEvent) {
	return func(ev game.GameEvent) {
		data := game.EncodeEvent(ev)

		gs.mu.Lock()
		var slow []*wsClient
		for c := range gs.conns[gameID] {
			select {
			case c.send <- data:
			default:
				slow = append(slow, c)
			}
		}
		for _, c := range slow {
			delete(gs.conns[gameID], c)
		}
		gs.mu.Unlock()

		for _, c := range slow {
			gs.Logger.WithField("game_id", gameID).Warn("dropping slow websocket client")
			c.close()
			go c.conn.Close(SlowConsumerError, "Too many pending events.")
		}
	}
}
