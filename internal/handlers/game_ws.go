// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/game"
	"github.com/jason-s-yu/skyjo/internal/middleware"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// GameWSHandler upgrades the HTTP connection to WebSocket for a specific game instance.
// The socket receives a private_sync_state snapshot, then every event of the
// game, and may send action_* messages that are applied in arrival order.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "Invalid game_id format", http.StatusBadRequest)
			return
		}
		g, ok := gs.GameStore.GetGame(gameID)
		if !ok {
			http.Error(w, "Game not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // the screen may be served from anywhere on the local machine
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for game %s: %v", gameID, err)
			return
		}
		defer c.CloseNow()

		if c.Subprotocol() != "game" {
			logger.Warnf("Client for game %s connected with invalid subprotocol: %q", gameID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'game' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := gs.register(gameID, c)
		defer gs.unregister(gameID, client)
		go writePump(ctx, cancel, client, logger.WithField("game_id", gameID))

		gs.sendSync(gameID, client, g)
		err = readGameMessages(ctx, gs, g, client, logger.WithField("game_id", gameID))
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// writePump drains the client's queue onto the socket. A closed queue means
// the server dropped the client.
func writePump(ctx context.Context, cancel context.CancelFunc, client *wsClient, logger *logrus.Entry) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-client.send:
			if !ok {
				client.conn.Close(websocket.StatusGoingAway, "Game closed.")
				return
			}
			writeCtx, done := context.WithTimeout(ctx, writeTimeout)
			err := client.conn.Write(writeCtx, websocket.MessageText, data)
			done()
			if err != nil {
				logger.Warnf("Failed to write websocket message: %v", err)
				return
			}
		}
	}
}

// readGameMessages continuously reads messages from the socket and applies
// them to the game. It returns the error that ended the loop, or nil on a
// normal close.
func readGameMessages(ctx context.Context, gs *GameServer, g *game.SkyjoGame, client *wsClient, logger *logrus.Entry) error {
	for {
		msgType, data, err := client.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg GameMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received: %v", err)
			gs.sendError(g.ID, client, fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err))
			continue
		}

		switch msg.Type {
		case "ping":
			gs.sendTo(g.ID, client, map[string]string{"type": "pong"})
		case ActionSync:
			gs.sendSync(g.ID, client, g)
		default:
			logger.Debugf("Received action '%s'.", msg.Type)
			if _, err := applyAction(g, msg); err != nil {
				gs.sendError(g.ID, client, err)
			}
		}
	}
}

// sendSync queues the full view for one client.
func (gs *GameServer) sendSync(gameID uuid.UUID, client *wsClient, g *game.SkyjoGame) {
	view := g.View()
	gs.sendRaw(gameID, client, game.EncodeEvent(game.GameEvent{Type: game.EventPrivateSyncState, State: &view}))
}

// sendError queues an error for the client that caused it.
func (gs *GameServer) sendError(gameID uuid.UUID, client *wsClient, err error) {
	resp, _ := errorResponse(err)
	gs.sendTo(gameID, client, resp)
}

func (gs *GameServer) sendTo(gameID uuid.UUID, client *wsClient, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		gs.Logger.Errorf("Error marshaling WebSocket message: %v", err)
		return
	}
	gs.sendRaw(gameID, client, data)
}

// sendRaw queues data if the client is still registered.
func (gs *GameServer) sendRaw(gameID uuid.UUID, client *wsClient, data []byte) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if _, ok := gs.conns[gameID][client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
		gs.Logger.WithField("game_id", gameID).Warn("websocket queue full, dropping message")
	}
}
