// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used within the game handler.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	SlowConsumerError   = 3001 // Client fell too far behind on outgoing events.
)
