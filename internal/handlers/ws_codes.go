// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game feed.
const (
	BadSubprotocolError = 3000 // Client connected without the "game" subprotocol.
	SlowConsumerError   = 3001 // Client fell too far behind the update stream and was dropped.
)
