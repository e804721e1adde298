// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the game handler.
const (
	BadSubprotocolError    = 3000 // Client connected with an unsupported subprotocol.
	InvalidPlayerNameError = 3001 // Player name in the WS URL is empty or too long.
)

// Subprotocol is the only subprotocol the /ws endpoint speaks.
const Subprotocol = "blanks"
