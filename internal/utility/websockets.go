package utility

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Simple Hub to hold active connections: Map[Username] -> Connection
var (
	Clients   = make(map[string]*websocket.Conn)
	ClientsMu sync.Mutex // Mutex to prevent race conditions
	Upgrader  = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Allow CORS for development
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// RegisterClient registers a new feed connection for a username.
func RegisterClient(username string, conn *websocket.Conn) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	Clients[username] = conn
	log.Info().Str("username", username).Msg("WebSocket Client Connected")
}

// UnregisterClient removes a client (when they close the tab).
func UnregisterClient(username string) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()
	if _, ok := Clients[username]; ok {
		delete(Clients, username)
		log.Info().Str("username", username).Msg("WebSocket Client Disconnected")
	}
}

// NotifyAnalysisSubmitted pushes a freshly submitted analysis to the user's
// live feed, if they are connected.
func NotifyAnalysisSubmitted(username string, payload interface{}) {
	ClientsMu.Lock()
	defer ClientsMu.Unlock()

	if conn, ok := Clients[username]; ok {
		if err := conn.WriteJSON(payload); err != nil {
			log.Error().Err(err).Msg("Failed to send WS message, removing client")
			conn.Close()
			delete(Clients, username)
		}
	}
}
