// internal/handlers/game_server.go
package handlers

import (
	"net/http"

	"github.com/jason-s-yu/blanks/internal/game"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/sirupsen/logrus"
)

// CollectionSource lists the deck collections served on /decks.
type CollectionSource interface {
	Collections() []models.DeckCollectionInfo
}

// GameServer holds the registry and the connection hub shared by every
// handler.
type GameServer struct {
	Registry       *game.Registry
	Hub            *Hub
	Decks          CollectionSource
	OriginPatterns []string
	Logger         *logrus.Logger
}

// NewGameServer wires a registry to a fresh hub. The registry's deliver
// function is the hub's Deliver.
func NewGameServer(limits game.Limits, catalog game.Catalog, actions game.ActionPublisher, logger *logrus.Logger) *GameServer {
	hub := NewHub(logger)
	return &GameServer{
		Registry:       game.NewRegistry(limits, catalog, hub.Deliver, actions, logger),
		Hub:            hub,
		Decks:          catalog,
		OriginPatterns: []string{"*"},
		Logger:         logger,
	}
}

// Routes returns the mux for the public HTTP surface.
func (gs *GameServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /games", ListGamesHandler(gs))
	mux.HandleFunc("GET /decks", ListDecksHandler(gs))
	mux.HandleFunc("GET /healthz", HealthHandler())
	mux.HandleFunc("/ws", GameWSHandler(gs.Logger, gs))
	return mux
}

// ListGamesHandler serves the current game list.
func ListGamesHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games := gs.Registry.Games()
		if games == nil {
			games = []game.GameSummary{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

// ListDecksHandler serves the deck catalog.
func ListDecksHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cols := []models.DeckCollectionInfo{}
		if gs.Decks != nil {
			cols = append(cols, gs.Decks.Collections()...)
		}
		writeJSON(w, http.StatusOK, cols)
	}
}

// HealthHandler reports liveness.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
