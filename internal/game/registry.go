// internal/game/registry.go
package game

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/sirupsen/logrus"
)

// Catalog is the deck source the registry hands to its games. Collections
// feeds the client settings sent on connect.
type Catalog interface {
	DeckCatalog
	Collections() []models.DeckCollectionInfo
}

type session struct {
	user   models.User
	gameID uuid.UUID
}

// Registry owns the active games and the connected players and routes every
// player action to the game that player is in.
//
// Lock order is Registry.mu before Game.Mu. Games never call back into the
// registry while holding their own lock except through listDirty, which is
// atomic.
type Registry struct {
	mu       sync.Mutex
	games    map[uuid.UUID]*Game
	sessions map[uuid.UUID]*session

	limits  Limits
	catalog Catalog
	deliver DeliverFunc
	actions ActionPublisher
	logger  *logrus.Logger

	listDirty atomic.Bool
}

// NewRegistry builds an empty registry. deliver must not block.
func NewRegistry(limits Limits, catalog Catalog, deliver DeliverFunc, actions ActionPublisher, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Registry{
		games:    make(map[uuid.UUID]*Game),
		sessions: make(map[uuid.UUID]*session),
		limits:   limits,
		catalog:  catalog,
		deliver:  deliver,
		actions:  actions,
		logger:   logger,
	}
}

// Limits returns the server wide limits.
func (r *Registry) Limits() Limits {
	return r.limits
}

// Connect registers a player session and sends it the client settings and the
// current game list.
func (r *Registry) Connect(u models.User) {
	r.mu.Lock()
	r.sessions[u.ID] = &session{user: u}
	r.mu.Unlock()

	cs := &ClientSettings{
		PlayerID:            u.ID,
		MaxPlayersPerGame:   r.limits.MaxPlayersPerGame,
		MaxGameNameLength:   r.limits.MaxGameNameLength,
		MaxPlayerNameLength: r.limits.MaxPlayerNameLength,
		MinHandSize:         r.limits.MinHandSize,
		MaxHandSize:         r.limits.MaxHandSize,
	}
	if r.catalog != nil {
		cs.DeckCollections = r.catalog.Collections()
	}
	r.send(u.ID, GameEvent{Type: EventClientSettings, ClientSettings: cs})
	r.send(u.ID, GameEvent{Type: EventGameList, Games: r.Games()})
	r.logger.WithFields(logrus.Fields{"player": u.ID, "name": u.Username}).Info("player connected")
}

// Disconnect removes a session, leaving its game first.
func (r *Registry) Disconnect(playerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok {
		return
	}
	if s.gameID != uuid.Nil {
		r.leaveLocked(s)
	}
	delete(r.sessions, playerID)
	r.logger.WithField("player", playerID).Info("player disconnected")
}

// CreateGame creates a game with the caller as its host.
func (r *Registry) CreateGame(playerID uuid.UUID, name, secret string) (*Game, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > r.limits.MaxGameNameLength {
		return nil, ErrInvalidGameName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if s.gameID != uuid.Nil {
		return nil, ErrAlreadyInGame
	}

	g := NewGame(name, r.limits, r.catalog, r.logger)
	g.DeliverFn = r.deliver
	g.OnListChanged = r.markListDirty
	g.Actions = r.actions
	if err := g.SetSecret(secret); err != nil {
		return nil, err
	}
	if err := g.Join(s.user, secret); err != nil {
		return nil, err
	}

	r.games[g.ID] = g
	s.gameID = g.ID
	r.markListDirty()
	r.logger.WithFields(logrus.Fields{"game": g.ID, "name": name, "host": playerID}).Info("game created")
	return g, nil
}

// JoinGame adds the caller to an existing game.
func (r *Registry) JoinGame(playerID, gameID uuid.UUID, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if s.gameID != uuid.Nil {
		return ErrAlreadyInGame
	}
	g, ok := r.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	if err := g.Join(s.user, secret); err != nil {
		return err
	}
	s.gameID = gameID
	return nil
}

// LeaveGame removes the caller from their game, destroying it if it empties.
func (r *Registry) LeaveGame(playerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if s.gameID == uuid.Nil {
		return ErrNotInGame
	}
	r.leaveLocked(s)
	r.send(playerID, GameEvent{Type: EventGameList, Games: r.gamesLocked()})
	return nil
}

// leaveLocked assumes r.mu is held.
func (r *Registry) leaveLocked(s *session) {
	gameID := s.gameID
	s.gameID = uuid.Nil
	g, ok := r.games[gameID]
	if !ok {
		return
	}
	empty, err := g.Leave(s.user.ID)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{"game": gameID, "player": s.user.ID}).Warn("leave failed")
	}
	if empty {
		delete(r.games, gameID)
		r.logger.WithField("game", gameID).Info("game removed")
	}
	r.markListDirty()
}

// GameOf returns the game a player is in.
func (r *Registry) GameOf(playerID uuid.UUID) (*Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	g, ok := r.games[s.gameID]
	if !ok {
		return nil, ErrNotInGame
	}
	return g, nil
}

// Get looks a game up by id.
func (r *Registry) Get(gameID uuid.UUID) (*Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[gameID]
	return g, ok
}

func (r *Registry) withGame(playerID uuid.UUID, fn func(*Game) error) error {
	g, err := r.GameOf(playerID)
	if err != nil {
		return err
	}
	return fn(g)
}

// SetDecks routes a deck selection to the caller's game.
func (r *Registry) SetDecks(playerID uuid.UUID, decks []string) error {
	return r.withGame(playerID, func(g *Game) error { return g.SetDecks(playerID, decks) })
}

// UpdateSettings routes a settings change to the caller's game.
func (r *Registry) UpdateSettings(playerID uuid.UUID, s Settings) error {
	return r.withGame(playerID, func(g *Game) error { return g.UpdateSettings(playerID, s) })
}

// StartGame routes a start request to the caller's game.
func (r *Registry) StartGame(playerID uuid.UUID) error {
	return r.withGame(playerID, func(g *Game) error { return g.Start(playerID) })
}

// SubmitSelection routes a card submission to the caller's game.
func (r *Registry) SubmitSelection(playerID uuid.UUID, cards []string) error {
	return r.withGame(playerID, func(g *Game) error { return g.SubmitSelection(playerID, cards) })
}

// SelectWinner routes the judge's pick to the caller's game.
func (r *Registry) SelectWinner(playerID uuid.UUID, token string) error {
	return r.withGame(playerID, func(g *Game) error { return g.SelectWinner(playerID, token) })
}

// DiscardHand routes a hand discard to the caller's game.
func (r *Registry) DiscardHand(playerID uuid.UUID) error {
	return r.withGame(playerID, func(g *Game) error { return g.DiscardHand(playerID) })
}

// Games lists every active game, oldest first.
func (r *Registry) Games() []GameSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gamesLocked()
}

// gamesLocked assumes r.mu is held.
func (r *Registry) gamesLocked() []GameSummary {
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})
	out := make([]GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, g.Summary())
	}
	return out
}

// Tick advances every game by one tick and then flushes a pending game list
// update to all connected players.
func (r *Registry) Tick() {
	r.mu.Lock()
	games := make([]*Game, 0, len(r.games))
	for _, g := range r.games {
		games = append(games, g)
	}
	r.mu.Unlock()

	for _, g := range games {
		g.Tick()
	}
	r.flushGameList()
}

func (r *Registry) flushGameList() {
	if !r.listDirty.CompareAndSwap(true, false) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.gamesLocked()
	for id := range r.sessions {
		r.send(id, GameEvent{Type: EventGameList, Games: list})
	}
}

func (r *Registry) markListDirty() {
	r.listDirty.Store(true)
}

func (r *Registry) send(playerID uuid.UUID, ev GameEvent) {
	if r.deliver != nil {
		r.deliver(playerID, ev)
	}
}
