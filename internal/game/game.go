// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/auth"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/sirupsen/logrus"
)

// Phase is the position of a game in the round cycle.
type Phase string

const (
	PhaseWaiting Phase = "WAITING" // lobby, no active round
	PhasePicking Phase = "PICKING" // everyone but the judge chooses cards
	PhaseVoting  Phase = "VOTING"  // the judge chooses the winning ballot
)

// handFillIterationCap bounds the draws spent topping up one hand when the
// pool is short on unique text.
const handFillIterationCap = 1000

// secretParams is the argon2 setting used for game secrets.
var secretParams = auth.SecretParams

// DeckCatalog resolves deck names to the shared, read-only deck data.
type DeckCatalog interface {
	Get(name string) (*models.Deck, bool)
}

// ActionPublisher receives every recorded game action.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, rec models.GameActionRecord) error
}

// DeliverFunc pushes an event to one player. It must not block.
type DeliverFunc func(playerID uuid.UUID, ev GameEvent)

// Game holds the entire state for a single game instance in memory. Every
// exported method takes Mu; helpers documented with "Assumes lock is held"
// must only be called with Mu held.
type Game struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	Settings Settings
	limits   Limits
	catalog  DeckCatalog

	secretHash string

	Players    []*Player
	Phase      Phase
	judgeIndex int
	PromptCard *models.PromptCard
	timeLeft   int // ticks left in the current phase

	decks        []string
	ballots      *ballotBox
	winnerChosen bool
	gameWon      bool // a round winner reached the win score
	matchWon     bool // the last game ended with a winner, scores reset on start

	// generation changes on every round-affecting transition; a delayed
	// continuation only runs if it still matches.
	generation  uint64
	winnerTimer *time.Timer

	prompts    drawPool[models.PromptCard]
	candidates drawPool[string]
	rng        *rand.Rand

	destroyed   bool
	actionIndex int

	Mu sync.Mutex

	// DeliverFn sends an event to a single player. If nil, nothing is sent.
	DeliverFn DeliverFunc
	// OnListChanged is invoked when anything shown in the game list changes.
	OnListChanged func()
	// Actions receives the action history. Optional.
	Actions ActionPublisher
	Logger  *logrus.Logger
}

// NewGame builds an empty game in WAITING with the default settings and, when
// the catalog has it, the default deck selected.
func NewGame(name string, limits Limits, catalog DeckCatalog, logger *logrus.Logger) *Game {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	g := &Game{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
		Settings:  limits.DefaultSettings,
		limits:    limits,
		catalog:   catalog,
		Phase:     PhaseWaiting,
		decks:     []string{},
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:    logger,
	}
	if g.Settings.MaxPlayers <= 0 || g.Settings.MaxPlayers > limits.MaxPlayersPerGame {
		g.Settings.MaxPlayers = limits.MaxPlayersPerGame
	}
	if catalog != nil && limits.DefaultDeck != "" {
		if _, ok := catalog.Get(limits.DefaultDeck); ok {
			g.decks = append(g.decks, limits.DefaultDeck)
		}
	}
	g.prompts = newDrawPool(g.rng, g.promptSource)
	g.candidates = newDrawPool(g.rng, g.candidateSource)
	return g
}

func (g *Game) log() *logrus.Entry {
	return g.Logger.WithFields(logrus.Fields{"game": g.ID, "name": g.Name})
}

// SetSecret protects the game with secret. An empty secret removes it.
func (g *Game) SetSecret(secret string) error {
	hash := ""
	if secret != "" {
		var err error
		if hash, err = auth.HashSecret(secret, secretParams); err != nil {
			return fmt.Errorf("hash game secret: %w", err)
		}
	}
	g.Mu.Lock()
	defer g.Mu.Unlock()
	g.secretHash = hash
	g.notifyListChanged()
	return nil
}

// Join adds a player to the roster. A player joining mid-round is dealt in
// immediately and, during voting, sees the ballots everyone else sees.
func (g *Game) Join(u models.User, secret string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.destroyed {
		return ErrGameNotFound
	}
	if g.getPlayerByID(u.ID) != nil {
		return ErrAlreadyInGame
	}
	if len(g.Players) >= g.Settings.MaxPlayers {
		return ErrGameFull
	}
	if g.secretHash != "" {
		ok, err := auth.VerifySecret(secret, g.secretHash)
		if err != nil {
			g.log().WithError(err).Error("stored game secret is unreadable")
		}
		if !ok {
			return ErrWrongSecret
		}
	}

	g.broadcast(NoticeEvent(NoticeInfo, u.Username+" joined the game"))

	p := newPlayer(u)
	g.Players = append(g.Players, p)
	if g.Phase != PhaseWaiting {
		g.fillHand(p)
	}

	g.deliver(p.ID, NoticeEvent(NoticeSuccess, "Joined "+g.Name))
	if g.Phase == PhaseVoting && g.ballots.len() > 0 {
		g.deliver(p.ID, GameEvent{Type: EventBallots, Ballots: g.ballots.Entries()})
	}
	g.log().WithField("player", p.ID).Info("player joined")
	g.logAction(p.ID, "player_join", map[string]interface{}{"name": p.Name})
	g.broadcastState()
	g.notifyListChanged()
	return nil
}

// Leave removes a player. empty reports that the roster is now empty and the
// game has been destroyed.
func (g *Game) Leave(playerID uuid.UUID) (empty bool, err error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx := g.playerIndex(playerID)
	if idx < 0 {
		return false, ErrNotInGame
	}
	leaving := g.Players[idx]
	wasJudge := g.Phase != PhaseWaiting && idx == g.judgeIndex

	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	g.log().WithField("player", playerID).Info("player left")
	g.logAction(playerID, "player_leave", map[string]interface{}{"name": leaving.Name, "wasJudge": wasJudge})
	g.notifyListChanged()

	if len(g.Players) == 0 {
		g.destroyUnsafe()
		return true, nil
	}

	g.broadcast(NoticeEvent(NoticeInfo, leaving.Name+" left the game"))

	// keep the same player as judge when someone ahead of them leaves
	if idx < g.judgeIndex {
		g.judgeIndex--
	}

	switch {
	case g.Phase == PhaseWaiting:
		g.clampJudgeIndex()
		g.broadcastState()
	case len(g.Players) < MinPlayersToStart:
		g.endGame(EndReasonNotEnoughPlayers)
	case wasJudge && g.gameWon:
		// the winner delay is pending; finish the won game now
		g.endGame(EndReasonWon)
	case wasJudge:
		// the next startRound advances by one, landing on the player who
		// followed the departed judge
		g.judgeIndex = (idx - 1 + len(g.Players)) % len(g.Players)
		g.clearSelections()
		g.startRound()
	case g.Phase == PhasePicking && g.allSubmittedUnsafe():
		g.startVotingPhase()
	default:
		g.clampJudgeIndex()
		g.broadcastState()
	}
	return false, nil
}

// SetDecks replaces the selected deck set. Host only, WAITING only.
func (g *Game) SetDecks(playerID uuid.UUID, names []string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.checkHostWaiting(playerID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(names))
	decks := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup {
			continue
		}
		if g.catalog == nil {
			return fmt.Errorf("%w: %s", ErrDeckNotFound, name)
		}
		if _, ok := g.catalog.Get(name); !ok {
			return fmt.Errorf("%w: %s", ErrDeckNotFound, name)
		}
		seen[name] = struct{}{}
		decks = append(decks, name)
	}

	g.decks = decks
	g.logAction(playerID, "set_decks", map[string]interface{}{"decks": decks})
	g.broadcastState()
	g.notifyListChanged()
	return nil
}

// UpdateSettings replaces the game settings. Host only, WAITING only.
func (g *Game) UpdateSettings(playerID uuid.UUID, s Settings) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if err := g.checkHostWaiting(playerID); err != nil {
		return err
	}
	if err := s.Validate(g.limits); err != nil {
		return err
	}
	if s.MaxPlayers < len(g.Players) {
		return fmt.Errorf("%w: max players can't be below the current player count", ErrInvalidSettings)
	}

	g.Settings = s
	g.logAction(playerID, "update_settings", map[string]interface{}{
		"handSize":     s.HandSize,
		"winScore":     s.WinScore,
		"roundTimeSec": s.RoundTimeSec,
		"maxPlayers":   s.MaxPlayers,
		"allowDiscard": s.AllowDiscard,
	})
	g.broadcastState()
	g.notifyListChanged()
	return nil
}

// Start begins the first round. Only the host may start a game.
func (g *Game) Start(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	idx := g.playerIndex(playerID)
	if idx < 0 {
		return ErrNotInGame
	}
	if idx != 0 {
		return ErrNotHost
	}
	if g.Phase != PhaseWaiting {
		return ErrAlreadyRunning
	}
	if len(g.Players) < MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	if len(g.promptSource()) < g.limits.MinCardsToStart {
		return ErrNotEnoughPromptCards
	}
	if len(g.candidateSource()) < g.limits.MinCardsToStart {
		return ErrNotEnoughCandidateCards
	}

	for _, p := range g.Players {
		p.Hand = nil
		p.resetRound()
		if g.matchWon {
			p.Score = 0
		}
	}
	g.matchWon = false
	g.gameWon = false
	g.prompts.reset()
	g.candidates.reset()
	g.judgeIndex = 0

	g.log().WithField("players", len(g.Players)).Info("game started")
	g.logAction(playerID, "game_start", map[string]interface{}{"decks": g.decks})
	g.startRound()
	g.notifyListChanged()
	return nil
}

// SubmitSelection records the cards a player plays this round. The
// submission must contain exactly the prompt card's pick count.
func (g *Game) SubmitSelection(playerID uuid.UUID, cards []string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		return ErrNotInGame
	}
	if g.Phase != PhasePicking {
		return ErrWrongPhase
	}
	if g.isJudgeUnsafe(playerID) {
		return ErrJudgeCannotSubmit
	}
	if p.Done() {
		return ErrAlreadySubmitted
	}
	if g.PromptCard == nil || len(cards) != g.PromptCard.Pick {
		return ErrWrongPickCount
	}
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c]; dup {
			return ErrDuplicateCards
		}
		seen[c] = struct{}{}
	}
	for _, c := range cards {
		if !p.hasCard(c) {
			return ErrCardNotInHand
		}
	}

	p.Selection = append([]string(nil), cards...)
	g.logAction(playerID, "submit_selection", map[string]interface{}{"cards": p.Selection})

	if g.allSubmittedUnsafe() {
		g.startVotingPhase()
		return nil
	}
	g.deliver(playerID, GameEvent{Type: EventSelectionAccepted})
	g.broadcastState()
	return nil
}

// SelectWinner lets the judge pick the winning ballot by its token.
func (g *Game) SelectWinner(playerID uuid.UUID, token string) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.getPlayerByID(playerID) == nil {
		return ErrNotInGame
	}
	if g.Phase != PhaseVoting {
		return ErrWrongPhase
	}
	if !g.isJudgeUnsafe(playerID) {
		return ErrNotJudge
	}
	if g.winnerChosen {
		return ErrWinnerAlreadyChosen
	}
	ownerID, ok := g.ballots.owner(token)
	if !ok {
		return ErrUnknownToken
	}

	g.winnerChosen = true
	winner := g.getPlayerByID(ownerID)
	if winner == nil {
		g.log().WithField("player", ownerID).Warn("winning ballot belongs to a player who left")
		g.logAction(playerID, "select_winner", map[string]interface{}{"token": token, "winnerLeft": true})
		g.broadcast(NoticeEvent(NoticeInfo, "The winning player has left the game"))
		g.broadcastState()
		g.scheduleNextRound()
		return nil
	}

	played := append([]string(nil), winner.Selection...)
	winner.Score++
	winner.removeCards(played)

	g.logAction(playerID, "select_winner", map[string]interface{}{
		"token":  token,
		"winner": winner.ID,
		"cards":  played,
		"score":  winner.Score,
	})
	g.broadcast(GameEvent{Type: EventRoundWinner, Winner: &RoundWinner{
		PlayerID: winner.ID,
		Name:     winner.Name,
		Token:    token,
		Cards:    played,
		Score:    winner.Score,
	}})
	if winner.Score >= g.Settings.WinScore {
		g.gameWon = true
		g.log().WithField("player", winner.ID).Info("game won")
		g.broadcast(GameEvent{Type: EventGameWon, Winner: &RoundWinner{
			PlayerID: winner.ID,
			Name:     winner.Name,
			Score:    winner.Score,
		}})
	}
	g.broadcastState()
	g.scheduleNextRound()
	return nil
}

// DiscardHand swaps a player's whole hand for a fresh one, once per round.
func (g *Game) DiscardHand(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		return ErrNotInGame
	}
	if g.Phase != PhasePicking {
		return ErrWrongPhase
	}
	if !g.Settings.AllowDiscard {
		return ErrDiscardNotAllowed
	}
	if g.isJudgeUnsafe(playerID) {
		return ErrJudgeCannotSubmit
	}
	if p.Done() {
		return ErrAlreadySubmitted
	}
	if p.UsedDiscard {
		return ErrDiscardAlreadyUsed
	}

	p.Hand = nil
	g.fillHand(p)
	p.UsedDiscard = true
	g.logAction(playerID, "discard_hand", nil)
	st := g.snapshotUnsafe(playerID)
	g.deliver(playerID, GameEvent{Type: EventGameState, State: &st})
	return nil
}

// Tick advances the phase timer by one scheduler tick.
func (g *Game) Tick() {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.destroyed || g.Phase == PhaseWaiting {
		return
	}
	if g.Phase == PhaseVoting && g.winnerChosen {
		return
	}
	g.timeLeft--
	if g.timeLeft <= 0 {
		g.handleTimeout()
	}
}

// JudgeIndex returns the judge's position in the roster.
func (g *Game) JudgeIndex() int {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.judgeIndex
}

// HasPlayer reports whether playerID is on the roster.
func (g *Game) HasPlayer(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.getPlayerByID(playerID) != nil
}

// startRound rotates the judge and deals the next prompt.
// Assumes lock is held.
func (g *Game) startRound() {
	if len(g.Players) < MinPlayersToStart {
		g.endGame(EndReasonNotEnoughPlayers)
		return
	}
	g.stopWinnerTimer()
	g.generation++
	g.gameWon = false

	g.judgeIndex = (g.judgeIndex + 1) % len(g.Players)
	g.ballots = nil
	g.winnerChosen = false
	for _, p := range g.Players {
		p.resetRound()
		g.fillHand(p)
	}

	prompt, ok := g.prompts.draw()
	if !ok {
		g.log().Warn("no prompt cards left in the selected decks")
		g.endGame(EndReasonOutOfPromptCards)
		return
	}
	g.PromptCard = &prompt
	g.Phase = PhasePicking
	g.timeLeft = g.Settings.roundTicks(g.limits.TickRate)

	judge := g.Players[g.judgeIndex]
	g.log().WithFields(logrus.Fields{"judge": judge.ID, "pick": prompt.Pick}).Debug("round started")
	g.logAction(judge.ID, "round_start", map[string]interface{}{"prompt": prompt.Text, "pick": prompt.Pick})

	g.broadcastState()
	g.broadcast(GameEvent{Type: EventRoundStarted})
}

// startVotingPhase hands the anonymized ballots to everyone, or skips the
// round when nobody played.
// Assumes lock is held.
func (g *Game) startVotingPhase() {
	box, err := newBallotBox(g.Players, g.rng)
	if err != nil {
		g.log().WithError(err).Error("could not build ballots, skipping round")
		box = nil
	}
	if box.len() == 0 {
		g.logAction(uuid.Nil, "round_skipped", nil)
		g.broadcast(GameEvent{Type: EventRoundSkipped, Notice: &Notice{
			Message: "Nobody played any cards, skipping the round",
			Level:   NoticeWarning,
		}})
		g.startRound()
		return
	}

	g.generation++
	g.ballots = box
	g.winnerChosen = false
	g.Phase = PhaseVoting
	g.timeLeft = g.Settings.roundTicks(g.limits.TickRate)
	g.logAction(g.Players[g.judgeIndex].ID, "voting_start", map[string]interface{}{"ballots": box.len()})

	g.broadcast(GameEvent{Type: EventBallots, Ballots: box.Entries()})
	g.broadcastState()
}

// handleTimeout applies the fallback for an expired phase.
// Assumes lock is held.
func (g *Game) handleTimeout() {
	switch g.Phase {
	case PhasePicking:
		g.log().Debug("picking phase timed out")
		g.logAction(uuid.Nil, "pick_timeout", nil)
		g.broadcast(GameEvent{Type: EventPickTimeout, Notice: &Notice{
			Message: "Some players ran out of time",
			Level:   NoticeWarning,
		}})
		g.startVotingPhase()
	case PhaseVoting:
		g.log().Debug("voting phase timed out")
		g.logAction(uuid.Nil, "vote_timeout", nil)
		g.broadcast(GameEvent{Type: EventVoteTimeout, Notice: &Notice{
			Message: "The judge ran out of time",
			Level:   NoticeWarning,
		}})
		g.clearSelections()
		g.startRound()
	}
}

// scheduleNextRound starts the next round after the winner delay, unless the
// game moved on in the meantime.
// Assumes lock is held.
func (g *Game) scheduleNextRound() {
	g.stopWinnerTimer()
	gen := g.generation
	g.winnerTimer = time.AfterFunc(g.limits.WinnerDelay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.afterWinnerDelay(gen)
	})
}

// afterWinnerDelay is the continuation of scheduleNextRound.
// Assumes lock is held.
func (g *Game) afterWinnerDelay(gen uint64) {
	if g.destroyed || gen != g.generation || g.Phase != PhaseVoting || !g.winnerChosen {
		g.log().WithField("generation", gen).Debug("stale next round continuation ignored")
		return
	}
	g.stopWinnerTimer()
	if g.gameWon {
		g.endGame(EndReasonWon)
		return
	}
	g.startRound()
}

// endGame returns the game to WAITING. Hands are cleared, scores are kept
// until the next start after a win.
// Assumes lock is held.
func (g *Game) endGame(reason EndReason) {
	g.stopWinnerTimer()
	g.generation++

	g.Phase = PhaseWaiting
	g.PromptCard = nil
	g.timeLeft = 0
	g.ballots = nil
	g.winnerChosen = false
	g.matchWon = reason == EndReasonWon || g.gameWon
	g.gameWon = false
	g.clampJudgeIndex()
	for _, p := range g.Players {
		p.Hand = nil
		p.resetRound()
	}

	g.log().WithField("reason", reason).Info("game ended")
	g.logAction(uuid.Nil, "game_end", map[string]interface{}{"reason": string(reason)})
	g.broadcast(GameEvent{Type: EventGameEnded, Reason: reason})
	g.broadcastState()
	g.notifyListChanged()
}

// destroyUnsafe marks an empty game as gone.
// Assumes lock is held.
func (g *Game) destroyUnsafe() {
	g.stopWinnerTimer()
	g.generation++
	g.destroyed = true
	g.Phase = PhaseWaiting
	g.PromptCard = nil
	g.ballots = nil
	g.judgeIndex = 0
	g.log().Info("game destroyed")
	g.logAction(uuid.Nil, "game_destroyed", nil)
}

// fillHand tops a hand up to the hand size, skipping text the player already
// holds. It gives up quietly after handFillIterationCap draws.
// Assumes lock is held.
func (g *Game) fillHand(p *Player) {
	for i := 0; len(p.Hand) < g.Settings.HandSize; i++ {
		if i >= handFillIterationCap {
			g.log().WithFields(logrus.Fields{"player": p.ID, "hand": len(p.Hand)}).Warn("hand fill gave up, hand left short")
			return
		}
		card, ok := g.candidates.draw()
		if !ok {
			return
		}
		if p.hasCard(card) {
			continue
		}
		p.Hand = append(p.Hand, card)
	}
}

// allSubmittedUnsafe reports whether every player except the judge has
// submitted. Assumes lock is held.
func (g *Game) allSubmittedUnsafe() bool {
	for i, p := range g.Players {
		if i == g.judgeIndex {
			continue
		}
		if !p.Done() {
			return false
		}
	}
	return true
}

// Assumes lock is held.
func (g *Game) clearSelections() {
	for _, p := range g.Players {
		p.Selection = nil
	}
}

// Assumes lock is held.
func (g *Game) clampJudgeIndex() {
	if g.judgeIndex < 0 || g.judgeIndex >= len(g.Players) {
		g.judgeIndex = 0
	}
}

// judgeUnsafe returns the current judge, nil while waiting.
// Assumes lock is held.
func (g *Game) judgeUnsafe() *Player {
	if g.Phase == PhaseWaiting || g.judgeIndex < 0 || g.judgeIndex >= len(g.Players) {
		return nil
	}
	return g.Players[g.judgeIndex]
}

// Assumes lock is held.
func (g *Game) isJudgeUnsafe(playerID uuid.UUID) bool {
	j := g.judgeUnsafe()
	return j != nil && j.ID == playerID
}

// Assumes lock is held.
func (g *Game) checkHostWaiting(playerID uuid.UUID) error {
	idx := g.playerIndex(playerID)
	if idx < 0 {
		return ErrNotInGame
	}
	if idx != 0 {
		return ErrNotHost
	}
	if g.Phase != PhaseWaiting {
		return ErrWrongPhase
	}
	return nil
}

// Assumes lock is held.
func (g *Game) stopWinnerTimer() {
	if g.winnerTimer != nil {
		g.winnerTimer.Stop()
		g.winnerTimer = nil
	}
}

// promptSource flattens the prompt cards of the selected decks.
// Assumes lock is held.
func (g *Game) promptSource() []models.PromptCard {
	var out []models.PromptCard
	for _, d := range g.selectedDecks() {
		out = append(out, d.PromptCards...)
	}
	return out
}

// candidateSource flattens the candidate cards of the selected decks.
// Assumes lock is held.
func (g *Game) candidateSource() []string {
	var out []string
	for _, d := range g.selectedDecks() {
		for _, c := range d.CandidateCards {
			out = append(out, c.Text)
		}
	}
	return out
}

func (g *Game) selectedDecks() []*models.Deck {
	if g.catalog == nil {
		return nil
	}
	out := make([]*models.Deck, 0, len(g.decks))
	for _, name := range g.decks {
		if d, ok := g.catalog.Get(name); ok {
			out = append(out, d)
		}
	}
	return out
}

// Assumes lock is held.
func (g *Game) playerIndex(playerID uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// Assumes lock is held.
func (g *Game) getPlayerByID(playerID uuid.UUID) *Player {
	if i := g.playerIndex(playerID); i >= 0 {
		return g.Players[i]
	}
	return nil
}

// broadcastState sends every player their own snapshot.
// Assumes lock is held.
func (g *Game) broadcastState() {
	for _, p := range g.Players {
		st := g.snapshotUnsafe(p.ID)
		g.deliver(p.ID, GameEvent{Type: EventGameState, State: &st})
	}
}

// broadcast sends ev to every player on the roster.
// Assumes lock is held.
func (g *Game) broadcast(ev GameEvent) {
	for _, p := range g.Players {
		g.deliver(p.ID, ev)
	}
}

func (g *Game) deliver(playerID uuid.UUID, ev GameEvent) {
	if g.DeliverFn == nil {
		return
	}
	g.DeliverFn(playerID, ev)
}

func (g *Game) notifyListChanged() {
	if g.OnListChanged != nil {
		g.OnListChanged()
	}
}

// logAction publishes the action to the history queue.
// Assumes lock is held.
func (g *Game) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.Actions == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	rec := models.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	pub := g.Actions
	entry := g.log()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pub.PublishGameAction(ctx, rec); err != nil {
			entry.WithError(err).WithField("action", rec.ActionIndex).Warn("failed to publish game action")
		}
	}()
}
