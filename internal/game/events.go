// internal/game/events.go
package game

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
)

// GameEventType names an event pushed to players.
type GameEventType string

const (
	EventGameState         GameEventType = "game_state"          // per-player snapshot
	EventRoundStarted      GameEventType = "round_started"       // clients clear the previous round
	EventRoundSkipped      GameEventType = "round_skipped"       // nobody played any cards
	EventBallots           GameEventType = "ballots"             // anonymized submissions for the judge
	EventSelectionAccepted GameEventType = "selection_accepted"  // private ack to the submitter
	EventPickTimeout       GameEventType = "players_out_of_time" // picking phase expired
	EventVoteTimeout       GameEventType = "judge_out_of_time"   // voting phase expired
	EventRoundWinner       GameEventType = "round_winner"
	EventGameWon           GameEventType = "game_won"
	EventGameEnded         GameEventType = "game_ended"
	EventNotice            GameEventType = "message"
	EventGameList          GameEventType = "game_list"
	EventClientSettings    GameEventType = "client_settings"
)

// NoticeLevel tells the client how to render a notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// EndReason explains why a game went back to WAITING.
type EndReason string

const (
	EndReasonWon              EndReason = "won"
	EndReasonNotEnoughPlayers EndReason = "not_enough_players"
	EndReasonOutOfPromptCards EndReason = "out_of_black_cards"
)

// Notice is a user facing message.
type Notice struct {
	Message string      `json:"message"`
	Level   NoticeLevel `json:"level"`
}

// RoundWinner identifies the winning ballot so clients can highlight it.
type RoundWinner struct {
	PlayerID uuid.UUID `json:"playerId"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
	Cards    []string  `json:"cards"`
	Score    int       `json:"score"`
}

// ClientSettings is sent once when a connection is established.
type ClientSettings struct {
	PlayerID            uuid.UUID                   `json:"playerId"`
	MaxPlayersPerGame   int                         `json:"maxPlayersPerGame"`
	MaxGameNameLength   int                         `json:"maxGameNameLength"`
	MaxPlayerNameLength int                         `json:"maxPlayerNameLength"`
	MinHandSize         int                         `json:"minHandSize"`
	MaxHandSize         int                         `json:"maxHandSize"`
	DeckCollections     []models.DeckCollectionInfo `json:"deckCollections"`
}

// GameEvent is the single envelope for everything delivered to a player. Only
// the fields relevant to Type are set.
type GameEvent struct {
	Type           GameEventType   `json:"type"`
	State          *GameState      `json:"state,omitempty"`
	Ballots        []BallotEntry   `json:"ballots,omitempty"`
	Winner         *RoundWinner    `json:"winner,omitempty"`
	Notice         *Notice         `json:"notice,omitempty"`
	Games          []GameSummary   `json:"games,omitempty"`
	Reason         EndReason       `json:"reason,omitempty"`
	ClientSettings *ClientSettings `json:"clientSettings,omitempty"`
}

// NoticeEvent wraps a message in a notice event.
func NoticeEvent(level NoticeLevel, msg string) GameEvent {
	return GameEvent{Type: EventNotice, Notice: &Notice{Message: msg, Level: level}}
}

// ErrorNotice turns a rejected action into the notice sent back to the actor.
// Room state errors are warnings, everything else is an error.
func ErrorNotice(err error) GameEvent {
	level := NoticeError
	switch {
	case errors.Is(err, ErrAlreadyInGame), errors.Is(err, ErrWrongPhase),
		errors.Is(err, ErrInvalidGameName), errors.Is(err, ErrAlreadySubmitted):
		level = NoticeWarning
	}
	return NoticeEvent(level, err.Error())
}
