// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
)

// PlayerState is what every player sees about one roster member.
type PlayerState struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Score   int       `json:"score"`
	Done    bool      `json:"done"`
	IsJudge bool      `json:"isJudge"`
	IsHost  bool      `json:"isHost"`
}

// GameState is the snapshot broadcast after every state change. Hand and
// Selection belong to the player the snapshot was built for.
type GameState struct {
	GameID       uuid.UUID          `json:"gameId"`
	Name         string             `json:"name"`
	Phase        Phase              `json:"phase"`
	Started      bool               `json:"started"`
	Decks        []string           `json:"decks"`
	HostID       *uuid.UUID         `json:"hostId"`
	Players      []PlayerState      `json:"players"`
	JudgeID      *uuid.UUID         `json:"judgeId"`
	PromptCard   *models.PromptCard `json:"promptCard"`
	Hand         []string           `json:"hand"`
	Selection    []string           `json:"selection,omitempty"`
	WinnerChosen bool               `json:"winnerChosen"`
	TimeLeftSec  int                `json:"timeLeftSec"`
	Settings     Settings           `json:"settings"`
	HasSecret    bool               `json:"hasSecret"`
}

// GameSummary is one row of the registry's game list.
type GameSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phase       Phase     `json:"phase"`
	Decks       []string  `json:"decks"`
	PlayerCount int       `json:"playerCount"`
	MaxPlayers  int       `json:"maxPlayers"`
	HasSecret   bool      `json:"hasSecret"`
}

// Snapshot returns the state of the game as seen by forPlayer.
func (g *Game) Snapshot(forPlayer uuid.UUID) GameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.snapshotUnsafe(forPlayer)
}

// snapshotUnsafe builds the per-player state. Assumes lock is held.
func (g *Game) snapshotUnsafe(forPlayer uuid.UUID) GameState {
	st := GameState{
		GameID:       g.ID,
		Name:         g.Name,
		Phase:        g.Phase,
		Started:      g.Phase != PhaseWaiting,
		Decks:        append([]string(nil), g.decks...),
		Players:      make([]PlayerState, 0, len(g.Players)),
		Hand:         []string{},
		WinnerChosen: g.winnerChosen,
		Settings:     g.Settings,
		HasSecret:    g.secretHash != "",
	}
	if g.Phase != PhaseWaiting && g.limits.TickRate > 0 {
		st.TimeLeftSec = (g.timeLeft + g.limits.TickRate - 1) / g.limits.TickRate
	}
	if g.PromptCard != nil {
		card := *g.PromptCard
		st.PromptCard = &card
	}

	judge := g.judgeUnsafe()
	for i, p := range g.Players {
		ps := PlayerState{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			Done:   p.Done(),
			IsHost: i == 0,
		}
		if judge != nil && judge.ID == p.ID {
			ps.IsJudge = true
		}
		st.Players = append(st.Players, ps)

		if p.ID == forPlayer {
			st.Hand = append(st.Hand, p.Hand...)
			if p.Done() {
				st.Selection = append([]string(nil), p.Selection...)
			}
		}
	}
	if len(g.Players) > 0 {
		host := g.Players[0].ID
		st.HostID = &host
	}
	if judge != nil {
		id := judge.ID
		st.JudgeID = &id
	}
	return st
}

// Summary returns the game list entry for this game.
func (g *Game) Summary() GameSummary {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return GameSummary{
		ID:          g.ID,
		Name:        g.Name,
		Phase:       g.Phase,
		Decks:       append([]string(nil), g.decks...),
		PlayerCount: len(g.Players),
		MaxPlayers:  g.Settings.MaxPlayers,
		HasSecret:   g.secretHash != "",
	}
}
