// internal/game/rules.go
package game

import (
	"fmt"
	"time"
)

// MinPlayersToStart is the smallest roster that can play a round: one judge
// and at least two players competing for the prompt.
const MinPlayersToStart = 3

const (
	minWinScore     = 1
	maxWinScore     = 100
	minRoundTimeSec = 10
	maxRoundTimeSec = 600
)

// Settings are the per-game options the host may change while the game is
// waiting.
type Settings struct {
	HandSize     int  `json:"handSize"`     // cards each player holds at the start of a round
	WinScore     int  `json:"winScore"`     // points needed to win the game
	RoundTimeSec int  `json:"roundTimeSec"` // seconds for both the picking and the voting phase
	MaxPlayers   int  `json:"maxPlayers"`
	AllowDiscard bool `json:"allowDiscard"` // players may swap their whole hand once per round
}

// Limits are the server wide bounds applied to every game.
type Limits struct {
	MaxPlayersPerGame int
	MaxGameNameLength int
	MinCardsToStart   int
	MinHandSize       int
	MaxHandSize       int

	// MaxPlayerNameLength is enforced by the transport when a player connects.
	MaxPlayerNameLength int

	// TickRate is the number of scheduler ticks per second.
	TickRate int
	// WinnerDelay is the pause between a winner being picked and the next round.
	WinnerDelay time.Duration

	DefaultDeck     string
	DefaultSettings Settings
}

// DefaultLimits mirrors the values the server ships with.
func DefaultLimits() Limits {
	return Limits{
		MaxPlayersPerGame:   10,
		MaxGameNameLength:   40,
		MaxPlayerNameLength: 40,
		MinCardsToStart:     10,
		MinHandSize:         5,
		MaxHandSize:         50,
		TickRate:            10,
		WinnerDelay:         4 * time.Second,
		DefaultDeck:         "base",
		DefaultSettings: Settings{
			HandSize:     10,
			WinScore:     10,
			RoundTimeSec: 60,
			MaxPlayers:   10,
			AllowDiscard: false,
		},
	}
}

// Validate checks every field of s against the server limits.
func (s Settings) Validate(l Limits) error {
	if s.HandSize < l.MinHandSize || s.HandSize > l.MaxHandSize {
		return fmt.Errorf("%w: hand size must be between %d and %d", ErrInvalidSettings, l.MinHandSize, l.MaxHandSize)
	}
	if s.WinScore < minWinScore || s.WinScore > maxWinScore {
		return fmt.Errorf("%w: score to win must be between %d and %d", ErrInvalidSettings, minWinScore, maxWinScore)
	}
	if s.RoundTimeSec < minRoundTimeSec || s.RoundTimeSec > maxRoundTimeSec {
		return fmt.Errorf("%w: round time must be between %d and %d seconds", ErrInvalidSettings, minRoundTimeSec, maxRoundTimeSec)
	}
	if s.MaxPlayers < MinPlayersToStart || s.MaxPlayers > l.MaxPlayersPerGame {
		return fmt.Errorf("%w: max players must be between %d and %d", ErrInvalidSettings, MinPlayersToStart, l.MaxPlayersPerGame)
	}
	return nil
}

// roundTicks converts the round time into scheduler ticks.
func (s Settings) roundTicks(tickRate int) int {
	if tickRate <= 0 {
		tickRate = 1
	}
	return s.RoundTimeSec * tickRate
}
