package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
)

// Player is the round-scoped state of one roster member.
type Player struct {
	ID   uuid.UUID
	Name string

	// Hand holds candidate card texts, never more than the configured hand size.
	Hand []string
	// Selection is what the player submitted this round, empty until then.
	// Submitted cards stay in the hand unless they win.
	Selection []string

	Score       int
	UsedDiscard bool
}

func newPlayer(u models.User) *Player {
	return &Player{ID: u.ID, Name: u.Username}
}

// Done reports whether the player has submitted this round.
func (p *Player) Done() bool {
	return len(p.Selection) > 0
}

func (p *Player) hasCard(text string) bool {
	for _, c := range p.Hand {
		if c == text {
			return true
		}
	}
	return false
}

// removeCards drops one copy of every card in cards from the hand.
func (p *Player) removeCards(cards []string) {
	for _, card := range cards {
		for i, c := range p.Hand {
			if c == card {
				p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
				break
			}
		}
	}
}

// resetRound clears the per-round bookkeeping. Hand and score are kept.
func (p *Player) resetRound() {
	p.Selection = nil
	p.UsedDiscard = false
}
