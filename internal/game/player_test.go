package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewPlayer(t *testing.T) {
	u := models.User{ID: uuid.New(), Username: "alice"}
	p := newPlayer(u)
	assert.Equal(t, u.ID, p.ID)
	assert.Equal(t, "alice", p.Name)
	assert.False(t, p.Done())
}

func TestRemoveCardsDropsOneCopy(t *testing.T) {
	p := &Player{Hand: []string{"a", "b", "a", "c"}}
	p.removeCards([]string{"a", "c", "missing"})
	assert.Equal(t, []string{"b", "a"}, p.Hand)
	assert.True(t, p.hasCard("a"))
	assert.False(t, p.hasCard("c"))
}

func TestResetRoundKeepsHandAndScore(t *testing.T) {
	p := &Player{Hand: []string{"a"}, Selection: []string{"a"}, Score: 3, UsedDiscard: true}
	assert.True(t, p.Done())
	p.resetRound()
	assert.False(t, p.Done())
	assert.False(t, p.UsedDiscard)
	assert.Equal(t, 3, p.Score)
	assert.Equal(t, []string{"a"}, p.Hand)
}
