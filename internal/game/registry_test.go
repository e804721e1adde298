package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, n int) (*Registry, []models.User, *mockBroadcaster) {
	t.Helper()
	mb := newMockBroadcaster()
	r := NewRegistry(testLimits(), newTestCatalog(), mb.deliverFn, nil, nil)
	users := makeUsers(n)
	for _, u := range users {
		r.Connect(u)
	}
	return r, users, mb
}

func TestConnectSendsClientSettings(t *testing.T) {
	r, users, mb := newTestRegistry(t, 1)

	ev := mb.lastOfType(users[0].ID, EventClientSettings)
	require.NotNil(t, ev)
	cs := ev.ClientSettings
	assert.Equal(t, users[0].ID, cs.PlayerID)
	assert.Equal(t, r.Limits().MaxPlayersPerGame, cs.MaxPlayersPerGame)
	assert.Equal(t, r.Limits().MaxPlayerNameLength, cs.MaxPlayerNameLength)
	require.Len(t, cs.DeckCollections, 1)
	assert.Len(t, cs.DeckCollections[0].Decks, len(newTestCatalog()))
	assert.NotNil(t, mb.lastOfType(users[0].ID, EventGameList))
}

func TestCreateGame(t *testing.T) {
	r, users, _ := newTestRegistry(t, 2)

	_, err := r.CreateGame(users[0].ID, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidGameName)
	_, err = r.CreateGame(users[0].ID, string(make([]rune, r.Limits().MaxGameNameLength+1)), "")
	assert.ErrorIs(t, err, ErrInvalidGameName)
	_, err = r.CreateGame(uuid.New(), "game", "")
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	g, err := r.CreateGame(users[0].ID, "  friday night ", "")
	require.NoError(t, err)
	assert.Equal(t, "friday night", g.Name)
	assert.True(t, g.HasPlayer(users[0].ID))

	_, err = r.CreateGame(users[0].ID, "another", "")
	assert.ErrorIs(t, err, ErrAlreadyInGame)

	games := r.Games()
	require.Len(t, games, 1)
	assert.Equal(t, 1, games[0].PlayerCount)
	assert.Equal(t, []string{"base"}, games[0].Decks)
}

func TestJoinAndLeaveGame(t *testing.T) {
	r, users, _ := newTestRegistry(t, 3)
	g, err := r.CreateGame(users[0].ID, "game", "pw")
	require.NoError(t, err)

	assert.ErrorIs(t, r.JoinGame(users[1].ID, uuid.New(), "pw"), ErrGameNotFound)
	assert.ErrorIs(t, r.JoinGame(users[1].ID, g.ID, "nope"), ErrWrongSecret)
	require.NoError(t, r.JoinGame(users[1].ID, g.ID, "pw"))
	assert.ErrorIs(t, r.JoinGame(users[1].ID, g.ID, "pw"), ErrAlreadyInGame)

	got, err := r.GameOf(users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = r.GameOf(users[2].ID)
	assert.ErrorIs(t, err, ErrNotInGame)
	assert.ErrorIs(t, r.LeaveGame(users[2].ID), ErrNotInGame)

	require.NoError(t, r.LeaveGame(users[0].ID))
	require.NoError(t, r.LeaveGame(users[1].ID))
	_, ok := r.Get(g.ID)
	assert.False(t, ok, "empty games are removed")
	assert.Empty(t, r.Games())
}

func TestRegistryRoutesActions(t *testing.T) {
	r, users, _ := newTestRegistry(t, 4)
	g, err := r.CreateGame(users[0].ID, "game", "")
	require.NoError(t, err)
	for _, u := range users[1:3] {
		require.NoError(t, r.JoinGame(u.ID, g.ID, ""))
	}

	assert.ErrorIs(t, r.StartGame(users[3].ID), ErrNotInGame)
	assert.ErrorIs(t, r.SetDecks(users[1].ID, []string{"pick2"}), ErrNotHost)
	require.NoError(t, r.SetDecks(users[0].ID, []string{"base"}))
	require.NoError(t, r.UpdateSettings(users[0].ID, Settings{HandSize: 6, WinScore: 5, RoundTimeSec: 20, MaxPlayers: 5, AllowDiscard: true}))
	require.NoError(t, r.StartGame(users[0].ID))
	require.Equal(t, PhasePicking, g.Phase)

	require.NoError(t, r.DiscardHand(users[0].ID))
	p0 := g.getPlayerByID(users[0].ID)
	p2 := g.getPlayerByID(users[2].ID)
	require.NoError(t, r.SubmitSelection(users[0].ID, p0.Hand[:1]))
	require.NoError(t, r.SubmitSelection(users[2].ID, p2.Hand[:1]))
	require.Equal(t, PhaseVoting, g.Phase)

	require.NoError(t, r.SelectWinner(users[1].ID, tokenOf(t, g, users[0].ID)))
	assert.Equal(t, 1, p0.Score)
}

func TestDisconnectLeavesGame(t *testing.T) {
	r, users, mb := newTestRegistry(t, 2)
	g, err := r.CreateGame(users[0].ID, "game", "")
	require.NoError(t, err)
	require.NoError(t, r.JoinGame(users[1].ID, g.ID, ""))

	r.Disconnect(users[1].ID)
	assert.False(t, g.HasPlayer(users[1].ID))
	ev := mb.lastOfType(users[0].ID, EventNotice)
	require.NotNil(t, ev)
	assert.Equal(t, users[1].Username+" left the game", ev.Notice.Message)

	r.Disconnect(users[0].ID)
	_, ok := r.Get(g.ID)
	assert.False(t, ok)

	_, err = r.CreateGame(users[0].ID, "again", "")
	assert.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestTickCoalescesGameList(t *testing.T) {
	r, users, mb := newTestRegistry(t, 3)
	mb.clear()

	g, err := r.CreateGame(users[0].ID, "game", "")
	require.NoError(t, err)
	require.NoError(t, r.JoinGame(users[1].ID, g.ID, ""))
	require.NoError(t, r.JoinGame(users[2].ID, g.ID, ""))
	assert.Empty(t, mb.eventsOfType(users[2].ID, EventGameList), "nothing is sent before the tick")

	r.Tick()
	for _, u := range users {
		lists := mb.eventsOfType(u.ID, EventGameList)
		require.Len(t, lists, 1)
		require.Len(t, lists[0].Games, 1)
		assert.Equal(t, 3, lists[0].Games[0].PlayerCount)
	}

	r.Tick()
	assert.Len(t, mb.eventsOfType(users[0].ID, EventGameList), 1, "a clean list is not resent")
}

func TestTickAdvancesGames(t *testing.T) {
	r, users, _ := newTestRegistry(t, 3)
	g, err := r.CreateGame(users[0].ID, "game", "")
	require.NoError(t, err)
	for _, u := range users[1:] {
		require.NoError(t, r.JoinGame(u.ID, g.ID, ""))
	}
	require.NoError(t, r.StartGame(users[0].ID))

	before := g.timeLeft
	r.Tick()
	assert.Equal(t, before-1, g.timeLeft)
}
