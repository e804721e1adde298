package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/blanks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStatuses(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	recs := []models.GameActionRecord{
		{GameID: a, ActionType: "player_join"},
		{GameID: b, ActionType: "player_join"},
		{GameID: a, ActionType: "game_destroyed"},
		{GameID: b, ActionType: "round_start"},
	}
	assert.Equal(t, map[uuid.UUID]string{a: StatusClosed, b: StatusOpen}, gameStatuses(recs))
}

func TestActionRows(t *testing.T) {
	gameID, actor := uuid.New(), uuid.New()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recs := []models.GameActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorUserID: actor, ActionType: "submit_selection", ActionPayload: map[string]any{"cards": []string{"a"}}, Timestamp: ts.UnixMilli()},
		{GameID: gameID, ActionIndex: 2, ActionType: "round_skipped", Timestamp: ts.UnixMilli()},
	}

	rows, err := actionRows(recs)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(actionColumns))

	assert.Equal(t, actor, rows[0][2])
	assert.JSONEq(t, `{"cards":["a"]}`, string(rows[0][4].([]byte)))
	assert.Equal(t, ts, rows[0][5])

	assert.Nil(t, rows[1][2], "system actions have no actor")
	assert.JSONEq(t, `{}`, string(rows[1][4].([]byte)))
}

// TestSaveGameActions needs a scratch PostgreSQL, set DATABASE_TEST_URL to run it.
func TestSaveGameActions(t *testing.T) {
	url := os.Getenv("DATABASE_TEST_URL")
	if url == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, EnsureSchema(ctx, pool))

	gameID := uuid.New()
	store := NewActionStore(pool)
	require.NoError(t, store.SaveGameActions(ctx, []models.GameActionRecord{
		{GameID: gameID, ActionIndex: 1, ActionType: "player_join", Timestamp: time.Now().UnixMilli()},
		{GameID: gameID, ActionIndex: 2, ActionType: "game_destroyed", Timestamp: time.Now().UnixMilli()},
	}))

	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM games WHERE id = $1`, gameID).Scan(&status))
	assert.Equal(t, StatusClosed, status)

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_actions WHERE game_id = $1`, gameID).Scan(&n))
	assert.Equal(t, 2, n)
}
