// internal/database/game_actions.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/blanks/internal/models"
)

// Game row statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

var actionColumns = []string{"game_id", "action_index", "actor_user_id", "action_type", "action_payload", "created_at"}

// ActionStore persists game action history.
type ActionStore struct {
	pool *pgxpool.Pool
}

// NewActionStore wraps pool.
func NewActionStore(pool *pgxpool.Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// SaveGameActions writes a batch in one transaction: the games rows are
// upserted first, then the actions are copied in.
func (s *ActionStore) SaveGameActions(ctx context.Context, recs []models.GameActionRecord) error {
	if len(recs) == 0 {
		return nil
	}
	rows, err := actionRows(recs)
	if err != nil {
		return err
	}

	err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for gameID, status := range gameStatuses(recs) {
			q := `
				INSERT INTO games (id, status)
				VALUES ($1, $2)
				ON CONFLICT (id) DO UPDATE SET status = $2,
					end_time = CASE WHEN $2 = 'closed' THEN NOW() ELSE games.end_time END
			`
			if _, e := tx.Exec(ctx, q, gameID, status); e != nil {
				return fmt.Errorf("upsert game %s: %w", gameID, e)
			}
		}
		if _, e := tx.CopyFrom(ctx, pgx.Identifier{"game_actions"}, actionColumns, pgx.CopyFromRows(rows)); e != nil {
			return fmt.Errorf("copy game actions: %w", e)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx save game actions: %w", err)
	}
	return nil
}

// gameStatuses returns the status each game in the batch ends up with.
func gameStatuses(recs []models.GameActionRecord) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string)
	for _, rec := range recs {
		if rec.ActionType == "game_destroyed" {
			out[rec.GameID] = StatusClosed
			continue
		}
		if _, seen := out[rec.GameID]; !seen {
			out[rec.GameID] = StatusOpen
		}
	}
	return out
}

// actionRows converts records into CopyFrom rows. A nil actor is stored as NULL.
func actionRows(recs []models.GameActionRecord) ([][]any, error) {
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		payload := rec.ActionPayload
		if payload == nil {
			payload = map[string]any{}
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload of action %d: %w", rec.ActionIndex, err)
		}
		var actor any
		if rec.ActorUserID != uuid.Nil {
			actor = rec.ActorUserID
		}
		rows = append(rows, []any{
			rec.GameID,
			rec.ActionIndex,
			actor,
			rec.ActionType,
			data,
			time.UnixMilli(rec.Timestamp).UTC(),
		})
	}
	return rows, nil
}
