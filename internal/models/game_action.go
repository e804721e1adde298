package models

import "github.com/google/uuid"

// GameActionRecord is one entry of a game's action history. Records are
// published to the historian queue and persisted for auditing only.
type GameActionRecord struct {
	GameID        uuid.UUID      `json:"game_id"`
	ActionIndex   int            `json:"action_index"`
	ActorUserID   uuid.UUID      `json:"actor_user_id"`
	ActionType    string         `json:"action_type"`
	ActionPayload map[string]any `json:"action_payload"`
	Timestamp     int64          `json:"timestamp"`
}
