package models

import "github.com/google/uuid"

// User is a connected transport session. The ID is issued per connection and
// stays stable for as long as the connection lives.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
