// internal/models/card.go
package models

// PromptCard is the round's fill-in-the-blank card. Pick is how many candidate
// cards a player must submit to answer it.
type PromptCard struct {
	Text string `json:"text"`
	Pick int    `json:"pick"`
}

// CandidateCard is a hand card a player may submit as an answer.
type CandidateCard struct {
	Text string `json:"text"`
}
