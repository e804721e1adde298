// internal/models/deck.go
package models

import "sort"

// Deck is immutable reference data shared by every game. Games only ever hold
// deck names and never mutate the card slices.
type Deck struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	// Order controls the position of the deck in client listings.
	Order          int             `json:"order"`
	PromptCards    []PromptCard    `json:"promptCards"`
	CandidateCards []CandidateCard `json:"candidateCards"`
}

// DeckCollection groups related decks for display purposes.
type DeckCollection struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Description string  `json:"description"`
	Decks       []*Deck `json:"decks"`
}

// DeckInfo is the card-less summary of a deck sent to clients.
type DeckInfo struct {
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Order          int    `json:"order"`
	PromptCount    int    `json:"promptCount"`
	CandidateCount int    `json:"candidateCount"`
}

// Info returns the summary of d.
func (d *Deck) Info() DeckInfo {
	return DeckInfo{
		Name:           d.Name,
		DisplayName:    d.DisplayName,
		Order:          d.Order,
		PromptCount:    len(d.PromptCards),
		CandidateCount: len(d.CandidateCards),
	}
}

// DeckCollectionInfo is the card-less summary of a collection.
type DeckCollectionInfo struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description"`
	Decks       []DeckInfo `json:"decks"`
}

// Info returns the summary of c with its decks in display order.
func (c *DeckCollection) Info() DeckCollectionInfo {
	info := DeckCollectionInfo{
		Name:        c.Name,
		DisplayName: c.DisplayName,
		Description: c.Description,
		Decks:       make([]DeckInfo, 0, len(c.Decks)),
	}
	for _, d := range c.Decks {
		info.Decks = append(info.Decks, d.Info())
	}
	sort.SliceStable(info.Decks, func(i, j int) bool {
		return info.Decks[i].Order < info.Decks[j].Order
	})
	return info
}
