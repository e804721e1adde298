// Package deck loads the card catalog shared read-only by every game.
package deck

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jason-s-yu/blanks/internal/models"
)

//go:embed data/base.json
var baseCollectionJSON []byte

// ErrDuplicateDeck is returned when two collections define the same deck name.
var ErrDuplicateDeck = errors.New("duplicate deck name")

type collectionJSON struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description"`
	Decks       []deckJSON `json:"decks"`
}

type deckJSON struct {
	Name           string              `json:"name"`
	DisplayName    string              `json:"displayName"`
	Order          int                 `json:"order"`
	PromptCards    []models.PromptCard `json:"promptCards"`
	CandidateCards []string            `json:"candidateCards"`
}

// Catalog is an immutable set of deck collections indexed by deck name.
type Catalog struct {
	collections []*models.DeckCollection
	decks       map[string]*models.Deck
}

// New indexes the given collections. Deck names must be unique across all of
// them.
func New(collections ...*models.DeckCollection) (*Catalog, error) {
	c := &Catalog{decks: make(map[string]*models.Deck)}
	for _, col := range collections {
		for _, d := range col.Decks {
			if _, exists := c.decks[d.Name]; exists {
				return nil, fmt.Errorf("%w: %q in collection %q", ErrDuplicateDeck, d.Name, col.Name)
			}
			c.decks[d.Name] = d
		}
		c.collections = append(c.collections, col)
	}
	return c, nil
}

// Load builds the catalog from the embedded base collection plus every *.json
// file in dir. An empty dir loads only the embedded collection.
func Load(dir string) (*Catalog, error) {
	base, err := Parse(baseCollectionJSON)
	if err != nil {
		return nil, fmt.Errorf("decode embedded collection: %w", err)
	}
	collections := []*models.DeckCollection{base}

	if dir != "" {
		paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, path := range paths {
			raw, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			col, err := Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
			}
			collections = append(collections, col)
		}
	}
	return New(collections...)
}

// Parse decodes one collection file. Blank cards are dropped and a missing
// pick count defaults to one.
func Parse(raw []byte) (*models.DeckCollection, error) {
	var payload collectionJSON
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, errors.New("collection name is required")
	}
	col := &models.DeckCollection{
		Name:        name,
		DisplayName: displayName(payload.DisplayName, name),
		Description: strings.TrimSpace(payload.Description),
	}

	for _, rawDeck := range payload.Decks {
		deckName := strings.TrimSpace(rawDeck.Name)
		if deckName == "" {
			return nil, fmt.Errorf("collection %q has a deck without a name", name)
		}
		d := &models.Deck{
			Name:        deckName,
			DisplayName: displayName(rawDeck.DisplayName, deckName),
			Order:       rawDeck.Order,
		}
		for _, p := range rawDeck.PromptCards {
			text := strings.TrimSpace(p.Text)
			if text == "" {
				continue
			}
			if p.Pick < 1 {
				p.Pick = 1
			}
			d.PromptCards = append(d.PromptCards, models.PromptCard{Text: text, Pick: p.Pick})
		}
		for _, text := range rawDeck.CandidateCards {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			d.CandidateCards = append(d.CandidateCards, models.CandidateCard{Text: text})
		}
		col.Decks = append(col.Decks, d)
	}
	sort.SliceStable(col.Decks, func(i, j int) bool {
		return col.Decks[i].Order < col.Decks[j].Order
	})
	return col, nil
}

func displayName(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// Get returns the deck called name.
func (c *Catalog) Get(name string) (*models.Deck, bool) {
	d, ok := c.decks[name]
	return d, ok
}

// Decks summarizes every deck, ordered by collection then deck order.
func (c *Catalog) Decks() []models.DeckInfo {
	out := make([]models.DeckInfo, 0, len(c.decks))
	for _, col := range c.Collections() {
		out = append(out, col.Decks...)
	}
	return out
}

// Collections summarizes every collection in load order.
func (c *Catalog) Collections() []models.DeckCollectionInfo {
	out := make([]models.DeckCollectionInfo, 0, len(c.collections))
	for _, col := range c.collections {
		out = append(out, col.Info())
	}
	return out
}
