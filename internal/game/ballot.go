package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// BallotEntry is one player's submission as the judge sees it. The token is
// the only handle on the entry and carries no information about its owner.
type BallotEntry struct {
	Token string   `json:"token"`
	Cards []string `json:"cards"`
}

// ballotBox holds the ballots of a single voting phase together with the
// server-side reverse map from token to player.
type ballotBox struct {
	entries []BallotEntry
	owners  map[string]uuid.UUID
}

// newBallotToken mints an opaque random token. uuid.NewRandom reads from
// crypto/rand, so tokens cannot be derived from player ids.
func newBallotToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("mint ballot token: %w", err)
	}
	return id.String(), nil
}

// newBallotBox builds a ballot for every player with a selection and shuffles
// the entries so their order says nothing about the roster order.
func newBallotBox(players []*Player, rng *rand.Rand) (*ballotBox, error) {
	box := &ballotBox{
		entries: make([]BallotEntry, 0, len(players)),
		owners:  make(map[string]uuid.UUID, len(players)),
	}
	for _, p := range players {
		if len(p.Selection) == 0 {
			continue
		}
		token, err := newBallotToken()
		if err != nil {
			return nil, err
		}
		// the token -> player map must stay injective
		for {
			if _, taken := box.owners[token]; !taken {
				break
			}
			if token, err = newBallotToken(); err != nil {
				return nil, err
			}
		}
		cards := make([]string, len(p.Selection))
		copy(cards, p.Selection)
		box.owners[token] = p.ID
		box.entries = append(box.entries, BallotEntry{Token: token, Cards: cards})
	}
	Shuffle(rng, box.entries)
	return box, nil
}

// owner resolves a token to the player that submitted the entry.
func (b *ballotBox) owner(token string) (uuid.UUID, bool) {
	if b == nil {
		return uuid.Nil, false
	}
	id, ok := b.owners[token]
	return id, ok
}

// Entries returns a copy of the shuffled ballot list.
func (b *ballotBox) Entries() []BallotEntry {
	if b == nil {
		return nil
	}
	out := make([]BallotEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *ballotBox) len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
