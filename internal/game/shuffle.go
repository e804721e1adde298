package game

import "math/rand"

// Shuffle permutes s in place with an unbiased Fisher–Yates pass.
func Shuffle[T any](r *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// drawPool is a shuffled working copy of a game's cards. Cards are popped from
// the end; once the pool runs dry it is rebuilt from source and reshuffled, so
// deck selection changes are picked up on the next rebuild.
type drawPool[T any] struct {
	cards  []T
	source func() []T
	rng    *rand.Rand
}

func newDrawPool[T any](rng *rand.Rand, source func() []T) drawPool[T] {
	return drawPool[T]{rng: rng, source: source}
}

// draw pops the next card. ok is false only when the source itself is empty.
func (p *drawPool[T]) draw() (card T, ok bool) {
	if len(p.cards) == 0 {
		p.refill()
	}
	if len(p.cards) == 0 {
		return card, false
	}
	last := len(p.cards) - 1
	card = p.cards[last]
	p.cards = p.cards[:last]
	return card, true
}

func (p *drawPool[T]) refill() {
	src := p.source()
	p.cards = make([]T, len(src))
	copy(p.cards, src)
	Shuffle(p.rng, p.cards)
}

// reset drops the remaining cards so the next draw rebuilds the pool.
func (p *drawPool[T]) reset() {
	p.cards = nil
}

func (p *drawPool[T]) remaining() int {
	return len(p.cards)
}
