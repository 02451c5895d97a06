package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// CardIndex maps a card to a stable bit position 0..51: (rank-2)*4 + suit.
func CardIndex(c Card) int {
	return int(c.Rank-Two)*4 + int(c.Suit)
}

// CardFromIndex is the inverse of CardIndex.
func CardFromIndex(i int) Card {
	return Card{Rank: Two + Rank(i/4), Suit: Suit(i % 4)}
}

// CardSet is a 52-bit set of cards, one bit per CardIndex position.
type CardSet uint64

func (cs *CardSet) add(c Card)          { *cs |= 1 << uint(CardIndex(c)) }
func (cs CardSet) has(c Card) bool      { return cs&(1<<uint(CardIndex(c))) != 0 }
func (cs CardSet) count() int           { return popcount64(uint64(cs)) }
func popcount64(v uint64) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}

// RemainingDeck tracks which of the 52 cards have not yet been dealt, so
// board completions and opponent hands can be sampled without replacement.
// Each draw copies the undrawn cards into a fresh slice and partially
// shuffles that copy.
type RemainingDeck struct {
	used      CardSet
	remaining []Card // lazily rebuilt index of undrawn cards
	dirty     bool
}

// NewRemainingDeck returns a deck with the given cards already marked
// used. It returns an error if any card appears more than once.
func NewRemainingDeck(known ...Card) (*RemainingDeck, error) {
	rd := &RemainingDeck{dirty: true}
	for _, c := range known {
		if rd.used.has(c) {
			return nil, fmt.Errorf("duplicate card %s in known set", c)
		}
		rd.used.add(c)
	}
	return rd, nil
}

// Remove marks a card as used. It returns an error if the card was
// already used.
func (rd *RemainingDeck) Remove(c Card) error {
	if rd.used.has(c) {
		return fmt.Errorf("card %s already used", c)
	}
	rd.used.add(c)
	rd.dirty = true
	return nil
}

// Count returns how many of the 52 cards remain undrawn.
func (rd *RemainingDeck) Count() int {
	return 52 - rd.used.count()
}

func (rd *RemainingDeck) rebuild() {
	if !rd.dirty {
		return
	}
	rd.remaining = rd.remaining[:0]
	for i := 0; i < 52; i++ {
		c := CardFromIndex(i)
		if !rd.used.has(c) {
			rd.remaining = append(rd.remaining, c)
		}
	}
	rd.dirty = false
}

// SampleBoardCompletion draws n cards from the remaining deck without
// replacement, marking them used, and returns them. ok is false if fewer
// than n cards remain, in which case the deck is left unmodified.
func (rd *RemainingDeck) SampleBoardCompletion(n int, rng *rand.Rand) (cards []Card, ok bool) {
	rd.rebuild()
	if n > len(rd.remaining) {
		return nil, false
	}

	drawn := make([]Card, n)
	pool := append([]Card(nil), rd.remaining...)
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		drawn[i] = pool[i]
	}

	for _, c := range drawn {
		rd.used.add(c)
	}
	rd.dirty = true
	return drawn, true
}

// SampleOpponentHand draws a two-card starting hand from the remaining
// deck, marking both cards used. ok is false if fewer than two cards
// remain.
func (rd *RemainingDeck) SampleOpponentHand(rng *rand.Rand) (hand [2]Card, ok bool) {
	cards, ok := rd.SampleBoardCompletion(2, rng)
	if !ok {
		return [2]Card{}, false
	}
	return [2]Card{cards[0], cards[1]}, true
}

// Release marks previously-drawn cards as available again. Used by the
// simulation kernel to return a trial's board/opponent cards to the deck
// before the next trial.
func (rd *RemainingDeck) Release(cards ...Card) {
	for _, c := range cards {
		rd.used &^= 1 << uint(CardIndex(c))
	}
	rd.dirty = true
}
