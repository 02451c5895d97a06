// Package equity runs Monte Carlo range-vs-range equity simulations and
// aggregates the results into win/tie/loss buckets and hand-category
// matrices.
package equity

import "github.com/lox/pokerequity/internal/deck"

// ClassifyHole returns the canonical two-or-three-character starting-hand
// label for a hole-card pair: "AA" for pocket pairs, "AKs" for suited
// non-pairs, "AKo" for offsuit non-pairs — always ranked high card first.
// This is the same notation the range percentile table in
// internal/deck/rankings.go keys on.
func ClassifyHole(cards [2]deck.Card) string {
	hi, lo := cards[0], cards[1]
	if lo.Rank > hi.Rank {
		hi, lo = lo, hi
	}

	if hi.Rank == lo.Rank {
		return hi.Rank.String() + lo.Rank.String()
	}

	suited := "o"
	if hi.Suit == lo.Suit {
		suited = "s"
	}
	return hi.Rank.String() + lo.Rank.String() + suited
}
