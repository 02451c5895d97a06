package cardcode

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate5RoyalFlush(t *testing.T) {
	tables := Default()
	r := Evaluate5(tables,
		Encode(14, 0), Encode(13, 0), Encode(12, 0), Encode(11, 0), Encode(10, 0))
	assert.EqualValues(t, MaxRoyalFlush, r)
	assert.Equal(t, CategoryRoyalFlush, r.Category())
}

func TestEvaluate5FourOfAKind(t *testing.T) {
	tables := Default()
	r := Evaluate5(tables,
		Encode(14, 0), Encode(14, 1), Encode(14, 2), Encode(14, 3), Encode(2, 0))
	assert.Equal(t, CategoryQuads, r.Category())
}

func TestEvaluate5HighCard(t *testing.T) {
	tables := Default()
	r := Evaluate5(tables,
		Encode(2, 0), Encode(5, 1), Encode(9, 2), Encode(11, 3), Encode(13, 0))
	assert.Equal(t, CategoryHighCard, r.Category())
}

func TestEvaluate5WheelIsStraight(t *testing.T) {
	tables := Default()
	r := Evaluate5(tables,
		Encode(14, 0), Encode(2, 1), Encode(3, 2), Encode(4, 3), Encode(5, 0))
	assert.Equal(t, CategoryStraight, r.Category())
}

func TestEvaluate5FlushBeatsStraight(t *testing.T) {
	tables := Default()
	flush := Evaluate5(tables,
		Encode(2, 0), Encode(5, 0), Encode(9, 0), Encode(11, 0), Encode(13, 0))
	straight := Evaluate5(tables,
		Encode(9, 0), Encode(10, 1), Encode(11, 2), Encode(12, 3), Encode(13, 0))
	assert.Less(t, int(flush), int(straight), "flush should outrank straight")
}

func TestCategoryMonotoneNonIncreasing(t *testing.T) {
	prevCategory := CategoryRoyalFlush
	for rank := Rank(1); rank <= MaxHighCard; rank++ {
		cat := rank.Category()
		require.LessOrEqual(t, int(cat), int(prevCategory),
			"category should be non-increasing as rank grows: rank %d cat %v, previous cat %v",
			rank, cat, prevCategory)
		prevCategory = cat
	}
}

func TestEvaluateBestSevenCardsPicksBestFive(t *testing.T) {
	tables := Default()
	cards := []Packed{
		Encode(14, 0), Encode(13, 0), Encode(12, 0), Encode(11, 0), Encode(10, 0),
		Encode(2, 1), Encode(3, 2),
	}
	r := EvaluateBest(tables, cards)
	assert.EqualValues(t, MaxRoyalFlush, r)
}

func TestEvaluateBestAgreesWithEvaluate5For5Cards(t *testing.T) {
	tables := Default()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		cards := randomDistinctCards(rng, 5)
		want := Evaluate5(tables, cards[0], cards[1], cards[2], cards[3], cards[4])
		got := EvaluateBest(tables, cards)
		assert.Equal(t, want, got)
	}
}

func randomDistinctCards(rng *rand.Rand, n int) []Packed {
	seen := make(map[int]bool)
	out := make([]Packed, 0, n)
	for len(out) < n {
		rank := rng.Intn(13) + 2
		suit := rng.Intn(4)
		key := rank*4 + suit
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, Encode(rank, suit))
	}
	return out
}
