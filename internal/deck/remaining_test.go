package deck

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemainingDeckRejectsDuplicates(t *testing.T) {
	ace := Card{Rank: Ace, Suit: Spades}
	_, err := NewRemainingDeck(ace, ace)
	require.Error(t, err)
}

func TestNewRemainingDeckCount(t *testing.T) {
	rd, err := NewRemainingDeck(Card{Rank: Ace, Suit: Spades}, Card{Rank: King, Suit: Hearts})
	require.NoError(t, err)
	assert.Equal(t, 50, rd.Count())
}

func TestSampleBoardCompletionNoOverlap(t *testing.T) {
	known := []Card{{Rank: Ace, Suit: Spades}, {Rank: King, Suit: Hearts}}
	rd, err := NewRemainingDeck(known...)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	drawn, ok := rd.SampleBoardCompletion(5, rng)
	require.True(t, ok)
	require.Len(t, drawn, 5)

	seen := map[Card]bool{known[0]: true, known[1]: true}
	for _, c := range drawn {
		assert.False(t, seen[c], "card %s drawn twice", c)
		seen[c] = true
	}
	assert.Equal(t, 45, rd.Count())
}

func TestSampleBoardCompletionExhaustion(t *testing.T) {
	rd, err := NewRemainingDeck()
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(1, 2))

	_, ok := rd.SampleBoardCompletion(53, rng)
	assert.False(t, ok)
	assert.Equal(t, 52, rd.Count(), "failed draw should not mutate the deck")
}

func TestSampleOpponentHandDrawsTwoDistinctCards(t *testing.T) {
	rd, err := NewRemainingDeck()
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(7, 8))

	hand, ok := rd.SampleOpponentHand(rng)
	require.True(t, ok)
	assert.NotEqual(t, hand[0], hand[1])
	assert.Equal(t, 50, rd.Count())
}

func TestReleaseReturnsCardsToPool(t *testing.T) {
	rd, err := NewRemainingDeck()
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(3, 4))

	drawn, ok := rd.SampleBoardCompletion(3, rng)
	require.True(t, ok)
	assert.Equal(t, 49, rd.Count())

	rd.Release(drawn...)
	assert.Equal(t, 52, rd.Count())
}

func TestCardIndexRoundTrip(t *testing.T) {
	for i := 0; i < 52; i++ {
		c := CardFromIndex(i)
		assert.Equal(t, i, CardIndex(c))
	}
}
