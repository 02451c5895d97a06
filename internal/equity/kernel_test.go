package equity

import (
	"context"
	rand "math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerequity/internal/cardcode"
	"github.com/lox/pokerequity/internal/deck"
)

func TestRunKernelAAvsRandomWinsMajority(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Ace, Suit: deck.Spades}, {Rank: deck.Ace, Suit: deck.Hearts}}
	rng := rand.New(rand.NewPCG(1, 1))

	result, err := RunKernel(context.Background(), tables, hero, nil, 1, 2000, rng, nil)
	require.NoError(t, err)

	var total Bucket
	for _, b := range result.Buckets {
		total.Wins += b.Wins
		total.Ties += b.Ties
		total.Losses += b.Losses
		total.Total += b.Total
	}
	assert.Greater(t, total.Total, 0)
	assert.Greater(t, total.Equity(), 0.7, "pocket aces should win big against a random hand")
}

func TestRunKernelOnBatchCalledAtUpdateInterval(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.King, Suit: deck.Spades}, {Rank: deck.King, Suit: deck.Hearts}}
	rng := rand.New(rand.NewPCG(2, 2))

	var calls []int
	_, err := RunKernel(context.Background(), tables, hero, nil, 1, 2500, rng, func(done int) {
		calls = append(calls, done)
	})
	require.NoError(t, err)
	require.NotEmpty(t, calls)
	assert.Equal(t, 1000, calls[0])
	assert.Equal(t, 2500, calls[len(calls)-1])
}

func TestRunKernelHonorsCancellation(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Two, Suit: deck.Spades}, {Rank: deck.Seven, Suit: deck.Hearts}}
	rng := rand.New(rand.NewPCG(3, 3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunKernel(ctx, tables, hero, nil, 1, 100000, rng, nil)
	require.Error(t, err)
	assert.True(t, cardcode.IsKind(err, cardcode.SimulationAborted))
	assert.Equal(t, 0, result.Trials)
}

func TestRunKernelRejectsOversizedBoard(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Two, Suit: deck.Spades}, {Rank: deck.Seven, Suit: deck.Hearts}}
	board := make([]deck.Card, 6)
	_, err := RunKernel(context.Background(), tables, hero, board, 1, 10, rand.New(rand.NewPCG(1, 1)), nil)
	assert.True(t, cardcode.IsKind(err, cardcode.InvalidInput))
}

func TestRunKernelLabelsSumToTotalTrials(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Queen, Suit: deck.Diamonds}, {Rank: deck.Jack, Suit: deck.Diamonds}}
	rng := rand.New(rand.NewPCG(4, 4))

	result, err := RunKernel(context.Background(), tables, hero, nil, 1, 1500, rng, nil)
	require.NoError(t, err)

	sum := 0
	for _, b := range result.Buckets {
		sum += b.Total
	}
	assert.Equal(t, result.Trials, sum)
}

func TestRunKernelCompletesQuickly(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Nine, Suit: deck.Clubs}, {Rank: deck.Eight, Suit: deck.Clubs}}
	rng := rand.New(rand.NewPCG(5, 5))

	start := time.Now()
	_, err := RunKernel(context.Background(), tables, hero, nil, 2, 3000, rng, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunKernelLabelsSumToTotalTrialsMultipleOpponents(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Queen, Suit: deck.Diamonds}, {Rank: deck.Jack, Suit: deck.Diamonds}}
	rng := rand.New(rand.NewPCG(6, 6))

	result, err := RunKernel(context.Background(), tables, hero, nil, 3, 1500, rng, nil)
	require.NoError(t, err)

	sum := 0
	for _, b := range result.Buckets {
		sum += b.Total
	}
	assert.Equal(t, result.Trials, sum)
}

// TestRunKernelEquityDecreasesWithMoreOpponents locks in the fix for the
// opponents parameter being ignored: dealing more opponent hands per
// trial (rather than always simulating heads-up) must measurably lower
// a strong hero hand's equity.
func TestRunKernelEquityDecreasesWithMoreOpponents(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Ace, Suit: deck.Spades}, {Rank: deck.Ace, Suit: deck.Hearts}}

	headsUp, err := RunKernel(context.Background(), tables, hero, nil, 1, 4000, rand.New(rand.NewPCG(7, 7)), nil)
	require.NoError(t, err)

	crowded, err := RunKernel(context.Background(), tables, hero, nil, 5, 4000, rand.New(rand.NewPCG(7, 7)), nil)
	require.NoError(t, err)

	var headsUpTotal, crowdedTotal Bucket
	for _, b := range headsUp.Buckets {
		headsUpTotal.Wins += b.Wins
		headsUpTotal.Ties += b.Ties
		headsUpTotal.Losses += b.Losses
		headsUpTotal.Total += b.Total
	}
	for _, b := range crowded.Buckets {
		crowdedTotal.Wins += b.Wins
		crowdedTotal.Ties += b.Ties
		crowdedTotal.Losses += b.Losses
		crowdedTotal.Total += b.Total
	}

	assert.Greater(t, headsUpTotal.Equity(), crowdedTotal.Equity(),
		"pocket aces should win less often against 5 opponents than against 1")
}

// TestRunKernelLossMethodIsTransposedRelativeToWinMethod replays the exact
// card draws RunKernel makes for a single heads-up trial against an
// independently built RemainingDeck, and checks the loss matrix records
// [opponentCategory][heroCategory] rather than [heroCategory][opponentCategory].
func TestRunKernelLossMethodIsTransposedRelativeToWinMethod(t *testing.T) {
	tables := cardcode.Default()
	hero := [2]deck.Card{{Rank: deck.Seven, Suit: deck.Clubs}, {Rank: deck.Two, Suit: deck.Diamonds}}

	seed1, seed2 := uint64(99), uint64(99)

	result, err := RunKernel(context.Background(), tables, hero, nil, 1, 1, rand.New(rand.NewPCG(seed1, seed2)), nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.Trials)

	rd, err := deck.NewRemainingDeck(hero[:]...)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(seed1, seed2))

	oppHand, ok := rd.SampleOpponentHand(rng)
	require.True(t, ok)
	completion, ok := rd.SampleBoardCompletion(5, rng)
	require.True(t, ok)

	heroRank := cardcode.EvaluateBest(tables, packAll(hero[:], completion))
	oppRank := cardcode.EvaluateBest(tables, packAll(oppHand[:], completion))
	require.NotEqual(t, heroRank, oppRank, "test needs a decisive trial, reroll the seed if this fires")

	heroCat, oppCat := heroRank.Category(), oppRank.Category()

	if heroRank < oppRank {
		assert.Equal(t, 1, result.WinMethod[heroCat][oppCat])
		assert.Equal(t, 0, result.LossMethod[oppCat][heroCat])
	} else {
		assert.Equal(t, 1, result.LossMethod[oppCat][heroCat])
		assert.Equal(t, 0, result.WinMethod[heroCat][oppCat])
	}
}
