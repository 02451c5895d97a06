package equity

import (
	"context"
	rand "math/rand/v2"

	"github.com/lox/pokerequity/internal/cardcode"
	"github.com/lox/pokerequity/internal/deck"
)

// UpdateInterval is how many trials RunKernel batches between onBatch
// callbacks, mirroring the teacher's progress-reporting cadence in its
// simulator package.
const UpdateInterval = 1000

// Bucket accumulates trial outcomes for one hero hand against one
// opponent-label bucket (or, in HandSummary, against the whole field).
type Bucket struct {
	Wins   int
	Ties   int
	Losses int
	Total  int
}

// Equity returns the win-rate estimate counting ties as half a win.
func (b Bucket) Equity() float64 {
	if b.Total == 0 {
		return 0
	}
	return (float64(b.Wins) + float64(b.Ties)/2) / float64(b.Total)
}

// KernelResult is the output of a single hero hand's Monte Carlo run:
// outcome buckets keyed by the opponent's classified starting-hand label,
// plus the 10x10 hand-category matrices recording what beat what.
type KernelResult struct {
	Buckets    map[string]*Bucket
	WinMethod  [10][10]int // [heroCategory][opponentCategory]
	LossMethod [10][10]int
	Trials     int
}

func newKernelResult() *KernelResult {
	return &KernelResult{Buckets: make(map[string]*Bucket)}
}

func (r *KernelResult) bucket(label string) *Bucket {
	b, ok := r.Buckets[label]
	if !ok {
		b = &Bucket{}
		r.Buckets[label] = b
	}
	return b
}

// RunKernel runs trials Monte Carlo trials of hero's two hole cards
// against opponents random opponents on a (possibly partial) board,
// completing the board and sampling opponent hands without replacement
// on each trial. It calls onBatch every UpdateInterval trials with the
// number of trials completed so far, and returns early with the partial
// KernelResult and a SimulationAborted error if ctx is cancelled.
func RunKernel(ctx context.Context, tables *cardcode.Tables, hero [2]deck.Card, board []deck.Card, opponents int, trials int, rng *rand.Rand, onBatch func(done int)) (*KernelResult, error) {
	if len(board) > 5 {
		return nil, cardcode.NewError(cardcode.InvalidInput, "board has %d cards, max is 5", len(board))
	}
	if opponents < 1 {
		return nil, cardcode.NewError(cardcode.InvalidInput, "opponents must be >= 1, got %d", opponents)
	}

	result := newKernelResult()

	known := make([]deck.Card, 0, 2+len(board))
	known = append(known, hero[:]...)
	known = append(known, board...)

	rd, err := deck.NewRemainingDeck(known...)
	if err != nil {
		return result, cardcode.NewError(cardcode.InternalError, "build remaining deck: %w", err)
	}

	for t := 0; t < trials; t++ {
		if t%UpdateInterval == 0 {
			select {
			case <-ctx.Done():
				result.Trials = t
				if onBatch != nil {
					onBatch(t)
				}
				return result, cardcode.NewError(cardcode.SimulationAborted, "cancelled after %d trials: %w", t, ctx.Err())
			default:
			}
		}

		oppHands := make([][2]deck.Card, 0, opponents)
		dealt := true
		for i := 0; i < opponents; i++ {
			oppHand, ok := rd.SampleOpponentHand(rng)
			if !ok {
				dealt = false
				break
			}
			oppHands = append(oppHands, oppHand)
		}
		if !dealt {
			for _, h := range oppHands {
				rd.Release(h[:]...)
			}
			continue
		}

		boardNeeded := 5 - len(board)
		completion, ok := rd.SampleBoardCompletion(boardNeeded, rng)
		if !ok {
			for _, h := range oppHands {
				rd.Release(h[:]...)
			}
			continue
		}

		fullBoard := make([]deck.Card, 0, 5)
		fullBoard = append(fullBoard, board...)
		fullBoard = append(fullBoard, completion...)

		heroRank := cardcode.EvaluateBest(tables, packAll(hero[:], fullBoard))

		// The strongest opponent hand (lowest rank value) is the one hero
		// is actually up against, same as senzee's simulate_hand_senzee
		// taking min(opp_ranks) and remembering its index.
		bestOppRank := cardcode.EvaluateBest(tables, packAll(oppHands[0][:], fullBoard))
		bestOppHand := oppHands[0]
		for _, h := range oppHands[1:] {
			r := cardcode.EvaluateBest(tables, packAll(h[:], fullBoard))
			if r < bestOppRank {
				bestOppRank = r
				bestOppHand = h
			}
		}

		label := ClassifyHole(bestOppHand)
		b := result.bucket(label)
		b.Total++

		heroCat := heroRank.Category()
		oppCat := bestOppRank.Category()

		switch {
		case heroRank < bestOppRank:
			b.Wins++
			result.WinMethod[heroCat][oppCat]++
		case heroRank > bestOppRank:
			b.Losses++
			result.LossMethod[oppCat][heroCat]++
		default:
			b.Ties++
		}

		for _, h := range oppHands {
			rd.Release(h[:]...)
		}
		rd.Release(completion...)

		result.Trials++

		if (t+1)%UpdateInterval == 0 && onBatch != nil {
			onBatch(t + 1)
		}
	}

	if onBatch != nil && trials%UpdateInterval != 0 {
		onBatch(result.Trials)
	}

	return result, nil
}

func packAll(holeCards, boardCards []deck.Card) []cardcode.Packed {
	out := make([]cardcode.Packed, 0, len(holeCards)+len(boardCards))
	for _, c := range holeCards {
		out = append(out, cardcode.FromCard(c))
	}
	for _, c := range boardCards {
		out = append(out, cardcode.FromCard(c))
	}
	return out
}
