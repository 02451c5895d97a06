package equity

import (
	"context"
	rand "math/rand/v2"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pokerequity/internal/cardcode"
	"github.com/lox/pokerequity/internal/deck"
	"github.com/lox/pokerequity/internal/randutil"
)

// Algorithm selects which hand-evaluation backend RunKernel's trials use.
type Algorithm int

const (
	// CactusKev scores hands via the precomputed prime-product lookup
	// tables in internal/cardcode.
	CactusKev Algorithm = iota
	// Naive scores hands via direct rank/suit counting, bypassing the
	// lookup tables entirely. Slower; used to cross-check CactusKev and
	// as a dependency-free fallback.
	Naive
)

// Optimization is an opt-in performance toggle a caller can request in
// Request.Optimizations. Only Multithreading changes how Run executes;
// SIMD, PerfectHash and Prefetching are accepted and have no effect.
type Optimization int

const (
	Multithreading Optimization = iota
	SIMD
	PerfectHash
	Prefetching
)

// Request describes one range-equity job: a named hero range, a board,
// and the Monte Carlo budget to spend evaluating it.
type Request struct {
	Range         map[string][2]deck.Card
	Board         []deck.Card
	Opponents     int
	Simulations   int
	Algorithm     Algorithm
	Optimizations []Optimization
	NumWorkers    int
	Seed          int64
}

func (r Request) hasOptimization(o Optimization) bool {
	for _, got := range r.Optimizations {
		if got == o {
			return true
		}
	}
	return false
}

// Result is the outcome for one (hero hand, opponent label) pairing. It
// is the fine-grained output shape: a single hero hand produces one
// Result per distinct opponent starting-hand label encountered during its
// trials, never overwriting a previous label's bucket.
type Result struct {
	HeroName   string
	OppLabel   string
	Bucket     Bucket
	WinMethod  [10][10]int
	LossMethod [10][10]int
}

// HandSummary is the coarse-grained output shape: one row per hero hand,
// aggregating every opponent label's bucket together. Kept alongside
// Result for callers that only want the overall win rate per hand.
type HandSummary struct {
	HeroName   string
	Bucket     Bucket
	WinMethod  [10][10]int
	LossMethod [10][10]int
}

// telemetrySink is the subset of telemetry.Writer the orchestrator needs,
// kept as an interface here so equity has no import-time dependency on
// the telemetry package's mmap machinery.
type telemetrySink interface {
	UpdateProgress(handsProcessed uint64)
	Heartbeat()
	UpdateResult(slot int, name string, equity float64, wins, ties, losses, simulations uint32, winMethod [10][10]int) error
}

// Run drives the Monte Carlo kernel across every hero hand in
// req.Range, splitting req.Simulations evenly across hands (any
// remainder from integer division is discarded, not distributed — the
// simplest behavior that keeps every hand's trial count identical).
// Hands are driven in a fixed order (sorted hero name) so telemetry slot
// assignment and progress fractions are reproducible for a given Request.
// onProgress, if non-nil, is called after each hand completes with the
// overall fraction done and a name->equity snapshot of hands finished so
// far. tw, if non-nil, receives UPDATE_INTERVAL-throttled progress pushes.
func Run(ctx context.Context, req Request, onProgress func(frac float64, snapshot map[string]float64), tw telemetrySink) (map[string]*Result, map[string]*HandSummary, error) {
	if len(req.Range) == 0 {
		return nil, nil, cardcode.NewError(cardcode.InvalidInput, "range must contain at least one hero hand")
	}

	names := make([]string, 0, len(req.Range))
	for name := range req.Range {
		names = append(names, name)
	}
	sort.Strings(names)

	perHand := req.Simulations / len(names)

	tables := cardcode.Default()

	results := make(map[string]*Result)
	summaries := make(map[string]*HandSummary)
	snapshot := make(map[string]float64)

	recordHand := func(name string, kr *KernelResult) {
		summary := &HandSummary{HeroName: name}
		for label, b := range kr.Buckets {
			key := name + "|" + label
			results[key] = &Result{
				HeroName:   name,
				OppLabel:   label,
				Bucket:     *b,
				WinMethod:  kr.WinMethod,
				LossMethod: kr.LossMethod,
			}
			summary.Bucket.Wins += b.Wins
			summary.Bucket.Ties += b.Ties
			summary.Bucket.Losses += b.Losses
			summary.Bucket.Total += b.Total
		}
		summary.WinMethod = kr.WinMethod
		summary.LossMethod = kr.LossMethod
		summaries[name] = summary
		snapshot[name] = summary.Bucket.Equity()
	}

	publishHand := func(slot int, name string) {
		if tw == nil {
			return
		}
		summary := summaries[name]
		if summary == nil {
			return
		}
		_ = tw.UpdateResult(slot, name, summary.Bucket.Equity(),
			uint32(summary.Bucket.Wins), uint32(summary.Bucket.Ties), uint32(summary.Bucket.Losses), uint32(summary.Bucket.Total),
			summary.WinMethod)
	}

	// Under Multithreading several workers heartbeat at once; twMu keeps
	// their writes from interleaving inside the writer's sequence lock.
	var twMu sync.Mutex

	runOne := func(runCtx context.Context, index int, name string) (*KernelResult, error) {
		hero := req.Range[name]
		rng := randutil.New(req.Seed + int64(index))

		onBatch := func(done int) {
			if tw != nil {
				twMu.Lock()
				tw.Heartbeat()
				twMu.Unlock()
			}
		}

		if req.Algorithm == Naive {
			return runKernelNaive(runCtx, hero, req.Board, req.Opponents, perHand, rng, onBatch)
		}
		return RunKernel(runCtx, tables, hero, req.Board, req.Opponents, perHand, rng, onBatch)
	}

	if req.NumWorkers > 1 && req.hasOptimization(Multithreading) {
		type outcome struct {
			index int
			name  string
			kr    *KernelResult
			err   error
		}
		outcomes := make([]outcome, len(names))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(req.NumWorkers)
		for i, name := range names {
			i, name := i, name
			g.Go(func() error {
				kr, err := runOne(gctx, i, name)
				outcomes[i] = outcome{index: i, name: name, kr: kr, err: err}
				if err != nil && !cardcode.IsKind(err, cardcode.SimulationAborted) {
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		for i, name := range names {
			recordHand(name, outcomes[i].kr)
			publishHand(i, name)
			if tw != nil {
				tw.UpdateProgress(uint64(i + 1))
			}
			if onProgress != nil {
				onProgress(float64(i+1)/float64(len(names)), copySnapshot(snapshot))
			}
		}
		return results, summaries, nil
	}

	for i, name := range names {
		kr, err := runOne(ctx, i, name)
		if err != nil && !cardcode.IsKind(err, cardcode.SimulationAborted) {
			return results, summaries, err
		}
		recordHand(name, kr)
		publishHand(i, name)
		if tw != nil {
			tw.UpdateProgress(uint64(i + 1))
		}
		if onProgress != nil {
			onProgress(float64(i+1)/float64(len(names)), copySnapshot(snapshot))
		}
		if err != nil {
			return results, summaries, err
		}
	}

	return results, summaries, nil
}

func copySnapshot(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// runKernelNaive is RunKernel's NAIVE-algorithm twin: identical trial
// loop, evaluated with cardcode.EvaluateNaive5 instead of the lookup
// tables. Kept separate from RunKernel rather than branching inside it so
// the hot table-backed path stays free of the naive evaluator's extra
// indirection.
func runKernelNaive(ctx context.Context, hero [2]deck.Card, board []deck.Card, opponents int, trials int, rng *rand.Rand, onBatch func(done int)) (*KernelResult, error) {
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

		heroRank := bestNaive(hero[:], fullBoard)

		bestOppRank := bestNaive(oppHands[0][:], fullBoard)
		bestOppHand := oppHands[0]
		for _, h := range oppHands[1:] {
			r := bestNaive(h[:], fullBoard)
			if r < bestOppRank {
				bestOppRank = r
				bestOppHand = h
			}
		}

		label := ClassifyHole(bestOppHand)
		b := result.bucket(label)
		b.Total++

		heroCat, oppCat := heroRank.Category(), bestOppRank.Category()
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

// bestNaive runs the same best-of-C(n,5) search EvaluateBest does, using
// EvaluateNaive5 for the leaf comparisons.
func bestNaive(holeCards, boardCards []deck.Card) cardcode.Rank {
	cards := make([]cardcode.Packed, 0, len(holeCards)+len(boardCards))
	for _, c := range holeCards {
		cards = append(cards, cardcode.FromCard(c))
	}
	for _, c := range boardCards {
		cards = append(cards, cardcode.FromCard(c))
	}

	best := cardcode.Rank(cardcode.MaxHighCard + 1)
	n := len(cards)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			rest := make([]cardcode.Packed, 0, n-2)
			for i, c := range cards {
				if i == a || i == b {
					continue
				}
				rest = append(rest, c)
			}
			r := cardcode.EvaluateNaive5(rest[0], rest[1], rest[2], rest[3], rest[4])
			if r < best {
				best = r
			}
		}
	}
	return best
}
