// Package equityjob provides the thin glue a job-scheduling layer needs
// around internal/equity: request validation and lifecycle status, kept
// deliberately small since the HTTP/job-lifecycle surface itself is out
// of scope here. It exists so equity.Run's contract is exercised the way
// a real caller would drive it, not as a standalone service.
package equityjob

import (
	"github.com/lox/pokerequity/internal/cardcode"
	"github.com/lox/pokerequity/internal/deck"
	"github.com/lox/pokerequity/internal/equity"
)

// Algorithm mirrors equity.Algorithm for callers that only import this
// package.
type Algorithm int

const (
	CactusKev Algorithm = iota
	Naive
)

// ToEquity converts to the equity package's own Algorithm type.
func (a Algorithm) ToEquity() equity.Algorithm {
	if a == Naive {
		return equity.Naive
	}
	return equity.CactusKev
}

// Optimization mirrors equity.Optimization.
type Optimization int

const (
	Multithreading Optimization = iota
	SIMD
	PerfectHash
	Prefetching
)

// ToEquity converts to the equity package's own Optimization type.
func (o Optimization) ToEquity() equity.Optimization {
	switch o {
	case SIMD:
		return equity.SIMD
	case PerfectHash:
		return equity.PerfectHash
	case Prefetching:
		return equity.Prefetching
	default:
		return equity.Multithreading
	}
}

// JobStatus mirrors a job's external lifecycle state.
type JobStatus int

const (
	Pending JobStatus = iota
	Running
	Completed
	Failed
)

func (s JobStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	maxOpponents   = 9
	maxSimulations = 50_000_000
	minSimulations = 1
)

// ValidateRequest runs the bit-exact pre-flight checks a caller must pass
// before a telemetry region is even created: board size, opponent count,
// simulation budget, card rank and suit ranges, and no duplicate cards
// across the hero range and board. It does not touch the filesystem or
// spawn any goroutines.
func ValidateRequest(req equity.Request) error {
	if len(req.Range) == 0 {
		return cardcode.NewError(cardcode.InvalidInput, "range must contain at least one hero hand")
	}

	if len(req.Board) > 5 {
		return cardcode.NewError(cardcode.InvalidInput, "board has %d cards, max is 5", len(req.Board))
	}

	if req.Opponents < 1 || req.Opponents > maxOpponents {
		return cardcode.NewError(cardcode.InvalidInput, "opponents must be in [1,%d], got %d", maxOpponents, req.Opponents)
	}

	if req.Simulations < minSimulations || req.Simulations > maxSimulations {
		return cardcode.NewError(cardcode.InvalidInput, "simulations must be in [%d,%d], got %d", minSimulations, maxSimulations, req.Simulations)
	}

	if req.Simulations < len(req.Range) {
		return cardcode.NewError(cardcode.InvalidInput, "simulations (%d) must be at least the number of hero hands (%d)", req.Simulations, len(req.Range))
	}

	validCard := func(c deck.Card) bool {
		return c.Rank >= deck.Two && c.Rank <= deck.Ace && c.Suit >= deck.Spades && c.Suit <= deck.Clubs
	}
	for _, c := range req.Board {
		if !validCard(c) {
			return cardcode.NewError(cardcode.InvalidInput, "board card has rank %d, suit %d; want rank 2..14, suit 0..3", c.Rank, c.Suit)
		}
	}
	for name, hole := range req.Range {
		for _, c := range hole {
			if !validCard(c) {
				return cardcode.NewError(cardcode.InvalidInput, "hand %s has a card with rank %d, suit %d; want rank 2..14, suit 0..3", name, c.Rank, c.Suit)
			}
		}
	}

	boardSeen := make(map[deck.Card]bool, len(req.Board))
	for _, c := range req.Board {
		if boardSeen[c] {
			return cardcode.NewError(cardcode.InvalidInput, "board card %s appears twice", c)
		}
		boardSeen[c] = true
	}

	// Each hero hand is an independent scenario, so hands are only
	// checked for duplicates against the shared board, never against
	// each other — two hero hands are allowed to use the same card since
	// they are never dealt into the same trial.
	for name, hole := range req.Range {
		if hole[0] == hole[1] {
			return cardcode.NewError(cardcode.InvalidInput, "hand %s has duplicate hole cards %s", name, hole[0])
		}
		if boardSeen[hole[0]] || boardSeen[hole[1]] {
			return cardcode.NewError(cardcode.InvalidInput, "hand %s shares a card with the board", name)
		}
	}

	return nil
}
