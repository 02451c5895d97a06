package cardcode

import "sync"

// Rank boundaries, mirroring the reference evaluator's LookupTable constants.
// Ranks run 1 (Royal Flush) through 7462 (7-high); lower is stronger.
const (
	MaxRoyalFlush    = 1
	MaxStraightFlush = 10
	MaxFourOfAKind   = 166
	MaxFullHouse     = 322
	MaxFlush         = 1599
	MaxStraight      = 1609
	MaxThreeOfAKind  = 2467
	MaxTwoPair       = 3325
	MaxPair          = 6185
	MaxHighCard      = 7462
)

// straightFlushPatterns lists the 10 straight rank-bit patterns in
// descending order of strength: royal first, the wheel (5-4-3-2-A) last.
var straightFlushPatterns = [10]uint32{
	0x1F00, // A-K-Q-J-T
	0xF80,  // K-Q-J-T-9
	0x7C0,  // Q-J-T-9-8
	0x3E0,  // J-T-9-8-7
	0x1F0,  // T-9-8-7-6
	0xF8,   // 9-8-7-6-5
	0x7C,   // 8-7-6-5-4
	0x3E,   // 7-6-5-4-3
	0x1F,   // 6-5-4-3-2
	0x100F, // 5-4-3-2-A (wheel)
}

// Tables holds the two Cactus-Kev prime-product lookup maps.
type Tables struct {
	Flush    map[int]int16 // prime product -> rank, for suited hands
	Unsuited map[int]int16 // prime product -> rank, for non-flush hands
}

// BuildTables constructs both lookup tables from scratch. It is
// deterministic and position-independent: the same ranks fall out of the
// same prime products on every call, which is what lets Default() cache a
// single instance and lets CompressedTables re-derive an identical index.
func BuildTables() *Tables {
	t := &Tables{
		Flush:    make(map[int]int16, 1287),
		Unsuited: make(map[int]int16, 6175),
	}
	t.buildFlushes()
	t.buildFourOfAKind()
	t.buildFullHouse()
	t.buildStraights()
	t.buildThreeOfAKind()
	t.buildTwoPair()
	t.buildOnePair()
	t.buildHighCard()
	return t
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
)

// Default returns the process-wide Tables instance, building it on first
// use behind a sync.Once. The lookup tables are immutable once built and
// safe to share across goroutines without further synchronisation.
func Default() *Tables {
	defaultOnce.Do(func() {
		defaultTables = BuildTables()
	})
	return defaultTables
}

func (t *Tables) buildFlushes() {
	rank := int16(1)
	for _, sf := range straightFlushPatterns {
		t.Flush[primeProductFromRankBits(sf)] = rank
		rank++
	}

	rank = MaxFullHouse + 1
	eachFiveRankCombo(func(bits uint32) {
		product := primeProductFromRankBits(bits)
		if _, exists := t.Flush[product]; !exists {
			t.Flush[product] = rank
			rank++
		}
	})
}

func (t *Tables) buildFourOfAKind() {
	rank := int16(MaxStraightFlush + 1)
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			if i == j {
				continue
			}
			product := pow(PRIMES[i], 4) * PRIMES[j]
			t.Unsuited[product] = rank
			rank++
		}
	}
}

func (t *Tables) buildFullHouse() {
	rank := int16(MaxFourOfAKind + 1)
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			if i == j {
				continue
			}
			product := pow(PRIMES[i], 3) * pow(PRIMES[j], 2)
			t.Unsuited[product] = rank
			rank++
		}
	}
}

func (t *Tables) buildStraights() {
	rank := int16(MaxFlush + 1)
	for _, sf := range straightFlushPatterns {
		t.Unsuited[primeProductFromRankBits(sf)] = rank
		rank++
	}
}

func (t *Tables) buildThreeOfAKind() {
	rank := int16(MaxStraight + 1)
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			for k := j - 1; k >= 0; k-- {
				if i == j || i == k {
					continue
				}
				product := pow(PRIMES[i], 3) * PRIMES[j] * PRIMES[k]
				t.Unsuited[product] = rank
				rank++
			}
		}
	}
}

func (t *Tables) buildTwoPair() {
	rank := int16(MaxThreeOfAKind + 1)
	for i := 12; i >= 0; i-- {
		for j := i - 1; j >= 0; j-- {
			for k := 12; k >= 0; k-- {
				if k == i || k == j {
					continue
				}
				product := pow(PRIMES[i], 2) * pow(PRIMES[j], 2) * PRIMES[k]
				t.Unsuited[product] = rank
				rank++
			}
		}
	}
}

func (t *Tables) buildOnePair() {
	rank := int16(MaxTwoPair + 1)
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			for k := j - 1; k >= 0; k-- {
				for l := k - 1; l >= 0; l-- {
					if i == j || i == k || i == l {
						continue
					}
					product := pow(PRIMES[i], 2) * PRIMES[j] * PRIMES[k] * PRIMES[l]
					t.Unsuited[product] = rank
					rank++
				}
			}
		}
	}
}

func (t *Tables) buildHighCard() {
	rank := int16(MaxPair + 1)
	eachFiveRankCombo(func(bits uint32) {
		product := primeProductFromRankBits(bits)
		if _, exists := t.Unsuited[product]; !exists {
			t.Unsuited[product] = rank
			rank++
		}
	})
}

// eachFiveRankCombo calls yield once per 5-rank subset of {0..12}, in
// descending-lexicographic order (A-K-Q-J-T first, 6-5-4-3-2 last). This mirrors the reference
// implementation's itertools.combinations(reversed(range(13)), 5) order,
// which the table rank assignment depends on for bit-exact tie-breaking.
func eachFiveRankCombo(yield func(bits uint32)) {
	var combo [5]int
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == 5 {
			var bits uint32
			for _, idx := range combo {
				bits |= 1 << uint(idx)
			}
			yield(bits)
			return
		}
		floor := 4 - depth
		for v := start; v >= floor; v-- {
			combo[depth] = v
			rec(v-1, depth+1)
		}
	}
	rec(12, 0)
}

func pow(base, exp int) int {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
