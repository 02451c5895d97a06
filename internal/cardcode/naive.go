package cardcode

import "sort"

// EvaluateNaive5 scores five packed cards without touching the precomputed
// lookup tables: it classifies the hand by direct rank/suit counting, then
// recovers the dense rank number by counting how many stronger hands of
// the same shape precede it — the same nested descending-rank order
// BuildTables uses to assign numbers, just walked on demand instead of
// precomputed. It is pure and holds no package-level state, so it is safe
// to call concurrently from every simulation worker; it is also the
// NAIVE algorithm option exposed to callers who want table-free scoring.
//
// EvaluateNaive5 and Evaluate5 agree on every five-card hand; see
// naive_test.go.
func EvaluateNaive5(c0, c1, c2, c3, c4 Packed) Rank {
	cards := [5]Packed{c0, c1, c2, c3, c4}

	counts := make(map[int]int, 5)
	var distinctRanks []int
	suited := true
	firstSuit := cards[0].SuitBit()
	for _, c := range cards {
		idx := c.RankIndex()
		if counts[idx] == 0 {
			distinctRanks = append(distinctRanks, idx)
		}
		counts[idx]++
		if c.SuitBit() != firstSuit {
			suited = false
		}
	}

	straightHigh, isStraight := straightHighCard(distinctRanks, len(distinctRanks) == 5)

	switch {
	case suited && isStraight:
		return Rank(MaxRoyalFlush + (12 - straightHigh))
	case hasCount(counts, 4):
		i, j := quadRanks(counts)
		return Rank(MaxStraightFlush + 1 + countBeforeFourOfAKind(i, j))
	case hasCount(counts, 3) && hasCount(counts, 2):
		i, j := fullHouseRanks(counts)
		return Rank(MaxFourOfAKind + 1 + countBeforeFullHouse(i, j))
	case suited:
		bits := bitsFromRanks(distinctRanks)
		return Rank(MaxFullHouse + 1 + countBeforeFlushOrHighCard(bits))
	case isStraight:
		return Rank(MaxFlush + 1 + (12 - straightHigh))
	case hasCount(counts, 3):
		i, j, k := tripRanks(counts)
		return Rank(MaxStraight + 1 + countBeforeThreeOfAKind(i, j, k))
	case countOfCount(counts, 2) == 2:
		i, j, k := twoPairRanks(counts)
		return Rank(MaxThreeOfAKind + 1 + countBeforeTwoPair(i, j, k))
	case hasCount(counts, 2):
		i, j, k, l := onePairRanks(counts)
		return Rank(MaxTwoPair + 1 + countBeforeOnePair(i, j, k, l))
	default:
		bits := bitsFromRanks(distinctRanks)
		return Rank(MaxPair + 1 + countBeforeFlushOrHighCard(bits))
	}
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func countOfCount(counts map[int]int, n int) int {
	total := 0
	for _, c := range counts {
		if c == n {
			total++
		}
	}
	return total
}

func ranksWithCount(counts map[int]int, n int) []int {
	var out []int
	for r, c := range counts {
		if c == n {
			out = append(out, r)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func quadRanks(counts map[int]int) (quad, kicker int) {
	return ranksWithCount(counts, 4)[0], ranksWithCount(counts, 1)[0]
}

func fullHouseRanks(counts map[int]int) (trip, pair int) {
	return ranksWithCount(counts, 3)[0], ranksWithCount(counts, 2)[0]
}

func tripRanks(counts map[int]int) (trip, k1, k2 int) {
	trip = ranksWithCount(counts, 3)[0]
	ks := ranksWithCount(counts, 1)
	return trip, ks[0], ks[1]
}

func twoPairRanks(counts map[int]int) (hi, lo, kicker int) {
	pairs := ranksWithCount(counts, 2)
	return pairs[0], pairs[1], ranksWithCount(counts, 1)[0]
}

func onePairRanks(counts map[int]int) (pair, k1, k2, k3 int) {
	pair = ranksWithCount(counts, 2)[0]
	ks := ranksWithCount(counts, 1)
	return pair, ks[0], ks[1], ks[2]
}

func bitsFromRanks(ranks []int) uint32 {
	var bits uint32
	for _, r := range ranks {
		bits |= 1 << uint(r)
	}
	return bits
}

// straightHighCard reports the high rank index of a straight across
// distinctRanks (which must number 5 for a straight to be possible),
// treating the wheel (A-2-3-4-5) as high card 3 (the five, index 3).
func straightHighCard(distinctRanks []int, fiveDistinct bool) (int, bool) {
	if !fiveDistinct {
		return 0, false
	}
	sorted := append([]int(nil), distinctRanks...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	if sorted[0] == 12 && sorted[1] == 3 && sorted[2] == 2 && sorted[3] == 1 && sorted[4] == 0 {
		return 3, true
	}
	for i := 1; i < 5; i++ {
		if sorted[i-1]-sorted[i] != 1 {
			return 0, false
		}
	}
	return sorted[0], true
}

// The count* helpers below return how many hands of the same shape sort
// ahead of the given one, using the identical descending nested-loop
// traversal BuildTables uses, so offsets computed here land on exactly
// the rank numbers the tables assign.

func countBeforeFourOfAKind(quad, kicker int) int {
	n := 0
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			if i == j {
				continue
			}
			if i == quad && j == kicker {
				return n
			}
			n++
		}
	}
	panic("cardcode: four-of-a-kind not found")
}

func countBeforeFullHouse(trip, pair int) int {
	n := 0
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			if i == j {
				continue
			}
			if i == trip && j == pair {
				return n
			}
			n++
		}
	}
	panic("cardcode: full house not found")
}

func countBeforeThreeOfAKind(trip, k1, k2 int) int {
	n := 0
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			for k := j - 1; k >= 0; k-- {
				if i == j || i == k {
					continue
				}
				if i == trip && j == k1 && k == k2 {
					return n
				}
				n++
			}
		}
	}
	panic("cardcode: three of a kind not found")
}

func countBeforeTwoPair(hi, lo, kicker int) int {
	n := 0
	for i := 12; i >= 0; i-- {
		for j := i - 1; j >= 0; j-- {
			for k := 12; k >= 0; k-- {
				if k == i || k == j {
					continue
				}
				if i == hi && j == lo && k == kicker {
					return n
				}
				n++
			}
		}
	}
	panic("cardcode: two pair not found")
}

func countBeforeOnePair(pair, k1, k2, k3 int) int {
	n := 0
	for i := 12; i >= 0; i-- {
		for j := 12; j >= 0; j-- {
			for k := j - 1; k >= 0; k-- {
				for l := k - 1; l >= 0; l-- {
					if i == j || i == k || i == l {
						continue
					}
					if i == pair && j == k1 && k == k2 && l == k3 {
						return n
					}
					n++
				}
			}
		}
	}
	panic("cardcode: one pair not found")
}

// countBeforeFlushOrHighCard counts the 5-rank combos (in the same
// descending-lexicographic order as eachFiveRankCombo) that precede bits
// and assign a rank number, shared by both the flush and high-card bands
// since both iterate the same 1287 rank combinations and both skip the
// 10 straight patterns, which take their rank numbers from the dedicated
// straight-flush/straight bands instead.
func countBeforeFlushOrHighCard(bits uint32) int {
	straight := make(map[uint32]bool, len(straightFlushPatterns))
	for _, sf := range straightFlushPatterns {
		straight[sf] = true
	}

	n := 0
	found := false
	eachFiveRankCombo(func(candidate uint32) {
		if found || straight[candidate] {
			return
		}
		if candidate == bits {
			found = true
			return
		}
		n++
	})
	if !found {
		panic("cardcode: rank combo not found")
	}
	return n
}
