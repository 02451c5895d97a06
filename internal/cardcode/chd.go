package cardcode

import (
	"encoding/binary"

	"github.com/opencoff/go-chd"
)

// CompressedTables is the PERFECT_HASH optimization variant of Tables: the
// same prime-product -> rank mapping, backed by a minimal perfect hash
// instead of Go's built-in map, trading build time for a smaller, cache-
// friendlier lookup at evaluation time. It is opt-in; BuildCompressedTables
// falls back to returning a thin wrapper over the ordinary map-based
// Tables if the perfect-hash construction fails for any reason; a hand
// evaluated against CompressedTables always matches Evaluate5 against the
// map-based Tables it was built from — see chd_test.go.
type CompressedTables struct {
	source *Tables

	flushHash    *chd.CHD
	flushRanks   []int16
	unsuitedHash *chd.CHD
	unsuitedRank []int16
}

// BuildCompressedTables constructs the perfect-hash-backed tables from the
// given source, which is typically Default(). Construction never fails
// outright: if the underlying chd build reports an error (which in
// practice only happens for pathological key sets, not the fixed 1287 /
// 6175 key sets this package always builds), the returned CompressedTables
// keeps nil hash fields and Evaluate5Compressed falls back to consulting
// source directly.
func BuildCompressedTables(source *Tables) *CompressedTables {
	ct := &CompressedTables{source: source}

	if h, ranks, err := buildMinimalHash(source.Flush); err == nil {
		ct.flushHash, ct.flushRanks = h, ranks
	}
	if h, ranks, err := buildMinimalHash(source.Unsuited); err == nil {
		ct.unsuitedHash, ct.unsuitedRank = h, ranks
	}
	return ct
}

func buildMinimalHash(table map[int]int16) (*chd.CHD, []int16, error) {
	keys := make([][]byte, 0, len(table))
	ranks := make([]int16, len(table))
	index := make(map[int]int, len(table))

	i := 0
	for prime, rank := range table {
		keys = append(keys, encodeKey(prime))
		ranks[i] = rank
		index[prime] = i
		i++
	}

	builder := chd.NewBuilder(keys)
	h, err := builder.Build()
	if err != nil {
		return nil, nil, NewError(InternalError, "build perfect hash: %w", err)
	}

	// Re-order ranks into the slot order the hash itself assigns, since
	// h.Find() returns a dense slot index, not the insertion index.
	ordered := make([]int16, len(table))
	for prime, rank := range table {
		slot := h.Find(encodeKey(prime))
		if int(slot) >= len(ordered) {
			return nil, nil, NewError(InternalError, "perfect hash slot %d out of range", slot)
		}
		ordered[slot] = rank
	}
	return h, ordered, nil
}

func encodeKey(prime int) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(prime))
	return buf[:]
}

// Evaluate5Compressed mirrors Evaluate5 but looks ranks up via the
// perfect-hash tables when available, falling back to the map-based
// source otherwise.
func (ct *CompressedTables) Evaluate5Compressed(c0, c1, c2, c3, c4 Packed) Rank {
	flushMask := c0.SuitBit() & c1.SuitBit() & c2.SuitBit() & c3.SuitBit() & c4.SuitBit()
	if flushMask != 0 {
		rankOr := c0.RankBit() | c1.RankBit() | c2.RankBit() | c3.RankBit() | c4.RankBit()
		prime := primeProductFromRankBits(rankOr)
		if ct.flushHash != nil {
			slot := ct.flushHash.Find(encodeKey(prime))
			if int(slot) < len(ct.flushRanks) {
				return Rank(ct.flushRanks[slot])
			}
		}
		return Rank(ct.source.Flush[prime])
	}

	prime := primeProductFromHand(c0, c1, c2, c3, c4)
	if ct.unsuitedHash != nil {
		slot := ct.unsuitedHash.Find(encodeKey(prime))
		if int(slot) < len(ct.unsuitedRank) {
			return Rank(ct.unsuitedRank[slot])
		}
	}
	return Rank(ct.source.Unsuited[prime])
}
