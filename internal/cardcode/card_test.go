package cardcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for rank := 2; rank <= 14; rank++ {
		for suit := 0; suit <= 3; suit++ {
			p := Encode(rank, suit)
			gotRank, gotSuit := Decode(p)
			assert.Equal(t, rank, gotRank, "rank round trip for %d/%d", rank, suit)
			assert.Equal(t, suit, gotSuit, "suit round trip for %d/%d", rank, suit)
		}
	}
}

func TestEncodeDistinctPrimePerRank(t *testing.T) {
	seen := make(map[int]int)
	for rank := 2; rank <= 14; rank++ {
		p := Encode(rank, 0)
		prime := p.Prime()
		if other, ok := seen[prime]; ok {
			t.Fatalf("rank %d and %d share prime %d", rank, other, prime)
		}
		seen[prime] = rank
	}
}

func TestRankBitIsOneHot(t *testing.T) {
	for rank := 2; rank <= 14; rank++ {
		p := Encode(rank, 1)
		bits := p.RankBit()
		assert.Equal(t, 1, popcount32(bits), "rank bit for %d should be one-hot, got %#x", rank, bits)
	}
}

func TestSuitBitIsOneHot(t *testing.T) {
	for suit := 0; suit <= 3; suit++ {
		p := Encode(14, suit)
		bits := uint32(p.SuitBit())
		assert.Equal(t, 1, popcount32(bits), "suit bit for suit %d should be one-hot, got %#x", suit, bits)
	}
}

func popcount32(v uint32) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}
