package cardcode

import "github.com/lox/pokerequity/internal/deck"

// Packed is the 32-bit Cactus-Kev card representation:
//
//	bits 31..29  unused
//	bits 28..16  rank-bit: exactly one of 13 bits set (2 -> bit0 ... A -> bit12)
//	bits 15..12  suit-bit: exactly one of {0x1, 0x2, 0x4, 0x8}
//	bits 11..8   rank-index 0..12
//	bits  7..6   unused
//	bits  5..0   rank-prime
type Packed uint32

// PRIMES maps rank index 0..12 (2..A) to its prime used in the prime-product
// encoding that uniquely identifies a rank multiset.
var PRIMES = [13]int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41}

// Encode packs a (rank, suit) pair into the Cactus-Kev representation.
// rank is 2..14 (2..10, J=11, Q=12, K=13, A=14); suit is 0..3.
func Encode(rank, suit int) Packed {
	idx := rank - 2
	prime := PRIMES[idx]
	suitBit := 1 << suit
	rankBit := 1 << idx
	return Packed((rankBit << 16) | (suitBit << 12) | (idx << 8) | prime)
}

// FromCard converts a public deck.Card into its packed form.
func FromCard(c deck.Card) Packed {
	return Encode(int(c.Rank), int(c.Suit))
}

// Decode returns the (rank, suit) pair that produced p.
func Decode(p Packed) (rank, suit int) {
	idx := p.RankIndex()
	suit = 0
	for b := p.SuitBit(); b > 1; b >>= 1 {
		suit++
	}
	return idx + 2, suit
}

// RankIndex returns the 0..12 rank index encoded in bits 11..8.
func (p Packed) RankIndex() int { return int(p>>8) & 0xF }

// SuitBit returns the one-hot suit bitfield in bits 15..12.
func (p Packed) SuitBit() int { return int(p>>12) & 0xF }

// Prime returns the rank-prime in bits 5..0.
func (p Packed) Prime() int { return int(p) & 0x3F }

// RankBit returns the one-hot rank bitfield in bits 28..16.
func (p Packed) RankBit() uint32 { return (uint32(p) >> 16) & 0x1FFF }

// primeProductFromRankBits multiplies PRIMES[i] for every set bit i in bits.
func primeProductFromRankBits(bits uint32) int {
	product := 1
	for i := 0; i < 13; i++ {
		if bits&(1<<uint(i)) != 0 {
			product *= PRIMES[i]
		}
	}
	return product
}

// primeProductFromHand multiplies the prime fields of five packed cards.
func primeProductFromHand(c0, c1, c2, c3, c4 Packed) int {
	return c0.Prime() * c1.Prime() * c2.Prime() * c3.Prime() * c4.Prime()
}
