package cardcode

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressedTablesAgreeWithMapTables(t *testing.T) {
	tables := Default()
	compressed := BuildCompressedTables(tables)

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 500; i++ {
		cards := randomDistinctCards(rng, 5)
		want := Evaluate5(tables, cards[0], cards[1], cards[2], cards[3], cards[4])
		got := compressed.Evaluate5Compressed(cards[0], cards[1], cards[2], cards[3], cards[4])
		assert.Equal(t, want, got, "mismatch for %v", cards)
	}
}
