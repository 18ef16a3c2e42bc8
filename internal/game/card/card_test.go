package card

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_Composition(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	require.Len(t, deck, DeckSize)
	assert.Equal(t, 65, DeckSize)

	counts := Hand(deck).Counts()
	for s := range NumSymbols {
		assert.Equal(t, CopiesPerSymbol, counts[s], "symbol %d", s)
	}
}

func TestDeck_ShufflePreservesCards(t *testing.T) {
	t.Parallel()

	deck := NewDeck()
	deck.Shuffle(rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, Hand(NewDeck()).Counts(), Hand(deck).Counts())

	sorted := slices.Clone(deck)
	slices.Sort(sorted)
	assert.Equal(t, NewDeck(), sorted)
}

func TestDeck_ShuffleDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a, b := NewDeck(), NewDeck()
	a.Shuffle(rand.New(rand.NewPCG(7, 7)))
	b.Shuffle(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a, b)
	assert.NotEqual(t, NewDeck(), a)
}

func TestCard_StringAndNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Taco", Taco.String())
	assert.Equal(t, "Pizza", Pizza.String())
	assert.Equal(t, "9", Card(9).String())

	assert.Equal(t, Cat, Taco.Next())
	assert.Equal(t, Taco, Pizza.Next())
	assert.False(t, Card(5).Valid())
	assert.False(t, Card(-1).Valid())
}
