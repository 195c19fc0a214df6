package engine

import (
	"math/rand"
	"sort"
)

// Distribution maps each card value to the number of copies in a deck.
var Distribution = map[int]int{
	-2: 5,
	-1: 10,
	0:  15,
	1:  10,
	2:  10,
	3:  10,
	4:  10,
	5:  10,
	6:  10,
	7:  8,
	8:  8,
	9:  8,
	10: 8,
	11: 8,
	12: 8,
}

// DeckSize is the total number of cards in the Distribution.
const DeckSize = 150

// IDSource hands out card identifiers.
type IDSource interface {
	NextID() int
}

// Counter is a monotonic IDSource starting at zero.
type Counter struct {
	next int
}

// NextID returns the next identifier.
func (c *Counter) NextID() int {
	id := c.next
	c.next++
	return id
}

// BuildDeck creates every card of the Distribution face-down, in ascending
// value order, and then shuffles them with rng.
func BuildDeck(rng *rand.Rand, ids IDSource) []Card {
	values := make([]int, 0, len(Distribution))
	for v := range Distribution {
		values = append(values, v)
	}
	// map order is random; ids must depend on build order only
	sort.Ints(values)

	deck := make([]Card, 0, DeckSize)
	for _, v := range values {
		for n := 0; n < Distribution[v]; n++ {
			deck = append(deck, Card{ID: ids.NextID(), Value: v})
		}
	}
	shuffle(rng, deck)
	return deck
}

// shuffle is an unbiased Fisher-Yates permutation.
func shuffle(rng *rand.Rand, cards []Card) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}
