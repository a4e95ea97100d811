package game

import (
	"math/rand"

	game_constants "njuka/constants/game"
	"njuka/models"
)

// NewDeck builds the standard 52-card deck in suit-major order.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, game_constants.DeckSize)
	for _, s := range game_constants.Suits {
		for _, v := range game_constants.Ranks {
			deck = append(deck, models.Card{Value: v, Suit: s})
		}
	}
	return deck
}

// ShuffleDeck shuffles in place. The deck is a stack: draws pop from the end.
func ShuffleDeck(deck []models.Card) {
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// drawTop pops the top card. The caller must have checked the deck is
// non-empty.
func drawTop(deck []models.Card) (models.Card, []models.Card) {
	top := deck[len(deck)-1]
	return top, deck[:len(deck)-1]
}
