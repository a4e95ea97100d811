package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"njuka/models"
)

func card(value, suit string) models.Card {
	return models.Card{Value: value, Suit: suit}
}

func TestIsWinningHand(t *testing.T) {
	tests := []struct {
		name string
		hand []models.Card
		want bool
	}{
		{
			name: "three of a kind with kicker",
			hand: []models.Card{card("7", "♠"), card("7", "♥"), card("7", "♦"), card("8", "♣")},
			want: true,
		},
		{
			name: "three of a kind with unrelated kicker",
			hand: []models.Card{card("K", "♠"), card("K", "♥"), card("K", "♦"), card("A", "♣")},
			want: true,
		},
		{
			name: "four of a kind",
			hand: []models.Card{card("9", "♠"), card("9", "♥"), card("9", "♦"), card("9", "♣")},
			want: true,
		},
		{
			name: "pair with adjacent side cards",
			hand: []models.Card{card("5", "♠"), card("5", "♥"), card("6", "♦"), card("7", "♣")},
			want: true,
		},
		{
			name: "pair with adjacent side cards out of order",
			hand: []models.Card{card("10", "♦"), card("8", "♠"), card("9", "♣"), card("8", "♥")},
			want: true,
		},
		{
			name: "pair of aces with two and three",
			hand: []models.Card{card("A", "♠"), card("2", "♥"), card("A", "♦"), card("3", "♣")},
			want: true,
		},
		{
			name: "ace and king are not adjacent",
			hand: []models.Card{card("K", "♠"), card("K", "♥"), card("A", "♦"), card("Q", "♣")},
			want: false,
		},
		{
			name: "pair with gap between side cards",
			hand: []models.Card{card("4", "♠"), card("4", "♥"), card("7", "♦"), card("9", "♣")},
			want: false,
		},
		{
			name: "two pairs",
			hand: []models.Card{card("5", "♠"), card("5", "♥"), card("6", "♦"), card("6", "♣")},
			want: false,
		},
		{
			name: "no pair at all",
			hand: []models.Card{card("2", "♠"), card("5", "♥"), card("9", "♦"), card("K", "♣")},
			want: false,
		},
		{
			name: "three cards never win",
			hand: []models.Card{card("7", "♠"), card("7", "♥"), card("7", "♦")},
			want: false,
		},
		{
			name: "empty hand",
			hand: nil,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWinningHand(tt.hand))
		})
	}
}

func TestNewDeckComposition(t *testing.T) {
	deck := NewDeck()
	assert.Len(t, deck, 52)

	seen := make(map[models.Card]bool, len(deck))
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
		assert.Positive(t, c.RankIndex())
	}
}
