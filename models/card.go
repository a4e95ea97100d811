package models

import (
	game_constants "njuka/constants/game"
)

// Card is a single playing card. Equality is value-based: two cards are the
// same card iff rank and suit match.
type Card struct {
	Value string `json:"value"`
	Suit  string `json:"suit"`
}

// RankIndex returns the 1-based rank position (A=1 .. K=13), or -1 for a
// value that is not part of the deck.
func (c Card) RankIndex() int {
	for i, r := range game_constants.Ranks {
		if r == c.Value {
			return i + 1
		}
	}
	return -1
}

func (c Card) String() string {
	return c.Value + c.Suit
}
