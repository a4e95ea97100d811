package game

import (
	"sort"

	"njuka/models"
)

// IsWinningHand reports whether a 4-card hand is a winning Njuka hand.
// The two winning shapes are:
//
//   - three of a kind plus any fourth card (the kicker need not be adjacent)
//   - exactly one pair plus two rank-adjacent cards
//
// Adjacency is strict rank order with no wraparound: Q-K is adjacent, K-A is
// not. Hands of any other size never win; the check runs on the pre-discard
// hand only.
func IsWinningHand(hand []models.Card) bool {
	if len(hand) != 4 {
		return false
	}

	counts := make(map[int]int, 4)
	for _, c := range hand {
		idx := c.RankIndex()
		if idx < 0 {
			return false
		}
		counts[idx]++
	}

	for _, n := range counts {
		if n >= 3 {
			return true
		}
	}

	pairs := 0
	pairRank := 0
	for rank, n := range counts {
		if n == 2 {
			pairs++
			pairRank = rank
		}
	}
	if pairs != 1 {
		return false
	}

	others := make([]int, 0, 2)
	for _, c := range hand {
		if idx := c.RankIndex(); idx != pairRank {
			others = append(others, idx)
		}
	}
	if len(others) != 2 {
		return false
	}
	sort.Ints(others)
	return others[1]-others[0] == 1
}
