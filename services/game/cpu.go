package game

import (
	"context"

	"njuka/models"
)

// playCPUTurns runs CPU seats until the turn returns to a human or the round
// ends. Called on a locked game in solo modes, so poll-only clients always
// observe a snapshot where it is the human's move.
func (e *Engine) playCPUTurns(ctx context.Context, g *models.Game) {
	// Bounded by the deck: every CPU turn consumes a draw, so this cannot
	// loop forever even if every seat is a CPU.
	for !g.GameOver && g.Players[g.CurrentPlayer].IsCPU {
		if err := e.drawLocked(ctx, g); err != nil {
			return
		}
		if g.GameOver {
			return
		}
		e.discardLocked(ctx, g, chooseDiscard(g.Players[g.CurrentPlayer].Hand))
	}
}

// chooseDiscard picks the card whose removal leaves the strongest 3-card
// hand: keep pairs, then adjacency. Deterministic so tests can predict CPU
// play.
func chooseDiscard(hand []models.Card) int {
	best, bestScore := 0, -1
	for i := range hand {
		rest := make([]models.Card, 0, len(hand)-1)
		rest = append(rest, hand[:i]...)
		rest = append(rest, hand[i+1:]...)
		if s := handScore(rest); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func handScore(cards []models.Card) int {
	score := 0
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			a, b := cards[i].RankIndex(), cards[j].RankIndex()
			if a == b {
				score += 3
			} else if diff := a - b; diff == 1 || diff == -1 {
				score++
			}
		}
	}
	return score
}
