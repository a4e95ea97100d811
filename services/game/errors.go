package game

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameOver         = errors.New("game is over")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyDrawn     = errors.New("already drawn this turn")
	ErrMustDrawFirst    = errors.New("must draw first")
	ErrInvalidCardIndex = errors.New("invalid card index")
	ErrNotInGame        = errors.New("player is not in this game")
	ErrInvalidMode      = errors.New("invalid game mode")
	ErrBadSeatCount     = errors.New("invalid number of players")
)
