package model

import "errors"

// Engine invariant violations. These are returned wrapped with a stack trace,
// compare with errors.Is.
var (
	ErrHistoryUnderflow      = errors.New("move history underflow")
	ErrUnbalancedTransaction = errors.New("unbalanced make/unmake transaction")
	ErrOutOfBounds           = errors.New("square out of bounds")
	ErrSquareOccupied        = errors.New("square occupied by a friendly piece")
	ErrPieceCaptured         = errors.New("piece is not on the board")
)

// Game level errors.
var (
	ErrNoPiece             = errors.New("no piece at from square")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalMove         = errors.New("invalid move, not legal")
	ErrGameOver            = errors.New("game is over")
	ErrGameFull            = errors.New("game is full")
	ErrNothingToUndo       = errors.New("no move to undo")
	ErrPlayerNotInGame     = errors.New("player not in game")
	ErrAlreadyQueued       = errors.New("player already in queue")
	ErrNotEnoughPlayers    = errors.New("not enough players in queue")
	ErrDuplicateConnection = errors.New("connection already exists")
)
