package model

import "github.com/ztrue/tracerr"

// LegalMoves returns the moves of p that do not leave its own king in check.
func LegalMoves(p *Piece, b *Board) ([]Position, error) {
	return FilterLegal(p, GetMoves(p, b), b)
}

// FilterLegal keeps the candidates after which p's king is not threatened.
// Order is preserved and the board is unchanged on return.
func FilterLegal(p *Piece, moves []Position, b *Board) ([]Position, error) {
	if b.Speculating() {
		return nil, tracerr.Errorf("filter %v: %w", p, ErrUnbalancedTransaction)
	}
	legalMoves := []Position{}
	for _, move := range moves {
		threatened, err := speculate(b, p, move, func() bool {
			return b.KingIsThreatened(p.Color)
		})
		if err != nil {
			return nil, err
		}
		if !threatened {
			legalMoves = append(legalMoves, move)
		}
	}
	return legalMoves, nil
}

// speculate applies the move, evaluates check and always unmakes the move,
// also when check panics.
func speculate(b *Board, p *Piece, move Position, check func() bool) (result bool, err error) {
	historyDepth := p.history.len()
	if err := b.MakeMove(p, move.X, move.Y, true); err != nil {
		return false, err
	}
	b.speculative++
	defer func() {
		b.speculative--
		if uerr := b.UnmakeMove(p); uerr != nil && err == nil {
			err = uerr
		}
		if err == nil && p.history.len() != historyDepth {
			err = tracerr.Errorf("filter %v: history depth %d, want %d: %w", p, p.history.len(), historyDepth, ErrUnbalancedTransaction)
		}
	}()
	return check(), nil
}

// HasLegalMoves reports whether any piece of c can move.
func HasLegalMoves(c Color, b *Board) (bool, error) {
	for _, p := range b.ActivePieces(c) {
		moves, err := LegalMoves(p, b)
		if err != nil {
			return false, err
		}
		if len(moves) > 0 {
			return true, nil
		}
	}
	return false, nil
}
