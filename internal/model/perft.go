package model

// Perft counts the leaf nodes of the legal move tree of the given depth with
// side to move first.
func Perft(b *Board, side Color, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	var nodes uint64
	for _, p := range b.ActivePieces(side) {
		moves, err := LegalMoves(p, b)
		if err != nil {
			return 0, err
		}
		if depth == 1 {
			nodes += uint64(len(moves))
			continue
		}
		for _, move := range moves {
			n, err := perftMove(b, p, move, depth)
			if err != nil {
				return 0, err
			}
			nodes += n
		}
	}
	return nodes, nil
}

func perftMove(b *Board, p *Piece, move Position, depth int) (uint64, error) {
	if err := b.MakeMove(p, move.X, move.Y, true); err != nil {
		return 0, err
	}
	n, err := Perft(b, p.Color.Opponent(), depth-1)
	if uerr := b.UnmakeMove(p); uerr != nil && err == nil {
		err = uerr
	}
	return n, err
}

type RootMove struct {
	Piece *Piece
	To    Position
}

// RootMoves lists the legal moves of side, in generation order.
func RootMoves(b *Board, side Color) ([]RootMove, error) {
	roots := []RootMove{}
	for _, p := range b.ActivePieces(side) {
		moves, err := LegalMoves(p, b)
		if err != nil {
			return nil, err
		}
		for _, move := range moves {
			roots = append(roots, RootMove{Piece: p, To: move})
		}
	}
	return roots, nil
}

// PerftRoot counts the subtree below a single root move.
func PerftRoot(b *Board, root RootMove, depth int) (uint64, error) {
	if depth <= 1 {
		return 1, nil
	}
	return perftMove(b, root.Piece, root.To, depth)
}
