package model

type direction struct {
	dx, dy int
}

var (
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	// vertical rays first, then horizontal
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	knightDirs = []direction{
		{1, -2}, {2, -1}, {-1, 2}, {-2, 1},
		{1, 2}, {2, 1}, {-1, -2}, {-2, -1},
	}
	kingDirs = []direction{
		{0, 1}, {0, -1},
		{1, 0}, {1, 1}, {1, -1},
		{-1, 0}, {-1, 1}, {-1, -1},
	}
)

// GetMoves returns the pseudo-legal destinations of p. Moves that would leave
// the mover's king in check are included.
func GetMoves(p *Piece, b *Board) []Position {
	if p == nil || p.captured {
		return nil
	}
	switch p.Type {
	case Pawn:
		return getPsuedoPawnMoves(p, b)
	case Knight:
		return getStepMoves(p, b, knightDirs)
	case Bishop:
		return getRayMoves(p, b, bishopDirs, nil)
	case Rook:
		return getRayMoves(p, b, rookDirs, nil)
	case Queen:
		return getRayMoves(p, b, bishopDirs, getRayMoves(p, b, rookDirs, nil))
	case King:
		return getStepMoves(p, b, kingDirs)
	default:
		return nil
	}
}

// PawnDirection is the row delta of a forward pawn step for c.
func PawnDirection(c Color, mode GameMode) int {
	if mode == ModeWhiteFirst && c == White || mode == ModeBlackFirst && c == Black {
		return 1
	}
	return -1
}

func getPsuedoPawnMoves(p *Piece, b *Board) []Position {
	pawnMoves := []Position{}
	dir := PawnDirection(p.Color, b.GameMode())
	x, y := p.Position.X+dir, p.Position.Y

	if b.HasEmptyBlock(x, y) {
		pawnMoves = append(pawnMoves, Position{X: x, Y: y})
		if !p.HasMoved && b.HasEmptyBlock(x+dir, y) {
			pawnMoves = append(pawnMoves, Position{X: x + dir, Y: y})
		}
	}
	// forward-left then forward-right; only onto an opponent
	for _, dy := range [2]int{-1, 1} {
		if b.IsValidMove(x, y+dy) && b.HasOpponent(p, x, y+dy) {
			pawnMoves = append(pawnMoves, Position{X: x, Y: y + dy})
		}
	}
	return pawnMoves
}

func getStepMoves(p *Piece, b *Board, dirs []direction) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		target := p.Position.Add(dir.dx, dir.dy)
		if b.HasEmptyBlock(target.X, target.Y) || b.HasOpponent(p, target.X, target.Y) {
			moves = append(moves, target)
		}
	}
	return moves
}

// getRayMoves walks each direction until the edge or a friend, including the
// first opponent square. Results are appended to moves.
func getRayMoves(p *Piece, b *Board, dirs []direction, moves []Position) []Position {
	if moves == nil {
		moves = []Position{}
	}
	for _, dir := range dirs {
		for i := 1; i < BoardSize; i++ {
			target := p.Position.Add(dir.dx*i, dir.dy*i)
			if !b.IsValidMove(target.X, target.Y) || b.HasFriend(p, target.X, target.Y) {
				break
			}
			moves = append(moves, target)
			if b.HasOpponent(p, target.X, target.Y) {
				break
			}
		}
	}
	return moves
}
