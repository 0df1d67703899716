package model

var backRank = [BoardSize]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStandardBoard sets up the initial position. The side that owns rows 0
// and 1 depends on mode.
func NewStandardBoard(mode GameMode) *Board {
	board := NewBoard(mode)
	near, far := White, Black
	if mode == ModeBlackFirst {
		near, far = Black, White
	}
	for y := 0; y < BoardSize; y++ {
		board.mustPlace(NewPiece(backRank[y], near, Position{X: 0, Y: y}))
		board.mustPlace(NewPiece(Pawn, near, Position{X: 1, Y: y}))
		board.mustPlace(NewPiece(Pawn, far, Position{X: BoardSize - 2, Y: y}))
		board.mustPlace(NewPiece(backRank[y], far, Position{X: BoardSize - 1, Y: y}))
	}
	return board
}

func (b *Board) mustPlace(p *Piece) {
	if err := b.Place(p); err != nil {
		panic(err)
	}
}
