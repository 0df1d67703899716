package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeUnmakeRoundTrip(t *testing.T) {
	boards := map[string]*Board{
		"start":   NewStandardBoard(ModeWhiteFirst),
		"mode 1":  NewStandardBoard(ModeBlackFirst),
		"midgame": midgame(t),
	}
	for name, b := range boards {
		t.Run(name, func(t *testing.T) {
			before := snapshot(b)
			for _, p := range append([]*Piece(nil), b.Pieces()...) {
				for _, m := range GetMoves(p, b) {
					require.NoError(t, b.MakeMove(p, m.X, m.Y, true))
					require.NoError(t, b.UnmakeMove(p))
					after := snapshot(b)
					require.Equal(t, before, after, "%v to %v\n%s", p, m, dump(after))
				}
			}
		})
	}
}

func TestCaptureAndUndo(t *testing.T) {
	rook := NewPiece(Rook, White, pos(0, 0))
	pawn := NewPiece(Pawn, Black, pos(0, 5))
	b := setup(t, ModeWhiteFirst, rook, pawn, NewPiece(King, White, pos(3, 3)))
	activeBefore := b.ActiveCount()

	require.NoError(t, b.MakeMove(rook, 0, 5, true))
	assert.True(t, pawn.Captured())
	assert.Equal(t, rook, b.PieceAt(0, 5))
	assert.Equal(t, activeBefore-1, b.ActiveCount())
	captured := b.CapturedPieces()
	require.Len(t, captured, 1)
	assert.Equal(t, pawn, captured[0].Piece)
	assert.Equal(t, pos(0, 5), captured[0].Square)
	assert.Equal(t, rook, captured[0].By)
	assert.Equal(t, 0, b.Material(Black))

	require.NoError(t, b.UnmakeMove(rook))
	assert.False(t, pawn.Captured())
	assert.Equal(t, pawn, b.PieceAt(0, 5))
	assert.Equal(t, rook, b.PieceAt(0, 0))
	assert.Empty(t, b.CapturedPieces())
	assert.Equal(t, activeBefore, b.ActiveCount())
	assert.Equal(t, 10, b.Material(Black))
}

func TestUnmakeWithoutHistory(t *testing.T) {
	knight := NewPiece(Knight, White, pos(0, 1))
	b := setup(t, ModeWhiteFirst, knight)

	err := b.UnmakeMove(knight)
	assert.True(t, errors.Is(err, ErrHistoryUnderflow), "got %v", err)
	assert.False(t, errors.Is(err, ErrUnbalancedTransaction))

	require.NoError(t, b.MakeMove(knight, 2, 2, false))
	err = b.UnmakeMove(knight)
	assert.ErrorIs(t, err, ErrHistoryUnderflow)
	assert.Equal(t, knight, b.PieceAt(2, 2))
}

func TestHasMovedIsRestored(t *testing.T) {
	pawn := NewPiece(Pawn, White, pos(1, 3))
	b := setup(t, ModeWhiteFirst, pawn)

	require.NoError(t, b.MakeMove(pawn, 3, 3, true))
	require.NoError(t, b.MakeMove(pawn, 4, 3, true))
	assert.True(t, pawn.HasMoved)
	assert.Equal(t, 2, pawn.HistoryLen())

	require.NoError(t, b.UnmakeMove(pawn))
	assert.True(t, pawn.HasMoved)
	require.NoError(t, b.UnmakeMove(pawn))
	assert.False(t, pawn.HasMoved)
	assert.Equal(t, pos(1, 3), pawn.Position)
	assert.Equal(t, []Position{pos(2, 3), pos(3, 3)}, GetMoves(pawn, b))
}

func TestHistoryIsPerPiece(t *testing.T) {
	a := NewPiece(Knight, White, pos(0, 1))
	c := NewPiece(Knight, Black, pos(7, 1))
	b := setup(t, ModeWhiteFirst, a, c)

	require.NoError(t, b.MakeMove(a, 2, 2, true))
	require.NoError(t, b.MakeMove(c, 5, 2, true))

	// a is unmade first even though c moved last
	require.NoError(t, b.UnmakeMove(a))
	assert.Equal(t, pos(0, 1), a.Position)
	assert.Equal(t, pos(5, 2), c.Position)

	require.NoError(t, b.UnmakeMove(c))
	assert.Equal(t, pos(7, 1), c.Position)
	assert.ErrorIs(t, b.UnmakeMove(c), ErrHistoryUnderflow)
}

func TestUnbalancedUnmake(t *testing.T) {
	t.Run("captured piece", func(t *testing.T) {
		rook := NewPiece(Rook, White, pos(0, 0))
		bishop := NewPiece(Bishop, Black, pos(2, 2))
		b := setup(t, ModeWhiteFirst, rook, bishop)

		require.NoError(t, b.MakeMove(bishop, 1, 1, true))
		require.NoError(t, b.MakeMove(rook, 0, 1, true))
		require.NoError(t, b.MakeMove(rook, 1, 1, true))

		assert.ErrorIs(t, b.UnmakeMove(bishop), ErrUnbalancedTransaction)
		require.NoError(t, b.UnmakeMove(rook))
		require.NoError(t, b.UnmakeMove(bishop))
		assert.Equal(t, pos(2, 2), bishop.Position)
	})

	t.Run("square taken", func(t *testing.T) {
		a := NewPiece(Rook, White, pos(0, 0))
		c := NewPiece(Rook, White, pos(0, 7))
		b := setup(t, ModeWhiteFirst, a, c)

		require.NoError(t, b.MakeMove(a, 0, 3, true))
		require.NoError(t, b.MakeMove(c, 0, 0, true))

		before := snapshot(b)
		assert.ErrorIs(t, b.UnmakeMove(a), ErrUnbalancedTransaction)
		assert.Equal(t, before, snapshot(b))

		require.NoError(t, b.UnmakeMove(c))
		require.NoError(t, b.UnmakeMove(a))
		assert.Equal(t, pos(0, 0), a.Position)
		assert.Equal(t, pos(0, 7), c.Position)
	})

	t.Run("capture out of order", func(t *testing.T) {
		a := NewPiece(Rook, White, pos(0, 0))
		c := NewPiece(Rook, White, pos(7, 7))
		victimA := NewPiece(Pawn, Black, pos(0, 4))
		victimC := NewPiece(Pawn, Black, pos(7, 3))
		b := setup(t, ModeWhiteFirst, a, c, victimA, victimC)

		require.NoError(t, b.MakeMove(a, 0, 4, true))
		require.NoError(t, b.MakeMove(c, 7, 3, true))

		assert.ErrorIs(t, b.UnmakeMove(a), ErrUnbalancedTransaction)
		assert.Equal(t, 1, a.HistoryLen())
		require.NoError(t, b.UnmakeMove(c))
		require.NoError(t, b.UnmakeMove(a))
		assert.Empty(t, b.CapturedPieces())
		assert.Equal(t, victimA, b.PieceAt(0, 4))
		assert.Equal(t, victimC, b.PieceAt(7, 3))
	})
}

func TestMakeMoveRejects(t *testing.T) {
	rook := NewPiece(Rook, White, pos(0, 0))
	friend := NewPiece(Knight, White, pos(0, 1))
	b := setup(t, ModeWhiteFirst, rook, friend)
	before := snapshot(b)

	assert.ErrorIs(t, b.MakeMove(rook, 0, 1, true), ErrSquareOccupied)
	assert.ErrorIs(t, b.MakeMove(rook, 8, 0, true), ErrOutOfBounds)
	assert.ErrorIs(t, b.MakeMove(rook, 0, -1, true), ErrOutOfBounds)
	assert.ErrorIs(t, b.MakeMove(nil, 1, 1, true), ErrNoPiece)
	assert.Equal(t, before, snapshot(b))

	stray := NewPiece(Queen, White, pos(4, 4))
	assert.ErrorIs(t, b.MakeMove(stray, 5, 5, true), ErrPieceCaptured)
	offBoard := NewPiece(Queen, White, pos(9, -1))
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, b.MakeMove(offBoard, 5, 5, true), ErrPieceCaptured)
	})
	assert.Equal(t, before, snapshot(b))
}

func TestPlaceRejects(t *testing.T) {
	b := setup(t, ModeWhiteFirst, NewPiece(King, White, pos(0, 4)))

	assert.ErrorIs(t, b.Place(NewPiece(Queen, Black, pos(0, 4))), ErrSquareOccupied)
	assert.ErrorIs(t, b.Place(NewPiece(Queen, Black, pos(9, 4))), ErrOutOfBounds)
	assert.Len(t, b.Pieces(), 1)
}

func TestKingIsThreatened(t *testing.T) {
	king := NewPiece(King, White, pos(0, 4))
	rook := NewPiece(Rook, Black, pos(7, 4))
	b := setup(t, ModeWhiteFirst, king, rook)
	assert.True(t, b.KingIsThreatened(White))
	assert.False(t, b.KingIsThreatened(Black))

	require.NoError(t, b.Place(NewPiece(Pawn, White, pos(1, 4))))
	assert.False(t, b.KingIsThreatened(White))

	// pawns threaten diagonally only
	pawns := setup(t, ModeWhiteFirst, NewPiece(King, White, pos(3, 3)), NewPiece(Pawn, Black, pos(4, 3)))
	assert.False(t, pawns.KingIsThreatened(White))
	pawns = setup(t, ModeWhiteFirst, NewPiece(King, White, pos(3, 3)), NewPiece(Pawn, Black, pos(4, 4)))
	assert.True(t, pawns.KingIsThreatened(White))

	assert.False(t, NewBoard(ModeWhiteFirst).KingIsThreatened(White))
}

func TestCloneIsIndependent(t *testing.T) {
	b := midgame(t)
	before := snapshot(b)

	clone := b.Clone()
	assert.Equal(t, before, snapshot(clone))

	// the clone keeps the history, so it can be unwound on its own
	pawn := clone.PieceAt(4, 3)
	require.NotNil(t, pawn)
	require.NoError(t, clone.UnmakeMove(pawn))
	assert.Len(t, clone.CapturedPieces(), 0)
	assert.NotNil(t, clone.PieceAt(4, 3))
	assert.Equal(t, Black, clone.PieceAt(4, 3).Color)

	assert.Equal(t, before, snapshot(b))
	assert.Len(t, b.CapturedPieces(), 1)
}

func TestStandardBoard(t *testing.T) {
	b := NewStandardBoard(ModeWhiteFirst)
	assert.Equal(t, 32, b.ActiveCount())
	assert.Equal(t, 1480, b.Material(White))
	assert.Equal(t, 1480, b.Material(Black))
	assert.Equal(t, pos(0, 4), b.King(White).Position)
	assert.Equal(t, pos(7, 4), b.King(Black).Position)
	assert.Equal(t, Queen, b.PieceAt(0, 3).Type)

	flipped := NewStandardBoard(ModeBlackFirst)
	assert.Equal(t, pos(0, 4), flipped.King(Black).Position)
	assert.Equal(t, pos(7, 4), flipped.King(White).Position)
	assert.Equal(t, Black, flipped.PieceAt(1, 0).Color)
}

func TestSquareNotation(t *testing.T) {
	assert.Equal(t, "e1", NewBoard(ModeWhiteFirst).SquareNotation(pos(0, 4)))
	assert.Equal(t, "h4", NewBoard(ModeWhiteFirst).SquareNotation(pos(3, 7)))
	assert.Equal(t, "e8", NewBoard(ModeBlackFirst).SquareNotation(pos(0, 4)))
	assert.Equal(t, "a1", NewBoard(ModeBlackFirst).SquareNotation(pos(7, 0)))
}

func TestBoardJSON(t *testing.T) {
	b := midgame(t)
	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var decoded struct {
		Board    [][]*Piece `json:"board"`
		GameMode GameMode   `json:"gameMode"`
		Captured []struct {
			Piece  Piece    `json:"piece"`
			Square Position `json:"square"`
		} `json:"captured"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Board, BoardSize)
	assert.Equal(t, ModeWhiteFirst, decoded.GameMode)
	require.NotNil(t, decoded.Board[4][3])
	assert.Equal(t, Pawn, decoded.Board[4][3].Type)
	assert.Equal(t, White, decoded.Board[4][3].Color)
	assert.Nil(t, decoded.Board[3][3])
	require.Len(t, decoded.Captured, 1)
	assert.Equal(t, pos(4, 3), decoded.Captured[0].Square)
	assert.Equal(t, Black, decoded.Captured[0].Piece.Color)
}
