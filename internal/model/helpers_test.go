package model

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

func pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// setup places pieces on an empty board of the given mode.
func setup(t *testing.T, mode GameMode, pieces ...*Piece) *Board {
	t.Helper()
	b := NewBoard(mode)
	for _, p := range pieces {
		require.NoError(t, b.Place(p))
	}
	return b
}

type pieceState struct {
	Type       PieceType
	Color      Color
	Position   Position
	HasMoved   bool
	Captured   bool
	HistoryLen int
}

type boardState struct {
	Grid        string
	Pieces      []pieceState
	Captured    int
	Active      int
	Speculating bool
}

// snapshot captures everything make/unmake is allowed to touch.
func snapshot(b *Board) boardState {
	s := boardState{
		Grid:        b.String(),
		Captured:    len(b.CapturedPieces()),
		Active:      b.ActiveCount(),
		Speculating: b.Speculating(),
	}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			if p := b.PieceAt(x, y); p != nil && p.Position != pos(x, y) {
				s.Grid += "\nmisplaced " + p.String()
			}
		}
	}
	for _, p := range b.Pieces() {
		s.Pieces = append(s.Pieces, pieceState{p.Type, p.Color, p.Position, p.HasMoved, p.Captured(), p.HistoryLen()})
	}
	return s
}

func dump(v any) string {
	return spew.Sdump(v)
}

// midgame is a position with pieces of every kind in contact.
func midgame(t *testing.T) *Board {
	t.Helper()
	b := NewStandardBoard(ModeWhiteFirst)
	moves := []struct{ from, to Position }{
		{pos(1, 4), pos(3, 4)}, // e4
		{pos(6, 3), pos(4, 3)}, // d5
		{pos(0, 6), pos(2, 5)}, // Nf3
		{pos(7, 2), pos(3, 6)}, // Bg4
		{pos(0, 5), pos(4, 1)}, // Bb5+
		{pos(6, 2), pos(5, 2)}, // c6
		{pos(3, 4), pos(4, 3)}, // exd5
	}
	for _, m := range moves {
		p := b.PieceAt(m.from.X, m.from.Y)
		require.NotNil(t, p, "no piece on %v", m.from)
		require.NoError(t, b.MakeMove(p, m.to.X, m.to.Y, true))
	}
	return b
}
