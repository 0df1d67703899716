package model

import "fmt"

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// PieceTypes lists every variant in setup order.
var PieceTypes = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

// Score is the fixed material value of the variant.
func (p PieceType) Score() int {
	switch p {
	case Pawn:
		return 10
	case Knight:
		return 20
	case Bishop, Rook:
		return 30
	case Queen:
		return 240
	case King:
		return 1000
	}
	return 0
}

func (p PieceType) IsValid() bool {
	switch p {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

var symbols = map[Color]map[PieceType]string{
	White: {King: "♔", Queen: "♕", Rook: "♖", Bishop: "♗", Knight: "♘", Pawn: "♙"},
	Black: {King: "♚", Queen: "♛", Rook: "♜", Bishop: "♝", Knight: "♞", Pawn: "♟"},
}

// Position is a board coordinate. X is the row the pawns advance along,
// Y is the column.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) InBounds() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	HasMoved bool      `json:"hasMoved"`
	Symbol   string    `json:"symbol"`

	captured bool
	history  moveHistory
}

func NewPiece(t PieceType, c Color, pos Position) *Piece {
	return &Piece{
		Type:     t,
		Color:    c,
		Position: pos,
		Symbol:   symbols[c][t],
	}
}

func (p *Piece) Score() int {
	return p.Type.Score()
}

// Captured reports whether the piece has been taken off the board.
func (p *Piece) Captured() bool {
	return p.captured
}

// HistoryLen is the depth of the piece's own undo stack.
func (p *Piece) HistoryLen() int {
	return p.history.len()
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s: %s|%d,%d", p.Type, p.Color, p.Position.X, p.Position.Y)
}
