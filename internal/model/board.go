package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ztrue/tracerr"
)

const BoardSize = 8

// GameMode is the render orientation. It decides which way each side's
// pawns advance.
type GameMode int

const (
	// ModeWhiteFirst puts White on rows 0 and 1, advancing towards row 7.
	ModeWhiteFirst GameMode = 0
	// ModeBlackFirst puts Black on rows 0 and 1, advancing towards row 7.
	ModeBlackFirst GameMode = 1
)

func (m GameMode) IsValid() bool {
	return m == ModeWhiteFirst || m == ModeBlackFirst
}

// Board is a mailbox board. Every piece ever placed stays in pieces; captured
// ones are flagged and leave the grid so they can be restored on undo.
type Board struct {
	grid     [BoardSize][BoardSize]*Piece
	pieces   []*Piece
	captured []Capture
	mode     GameMode

	// speculative counts open legality transactions.
	speculative int
}

func NewBoard(mode GameMode) *Board {
	return &Board{mode: mode}
}

func (b *Board) GameMode() GameMode {
	return b.mode
}

// Place puts a new piece on the board during setup.
func (b *Board) Place(p *Piece) error {
	if !p.Position.InBounds() {
		return tracerr.Errorf("place %v: %w", p, ErrOutOfBounds)
	}
	if b.grid[p.Position.X][p.Position.Y] != nil {
		return tracerr.Errorf("place %v: %w", p, ErrSquareOccupied)
	}
	b.grid[p.Position.X][p.Position.Y] = p
	b.pieces = append(b.pieces, p)
	return nil
}

func (b *Board) PieceAt(x, y int) *Piece {
	if !b.IsValidMove(x, y) {
		return nil
	}
	return b.grid[x][y]
}

func (b *Board) IsValidMove(x, y int) bool {
	return x >= 0 && x < BoardSize && y >= 0 && y < BoardSize
}

func (b *Board) HasEmptyBlock(x, y int) bool {
	return b.IsValidMove(x, y) && b.grid[x][y] == nil
}

func (b *Board) HasOpponent(p *Piece, x, y int) bool {
	if !b.IsValidMove(x, y) {
		return false
	}
	other := b.grid[x][y]
	return other != nil && other.Color != p.Color
}

func (b *Board) HasFriend(p *Piece, x, y int) bool {
	if !b.IsValidMove(x, y) {
		return false
	}
	other := b.grid[x][y]
	return other != nil && other.Color == p.Color
}

// Pieces returns every piece ever placed, captured ones included.
func (b *Board) Pieces() []*Piece {
	return b.pieces
}

func (b *Board) ActivePieces(c Color) []*Piece {
	active := []*Piece{}
	for _, p := range b.pieces {
		if !p.captured && p.Color == c {
			active = append(active, p)
		}
	}
	return active
}

func (b *Board) ActiveCount() int {
	n := 0
	for _, p := range b.pieces {
		if !p.captured {
			n++
		}
	}
	return n
}

func (b *Board) King(c Color) *Piece {
	for _, p := range b.pieces {
		if !p.captured && p.Color == c && p.Type == King {
			return p
		}
	}
	return nil
}

func (b *Board) Material(c Color) int {
	total := 0
	for _, p := range b.pieces {
		if !p.captured && p.Color == c {
			total += p.Score()
		}
	}
	return total
}

// CapturedPieces returns the Captured-Piece Log, oldest first.
func (b *Board) CapturedPieces() []Capture {
	return append([]Capture(nil), b.captured...)
}

// Speculating reports whether a legality transaction is open on the board.
func (b *Board) Speculating() bool {
	return b.speculative != 0
}

// KingIsThreatened is true when some opponent piece can reach the king of c
// with a pseudo-legal move.
func (b *Board) KingIsThreatened(c Color) bool {
	king := b.King(c)
	if king == nil {
		return false
	}
	return b.isSquareAttacked(c.Opponent(), king.Position)
}

func (b *Board) isSquareAttacked(attackingColor Color, target Position) bool {
	for _, p := range b.pieces {
		if p.captured || p.Color != attackingColor {
			continue
		}
		for _, move := range GetMoves(p, b) {
			if move == target {
				return true
			}
		}
	}
	return false
}

// MakeMove moves p to (x, y). When keepHistory is set the previous state is
// pushed on p's own history so UnmakeMove can restore it.
func (b *Board) MakeMove(p *Piece, x, y int, keepHistory bool) error {
	if p == nil {
		return tracerr.Wrap(ErrNoPiece)
	}
	if p.captured || !p.Position.InBounds() || b.grid[p.Position.X][p.Position.Y] != p {
		return tracerr.Errorf("move %v: %w", p, ErrPieceCaptured)
	}
	if !b.IsValidMove(x, y) {
		return tracerr.Errorf("move %v to (%d,%d): %w", p, x, y, ErrOutOfBounds)
	}
	if b.HasFriend(p, x, y) {
		return tracerr.Errorf("move %v to (%d,%d): %w", p, x, y, ErrSquareOccupied)
	}

	victim := b.grid[x][y]
	if keepHistory {
		p.history.push(historyEntry{position: p.Position, hasMoved: p.HasMoved, captured: victim})
	}
	if victim != nil {
		victim.captured = true
		b.grid[x][y] = nil
		b.captured = append(b.captured, Capture{Piece: victim, Square: victim.Position, By: p})
	}

	b.grid[p.Position.X][p.Position.Y] = nil
	p.Position = Position{X: x, Y: y}
	b.grid[x][y] = p
	p.HasMoved = true
	return nil
}

// UnmakeMove reverses the most recent MakeMove that kept history for p.
func (b *Board) UnmakeMove(p *Piece) error {
	if p == nil {
		return tracerr.Wrap(ErrNoPiece)
	}
	if p.captured {
		return tracerr.Errorf("undo %v: piece was captured since: %w", p, ErrUnbalancedTransaction)
	}
	entry, err := p.history.pop()
	if err != nil {
		return err
	}

	// on failure the entry goes back so the piece stays undoable once the
	// caller unwinds in the right order
	if occupant := b.grid[entry.position.X][entry.position.Y]; occupant != nil && occupant != p {
		p.history.push(entry)
		return tracerr.Errorf("undo %v: %v is standing on %v: %w", p, occupant, entry.position, ErrUnbalancedTransaction)
	}
	if entry.captured != nil {
		n := len(b.captured)
		if n == 0 || b.captured[n-1].Piece != entry.captured || b.captured[n-1].By != p {
			p.history.push(entry)
			return tracerr.Errorf("undo %v: capture of %v is not the latest: %w", p, entry.captured, ErrUnbalancedTransaction)
		}
	}

	b.grid[p.Position.X][p.Position.Y] = nil
	p.Position = entry.position
	p.HasMoved = entry.hasMoved
	b.grid[p.Position.X][p.Position.Y] = p

	if entry.captured != nil {
		last := b.captured[len(b.captured)-1]
		b.captured = b.captured[:len(b.captured)-1]
		last.Piece.captured = false
		last.Piece.Position = last.Square
		b.grid[last.Square.X][last.Square.Y] = last.Piece
	}
	return nil
}

// Clone returns a deep copy that shares no pieces with b.
func (b *Board) Clone() *Board {
	out := &Board{mode: b.mode, speculative: b.speculative}
	remap := make(map[*Piece]*Piece, len(b.pieces))
	for _, p := range b.pieces {
		cp := *p
		remap[p] = &cp
	}
	lookup := func(p *Piece) *Piece {
		if p == nil {
			return nil
		}
		return remap[p]
	}

	out.pieces = make([]*Piece, len(b.pieces))
	for i, p := range b.pieces {
		np := remap[p]
		np.history = p.history.clone(lookup)
		out.pieces[i] = np
	}
	for x := 0; x < BoardSize; x++ {
		for y := 0; y < BoardSize; y++ {
			out.grid[x][y] = lookup(b.grid[x][y])
		}
	}
	if len(b.captured) > 0 {
		out.captured = make([]Capture, len(b.captured))
		for i, c := range b.captured {
			out.captured[i] = Capture{Piece: lookup(c.Piece), Square: c.Square, By: lookup(c.By)}
		}
	}
	return out
}

// SquareNotation names a square in algebraic form from White's point of view.
func (b *Board) SquareNotation(p Position) string {
	rank := p.X + 1
	if b.mode == ModeBlackFirst {
		rank = BoardSize - p.X
	}
	return fmt.Sprintf("%c%d", 'a'+p.Y, rank)
}

func (b *Board) FileNotation(p Position) string {
	return fmt.Sprintf("%c", 'a'+p.Y)
}

func (b *Board) String() string {
	var sb strings.Builder
	for x := BoardSize - 1; x >= 0; x-- {
		fmt.Fprintf(&sb, "%d ", x)
		for y := 0; y < BoardSize; y++ {
			if p := b.grid[x][y]; p != nil {
				sb.WriteString(p.Symbol)
			} else {
				sb.WriteString(".")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  01234567")
	return sb.String()
}

type boardJSON struct {
	Board    [][]*Piece `json:"board"`
	GameMode GameMode   `json:"gameMode"`
	Captured []Capture  `json:"captured"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	out := boardJSON{GameMode: b.mode, Captured: b.CapturedPieces()}
	for x := 0; x < BoardSize; x++ {
		out.Board = append(out.Board, append([]*Piece(nil), b.grid[x][:]...))
	}
	if out.Captured == nil {
		out.Captured = []Capture{}
	}
	return json.Marshal(out)
}
