package model

import "github.com/ztrue/tracerr"

// historyEntry is what a single MakeMove needs to be reversed.
type historyEntry struct {
	position Position
	hasMoved bool
	captured *Piece
}

// moveHistory is owned by exactly one piece.
type moveHistory struct {
	entries []historyEntry
}

func (h *moveHistory) push(e historyEntry) {
	h.entries = append(h.entries, e)
}

func (h *moveHistory) pop() (historyEntry, error) {
	n := len(h.entries)
	if n == 0 {
		return historyEntry{}, tracerr.Wrap(ErrHistoryUnderflow)
	}
	e := h.entries[n-1]
	h.entries = h.entries[:n-1]
	return e, nil
}

func (h *moveHistory) len() int {
	return len(h.entries)
}

func (h *moveHistory) clone(remap func(*Piece) *Piece) moveHistory {
	if len(h.entries) == 0 {
		return moveHistory{}
	}
	entries := make([]historyEntry, len(h.entries))
	for i, e := range h.entries {
		entries[i] = historyEntry{position: e.position, hasMoved: e.hasMoved, captured: remap(e.captured)}
	}
	return moveHistory{entries: entries}
}

// Capture is one entry of the board's Captured-Piece Log.
type Capture struct {
	Piece  *Piece   `json:"piece"`
	Square Position `json:"square"`
	By     *Piece   `json:"-"`
}
