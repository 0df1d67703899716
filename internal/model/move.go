package model

// WSMove is a move request from a client.
type WSMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

type Ply struct {
	Piece         *Piece   `json:"piece"`
	From          Position `json:"from"`
	To            Position `json:"to"`
	CapturedPiece *Piece   `json:"capturedPiece"`
	Notation      string   `json:"notation"`
}

// Move pairs White's ply with Black's reply. BlackPly is nil until Black has
// moved.
type Move struct {
	WhitePly Ply  `json:"whitePly"`
	BlackPly *Ply `json:"blackPly"`
}

type SimpleMove struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}
