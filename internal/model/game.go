package model

import (
	"sync"
	"time"

	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/ws"
	"github.com/gofiber/websocket/v2"
)

const (
	ResolveCheckmate = "checkmate"
	ResolveStalemate = "stalemate"
)

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v any) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

type GameOptions struct {
	Mode      GameMode
	ClockTime time.Duration
	Logger    logging.Logger
}

func DefaultGameOptions() GameOptions {
	return GameOptions{
		Mode:      ModeWhiteFirst,
		ClockTime: 600 * time.Second,
		Logger:    logging.DefaultLogger,
	}
}

// The Game struct focuses on a single game's state and its observers
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	board       *Board
	undoStack   []playedPly
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	logger      logging.Logger
}

// playedPly keeps the live piece so the ply can be unmade.
type playedPly struct {
	piece *Piece
	ply   Ply
}

type GameState struct {
	Sound          string         `json:"sound"`
	Board          *Board         `json:"boardState"`
	ToMove         Color          `json:"toMove"`
	MoveHistory    []Move         `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	Material       Material       `json:"material"`
	IsCheck        bool           `json:"isCheck"`
	SelectedSquare *Position      `json:"selectedSquare"`
	LegalMoves     []Position     `json:"legalMoves"`
	Resolve        *string        `json:"resolve"`
	Players        struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
	LastMove *SimpleMove `json:"lastMove"`
}

// CapturedPieces lists the pieces each side has taken.
type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

type Material struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func NewGame(id string, opts GameOptions) *Game {
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger
	}
	board := NewStandardBoard(opts.Mode)
	g := &Game{
		ID:          id,
		board:       board,
		connections: NewGameConnections(),
		whiteClock:  NewClock(opts.ClockTime),
		blackClock:  NewClock(opts.ClockTime),
		logger:      opts.Logger,
	}
	g.state = newGameState(opts.ClockTime)
	g.refreshDerived()
	return g
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

func newGameState(clockTime time.Duration) GameState {
	tenths := int(clockTime.Milliseconds() / 100)
	state := GameState{
		ToMove:      White,
		MoveHistory: make([]Move, 0),
		LegalMoves:  make([]Position, 0),
	}
	state.Players.White = ClientPlayer{TimeLeft: tenths}
	state.Players.Black = ClientPlayer{TimeLeft: tenths}
	return state
}

func (g *Game) AddPlayer(playerID string) (Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if color, ok := g.colorOf(playerID); ok {
		return color, nil
	}
	if g.state.Players.White.ID == "" {
		g.state.Players.White.ID = playerID
		g.state.Players.White.Color = White
		g.logger.Printf("game %s: %s joined as white", g.ID, playerID)
		return White, nil
	}
	if g.state.Players.Black.ID == "" {
		g.state.Players.Black.ID = playerID
		g.state.Players.Black.Color = Black
		g.logger.Printf("game %s: %s joined as black", g.ID, playerID)
		return Black, nil
	}
	return "", ErrGameFull
}

// GetState returns a snapshot that shares nothing with the live game.
func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) snapshot() GameState {
	state := g.state
	state.Board = g.board.Clone()
	state.MoveHistory = make([]Move, len(g.state.MoveHistory))
	for i, m := range g.state.MoveHistory {
		state.MoveHistory[i] = m
		if m.BlackPly != nil {
			ply := *m.BlackPly
			state.MoveHistory[i].BlackPly = &ply
		}
	}
	state.LegalMoves = append([]Position(nil), g.state.LegalMoves...)
	return state
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.colorOf(playerID)
	return ok
}

func (g *Game) colorOf(playerID string) (Color, bool) {
	if playerID == "" {
		return "", false
	}
	if g.state.Players.White.ID == playerID {
		return White, true
	}
	if g.state.Players.Black.ID == playerID {
		return Black, true
	}
	return "", false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	return g.state.Players.White.ID == "" || g.state.Players.Black.ID == ""
}

// LegalMovesAt returns the legal destinations of the piece standing on pos.
func (g *Game) LegalMovesAt(pos Position) ([]Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.legalMovesAt(pos)
}

func (g *Game) legalMovesAt(pos Position) ([]Position, error) {
	if !pos.InBounds() {
		return nil, ErrOutOfBounds
	}
	piece := g.board.PieceAt(pos.X, pos.Y)
	if piece == nil {
		return nil, ErrNoPiece
	}
	return LegalMoves(piece, g.board)
}

// Select records the selected square and its legal moves in the shared state.
func (g *Game) Select(playerID string, pos Position) ([]Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.colorOf(playerID); !ok {
		return nil, ErrPlayerNotInGame
	}
	moves, err := g.legalMovesAt(pos)
	if err != nil {
		return nil, err
	}
	selected := pos
	g.state.SelectedSquare = &selected
	g.state.LegalMoves = moves
	return moves, nil
}

func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logger.Printf("game %s: %s plays %v -> %v", g.ID, playerID, move.From, move.To)

	if g.state.Resolve != nil {
		return ErrGameOver
	}
	if !move.From.InBounds() || !move.To.InBounds() {
		return ErrOutOfBounds
	}
	color, ok := g.colorOf(playerID)
	if !ok {
		return ErrPlayerNotInGame
	}
	piece := g.board.PieceAt(move.From.X, move.From.Y)
	if piece == nil {
		return ErrNoPiece
	}
	if color != g.state.ToMove || piece.Color != g.state.ToMove {
		return ErrNotYourTurn
	}

	if err := g.validateMove(piece, move); err != nil {
		return err
	}

	g.clockFor(g.state.ToMove).Stop()
	if err := g.executeMove(piece, move); err != nil {
		return err
	}
	if g.state.Resolve == nil {
		g.clockFor(g.state.ToMove).Start()
	}
	g.syncClocks()

	go g.broadcastState(g.snapshot())
	return nil
}

func (g *Game) validateMove(piece *Piece, move WSMove) error {
	legalMoves, err := LegalMoves(piece, g.board)
	if err != nil {
		return err
	}
	for _, legal := range legalMoves {
		if legal == move.To {
			return nil
		}
	}
	return ErrIllegalMove
}

func (g *Game) executeMove(piece *Piece, move WSMove) error {
	ply := g.makePly(piece, move)
	if ply.CapturedPiece != nil {
		g.state.Sound = "capture"
	} else {
		g.state.Sound = "move"
	}

	if err := g.board.MakeMove(piece, move.To.X, move.To.Y, true); err != nil {
		return err
	}
	g.undoStack = append(g.undoStack, playedPly{piece: piece, ply: ply})
	g.switchTurn()
	if err := g.evaluatePosition(); err != nil {
		return err
	}
	if g.state.Resolve != nil && *g.state.Resolve == ResolveCheckmate {
		ply.Notation += "#"
	} else if g.state.IsCheck {
		ply.Notation += "+"
	}
	if g.state.IsCheck {
		g.state.Sound = "check"
	}
	g.undoStack[len(g.undoStack)-1].ply = ply

	if piece.Color == White {
		g.state.MoveHistory = append(g.state.MoveHistory, Move{WhitePly: ply})
	} else if n := len(g.state.MoveHistory); n > 0 && g.state.MoveHistory[n-1].BlackPly == nil {
		g.state.MoveHistory[n-1].BlackPly = &ply
	} else {
		// black can only open the history if a takeback emptied it mid-move
		g.state.MoveHistory = append(g.state.MoveHistory, Move{BlackPly: &ply})
	}
	g.state.LastMove = &SimpleMove{From: move.From, To: move.To}
	g.state.SelectedSquare = nil
	g.state.LegalMoves = make([]Position, 0)
	g.refreshDerived()
	return nil
}

// Undo takes back the last ply.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.colorOf(playerID); !ok {
		return ErrPlayerNotInGame
	}
	n := len(g.undoStack)
	if n == 0 {
		return ErrNothingToUndo
	}
	last := g.undoStack[n-1]
	if err := g.board.UnmakeMove(last.piece); err != nil {
		return err
	}
	g.undoStack = g.undoStack[:n-1]
	g.logger.Printf("game %s: %s took back %s", g.ID, playerID, last.ply.Notation)

	if m := len(g.state.MoveHistory); m > 0 {
		entry := &g.state.MoveHistory[m-1]
		if last.piece.Color == Black && entry.BlackPly != nil && entry.WhitePly.Piece != nil {
			entry.BlackPly = nil
		} else {
			g.state.MoveHistory = g.state.MoveHistory[:m-1]
		}
	}

	g.clockFor(g.state.ToMove).Stop()
	g.state.ToMove = last.piece.Color
	g.state.Resolve = nil
	g.state.Sound = "move"
	g.state.SelectedSquare = nil
	g.state.LegalMoves = make([]Position, 0)
	g.state.LastMove = nil
	if n > 1 {
		prev := g.undoStack[n-2].ply
		g.state.LastMove = &SimpleMove{From: prev.From, To: prev.To}
	}
	if err := g.evaluatePosition(); err != nil {
		return err
	}
	if len(g.undoStack) > 0 {
		g.clockFor(g.state.ToMove).Start()
	}
	g.syncClocks()
	g.refreshDerived()

	go g.broadcastState(g.snapshot())
	return nil
}

// evaluatePosition sets check and game end for the side to move.
func (g *Game) evaluatePosition() error {
	g.state.IsCheck = g.board.KingIsThreatened(g.state.ToMove)
	canMove, err := HasLegalMoves(g.state.ToMove, g.board)
	if err != nil {
		return err
	}
	g.state.Resolve = nil
	if !canMove {
		result := ResolveStalemate
		if g.state.IsCheck {
			result = ResolveCheckmate
		}
		g.state.Resolve = &result
		g.logger.Printf("game %s: %s", g.ID, result)
	}
	return nil
}

func (g *Game) refreshDerived() {
	captured := CapturedPieces{White: make([]Piece, 0), Black: make([]Piece, 0)}
	for _, c := range g.board.CapturedPieces() {
		taken := *c.Piece
		taken.history = moveHistory{}
		if c.By.Color == White {
			captured.White = append(captured.White, taken)
		} else {
			captured.Black = append(captured.Black, taken)
		}
	}
	g.state.CapturedPieces = captured
	g.state.Material = Material{White: g.board.Material(White), Black: g.board.Material(Black)}
}

func (g *Game) clockFor(c Color) *Clock {
	if c == White {
		return g.whiteClock
	}
	return g.blackClock
}

func (g *Game) syncClocks() {
	g.state.Players.White.TimeLeft = g.whiteClock.Tenths()
	g.state.Players.Black.TimeLeft = g.blackClock.Tenths()
}

func (g *Game) makePly(piece *Piece, move WSMove) Ply {
	captured := g.board.PieceAt(move.To.X, move.To.Y)
	var capturedCopy *Piece
	if captured != nil {
		c := *captured
		c.history = moveHistory{}
		capturedCopy = &c
	}
	moved := *piece
	moved.history = moveHistory{}
	return Ply{
		Piece:         &moved,
		From:          move.From,
		To:            move.To,
		CapturedPiece: capturedCopy,
		Notation:      g.getNotation(piece, move),
	}
}

func (g *Game) getNotation(piece *Piece, move WSMove) string {
	prefix := piece.Type.getPieceNotation()
	capture := ""
	if g.board.HasOpponent(piece, move.To.X, move.To.Y) {
		capture = "x"
	}
	pawnFile := ""
	if piece.Type == Pawn && move.From.Y != move.To.Y {
		pawnFile = g.board.FileNotation(move.From)
	}
	return prefix + pawnFile + capture + g.board.SquareNotation(move.To)
}

// Notations returns the plies played so far, oldest first.
func (g *Game) Notations() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	notations := make([]string, len(g.undoStack))
	for i, p := range g.undoStack {
		notations[i] = p.ply.Notation
	}
	return notations
}

func (g *Game) Resolve() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Resolve == nil {
		return ""
	}
	return *g.state.Resolve
}

func (g *Game) switchTurn() {
	g.state.ToMove = g.state.ToMove.Opponent()
}

// RegisterConnection adds conn as the player's socket. A second socket for the
// same player is closed and ErrDuplicateConnection returned; the first one
// stays registered.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGameLocked(playerID) || g.canSpectate()
	state := g.snapshot()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrPlayerNotInGame
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// keep the healthy connection, reject the new one
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return ErrDuplicateConnection
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	g.logger.Printf("game %s: registered connection for %s", g.ID, playerID)

	go g.broadcastState(state)
	return nil
}

func (g *Game) isPlayerInGameLocked(playerID string) bool {
	_, ok := g.colorOf(playerID)
	return ok
}

// UnregisterConnection removes conn if it is still the player's registered
// socket.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if existing, exists := g.connections.connections[playerID]; exists && existing == conn {
		g.logger.Printf("game %s: unregistering connection for %s", g.ID, playerID)
		delete(g.connections.connections, playerID)
	}
}

// Send writes a message to one player's connection.
func (g *Game) Send(playerID string, msg ws.Message) error {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	conn, ok := g.connections.connections[playerID]
	if !ok {
		return ErrPlayerNotInGame
	}
	return conn.WriteJSON(msg)
}

// broadcastState writes state to every connection. Connections that fail are
// dropped.
func (g *Game) broadcastState(state GameState) {
	msg, err := ws.NewMessage(ws.MessageTypeGameState, state)
	if err != nil {
		g.logger.Println("failed to marshal state", err)
		return
	}

	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()
	for playerID, conn := range g.connections.connections {
		if err := conn.WriteJSON(msg); err != nil {
			g.logger.Printf("game %s: failed to send state to %s: %v", g.ID, playerID, err)
			delete(g.connections.connections, playerID)
		}
	}
}

// Players returns the IDs seated as white and black.
func (g *Game) Players() (white, black string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Players.White.ID, g.state.Players.Black.ID
}

func (g *Game) GameMode() GameMode {
	return g.board.GameMode()
}
