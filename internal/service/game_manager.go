package service

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/benbeisheim/chesscore/internal/storage"
	"github.com/benbeisheim/chesscore/internal/ws"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
	ErrNoArchive    = errors.New("no archive configured")
)

// Archive persists game records.
type Archive interface {
	SaveGame(rec storage.GameRecord) error
	LoadGame(id string) (storage.GameRecord, error)
}

type ManagerOptions struct {
	Game          model.GameOptions
	Archive       Archive
	Logger        logging.Logger
	MatchInterval time.Duration
}

type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	archive          Archive
	gameOpts         model.GameOptions
	logger           logging.Logger
	mu               sync.RWMutex
	stop             chan struct{}
	stopOnce         sync.Once
}

// NewGameManager starts the matchmaking loop when MatchInterval is positive.
func NewGameManager(opts ManagerOptions) *GameManager {
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger
	}
	if opts.Game.Logger == nil {
		opts.Game.Logger = opts.Logger
	}
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		archive:          opts.Archive,
		gameOpts:         opts.Game,
		logger:           opts.Logger,
		stop:             make(chan struct{}),
	}

	if opts.MatchInterval > 0 {
		go gm.processMatchmaking(opts.MatchInterval)
	}
	return gm
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	gm.stopOnce.Do(func() { close(gm.stop) })
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		// remove first so no new writes land on the closed channel
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel drops ch unless a newer channel has replaced
// it. The creator of the channel closes it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if gm.matchingChannels[playerID] == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.stop:
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest waiting players. It reports whether a game
// was created.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	queued1, queued2, err := gm.queue.GetNextPair()
	if err != nil {
		return false
	}
	player1, player2 := queued1.Player, queued2.Player

	gameID := uuid.New().String()
	game := model.NewGame(gameID, gm.gameOpts)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		gm.logger.Println("error adding player to game", err)
		return false
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		gm.logger.Println("error adding player to game", err)
		return false
	}
	gm.games[gameID] = game
	gm.logger.Printf("matched %s and %s in game %s, queued since %s (%s active)",
		player1.ID, player2.ID, gameID, humanize.Time(queued1.JoinedAt), humanize.Comma(int64(len(gm.games))))

	sent1 := gm.sendMatchFound(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	sent2 := gm.sendMatchFound(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	if !sent1 || !sent2 {
		gm.logger.Printf("failed to notify all players of game %s", gameID)
	}
	return true
}

// sendMatchFound delivers the event and retires the player's channel.
func (gm *GameManager) sendMatchFound(playerID string, event model.MatchFoundEvent) bool {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		gm.logger.Println("failed to marshal match event", err)
		return false
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		gm.logger.Printf("failed to send match event to %s", playerID)
		return false
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = model.NewGame(gameID, gm.gameOpts)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", err
	}
	gm.archiveGame(game)
	return color, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.Remove(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gm.archiveGame(game)
	return nil
}

func (gm *GameManager) Undo(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Undo(playerID); err != nil {
		return err
	}
	gm.archiveGame(game)
	return nil
}

func (gm *GameManager) LegalMoves(gameID string, pos model.Position) ([]model.Position, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMovesAt(pos)
}

func (gm *GameManager) Select(gameID string, playerID string, pos model.Position) ([]model.Position, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.Select(playerID, pos)
}

// archiveGame writes the game's record. Failures are logged; the move that
// triggered the write has already been applied.
func (gm *GameManager) archiveGame(game *model.Game) {
	if gm.archive == nil {
		return
	}
	white, black := game.Players()
	rec := storage.GameRecord{
		ID:        game.ID,
		White:     white,
		Black:     black,
		GameMode:  int(game.GameMode()),
		Moves:     game.Notations(),
		Result:    game.Resolve(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := gm.archive.SaveGame(rec); err != nil {
		gm.logger.Printf("failed to archive game %s: %v", game.ID, err)
	}
}

func (gm *GameManager) ArchivedGame(gameID string) (storage.GameRecord, error) {
	if gm.archive == nil {
		return storage.GameRecord{}, ErrNoArchive
	}
	return gm.archive.LoadGame(gameID)
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gm *GameManager) Send(gameID string, playerID string, msg ws.Message) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(playerID, msg)
}
