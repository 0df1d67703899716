package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/benbeisheim/chesscore/internal/service"
	"github.com/benbeisheim/chesscore/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
	logger      logging.Logger
}

func NewWebSocketController(gameService *service.GameService, logger logging.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		logger:      logger,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID, _ := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		wsc.logger.Printf("failed to register connection: %v", err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.logger.Printf("read error: %v", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.logger.Printf("parse error: %v", err)
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			wsc.logger.Printf("handle error: %v", err)
			wsc.send(gameID, playerID, ws.ErrorMessage(err.Error()))
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeSelect:
		var pos model.Position
		if err := json.Unmarshal(msg.Payload, &pos); err != nil {
			return err
		}
		moves, err := wsc.gameService.Select(gameID, playerID, pos)
		if err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, moves)
		if err != nil {
			return err
		}
		wsc.send(gameID, playerID, reply)
		return nil

	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) send(gameID, playerID string, msg ws.Message) {
	if err := wsc.gameService.Send(gameID, playerID, msg); err != nil {
		wsc.logger.Printf("failed to send %s to %s: %v", msg.Type, playerID, err)
	}
}

// HandleMatchmaking queues the player and writes the match event once the
// matchmaking loop has paired them.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("playerID").(string)
	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		c.WriteJSON(ws.ErrorMessage(err.Error()))
		return
	}

	closed := make(chan struct{})
	go func() {
		// a read error means the client went away
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)}); err != nil {
			wsc.logger.Printf("failed to send match to %s: %v", playerID, err)
		}
	case <-closed:
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}
