package controller

import (
	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/benbeisheim/chesscore/internal/service"
	"github.com/gofiber/fiber/v2"
)

type GameController struct {
	gameService *service.GameService
	logger      logging.Logger
}

func NewGameController(gameService *service.GameService, logger logging.Logger) *GameController {
	return &GameController{gameService: gameService, logger: logger}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/matchmaking/join", gc.JoinMatchmaking)
	router.Post("/create", gc.CreateGame)
	router.Post("/join/:gameId", gc.JoinGame)
	router.Get("/:gameId", gc.GetGameState)
	router.Get("/:gameId/moves", gc.GetLegalMoves)
	router.Post("/:gameId/move", gc.MakeMove)
	router.Post("/:gameId/undo", gc.Undo)
	router.Get("/:gameId/archive", gc.GetArchive)
}

func playerID(c *fiber.Ctx) string {
	id, _ := c.Locals("playerID").(string)
	return id
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	gameID, err := gc.gameService.CreateGame()
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	color, err := gc.gameService.JoinGame(gameID, playerID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetLegalMoves(c *fiber.Ctx) error {
	pos := model.Position{X: c.QueryInt("x", -1), Y: c.QueryInt("y", -1)}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), pos)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"from":  pos,
		"moves": moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.WSMove
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	gameID := c.Params("gameId")
	if err := gc.gameService.HandleMove(gameID, playerID(c), move); err != nil {
		gc.logger.Printf("move rejected in game %s: %v", gameID, err)
		return errorJSON(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	if err := gc.gameService.HandleUndo(c.Params("gameId"), playerID(c)); err != nil {
		return errorJSON(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) GetArchive(c *fiber.Ctx) error {
	rec, err := gc.gameService.ArchivedGame(c.Params("gameId"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(rec)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(playerID(c)); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
