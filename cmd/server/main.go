package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/chesscore/internal/config"
	"github.com/benbeisheim/chesscore/internal/controller"
	"github.com/benbeisheim/chesscore/internal/logging"
	"github.com/benbeisheim/chesscore/internal/middleware"
	"github.com/benbeisheim/chesscore/internal/model"
	"github.com/benbeisheim/chesscore/internal/service"
	"github.com/benbeisheim/chesscore/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
)

func main() {
	logger := logging.DefaultLogger

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Println("invalid configuration:", err)
		os.Exit(2)
	}

	archive, err := storage.Open(cfg.DataDir, cfg.InMemoryArchive)
	if err != nil {
		logger.Println(err)
		os.Exit(1)
	}
	defer archive.Close()

	gameManager := service.NewGameManager(service.ManagerOptions{
		Game: model.GameOptions{
			Mode:      model.GameMode(cfg.GameMode),
			ClockTime: cfg.ClockTime(),
			Logger:    logging.New(os.Stderr, "[game] "),
		},
		Archive:       archive,
		Logger:        logger,
		MatchInterval: cfg.MatchInterval,
	})
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager)

	app := newApp(cfg, gameService, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Println("shutting down")
		app.Shutdown()
	}()

	logger.Printf("listening on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Println(err)
	}
}

func newApp(cfg config.Config, gameService *service.GameService, logger logging.Logger) *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ", "),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(func(c *fiber.Ctx) error {
		logger.Printf("%s %s", c.Method(), c.Path())
		return c.Next()
	})

	gameController := controller.NewGameController(gameService, logger)
	wsController := controller.NewWebSocketController(gameService, logger)

	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.AllowedOrigins,
	}
	app.Use("/ws/*", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(true), websocket.New(wsController.HandleConnection, wsConfig))
	app.Get("/ws/matchmaking", middleware.WebSocketUpgrade(false), websocket.New(wsController.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Register(api.Group("/game"))

	return app
}
