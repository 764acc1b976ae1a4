package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lknvpn/supportbot/core/config"
	"github.com/lknvpn/supportbot/core/database"
	"github.com/lknvpn/supportbot/core/logger"
	tg "github.com/lknvpn/supportbot/core/telegram"
	"github.com/lknvpn/supportbot/core/telegram/router"
	"github.com/lknvpn/supportbot/internal/bot"
	"github.com/lknvpn/supportbot/internal/engine"
	"github.com/lknvpn/supportbot/internal/session"
	"github.com/lknvpn/supportbot/internal/storage"
	"log/slog"
)

const defaultConfigPath = "config.yaml"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Shutdown()

	if err := run(cfg); err != nil {
		logger.L.Error("fatal",
			slog.String("component", "app"),
			slog.String("event", "shutdown"),
			slog.String("err", err.Error()),
		)
		logger.Shutdown()
		os.Exit(1)
	}

	logger.L.Info("bye",
		slog.String("component", "app"),
		slog.String("event", "shutdown"),
	)
}

func run(cfg *config.Config) error {
	if err := database.RunMigrations(cfg.Database); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	tickets := storage.NewTicketStore(db)
	feedback := storage.NewFeedbackStore(db)
	sessions := session.NewManager()
	eng := engine.New(tickets, feedback, sessions)

	reg := tg.NewRegistry()
	b := bot.New(eng)
	b.Register(reg)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(b, reg, router.TextOptions{})...)

	ctx, stop := signal.NotifyContext(logger.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return tg.RunTelegram(ctx, tg.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
	})
}
