package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/transport/rest"
	"github.com/rocketscienceinc/tictactoe-engine/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	defaults, err := sessionDefaults(conf)
	if err != nil {
		return err
	}

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisClient, err := storage.NewRedisClient(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisClient, conf.Redis.TTL)
	rnd := service.NewRandomSource(conf.Session.RandomSeed)
	newBot := func(level entity.Difficulty) (service.BotStrategy, error) {
		return service.NewBotStrategy(level, rnd)
	}
	sessionManager := usecase.NewSessionManager(logger, sessionRepo, newBot, defaults)

	sweeper, err := usecase.StartIdleSweeper(logger, sessionManager, conf.Session.SweepInterval, conf.Session.IdleTTL)
	if err != nil {
		return fmt.Errorf("could not start idle session sweeper: %w", err)
	}

	defer func() {
		if err = sweeper.Shutdown(); err != nil {
			log.Error("could not stop idle session sweeper", "error", err)
		}
	}()

	wsServer := websocket.New(logger, sessionManager)
	router := rest.NewRouter(logger, sessionManager, wsServer.Mount)

	// run HTTP server, the websocket endpoint shares its port
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		httpErrCh <- rest.Start(ctx, conf.HTTPPort, router)
	}()

	select {
	case err = <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		if err = <-httpErrCh; err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	}
}

func sessionDefaults(conf *config.Config) (usecase.SessionDefaults, error) {
	mode, err := entity.ParseGameMode(conf.Session.DefaultMode)
	if err != nil {
		return usecase.SessionDefaults{}, fmt.Errorf("session.default-mode: %w", err)
	}

	level, err := entity.ParseDifficulty(conf.Session.DefaultDifficulty)
	if err != nil {
		return usecase.SessionDefaults{}, fmt.Errorf("session.default-difficulty: %w", err)
	}

	return usecase.SessionDefaults{Mode: mode, Difficulty: level}, nil
}
