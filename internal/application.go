package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/droptoken-backend/internal/config"
	"github.com/rocketscienceinc/droptoken-backend/internal/repository"
	"github.com/rocketscienceinc/droptoken-backend/internal/repository/storage"
	"github.com/rocketscienceinc/droptoken-backend/internal/usecase"
	"github.com/rocketscienceinc/droptoken-backend/transport/rest"
	"github.com/rocketscienceinc/droptoken-backend/transport/websocket"
)

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

	gameRepo, closer, err := newGameRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closer.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	log.Info("Storage ready", "driver", conf.Storage.Driver)

	gameManager := usecase.NewGameManager(logger, gameRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		limits := rest.Limits{MaxColumns: conf.Board.MaxColumns, MaxRows: conf.Board.MaxRows}
		if httpErr := rest.New(logger, gameManager, limits).Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameManager)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newGameRepository - opens the storage selected by the config.
func newGameRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, io.Closer, error) {
	switch conf.Storage.Driver {
	case config.DriverRedis:
		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.Store.UpdateRetries), redisStorage, nil
	case config.DriverPostgres:
		sqlStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN, conf.Postgres.MaxOpenConns)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		return initSQL(ctx, sqlStorage)
	case config.DriverSQLite:
		sqlStorage, err := storage.NewSQLiteStorage(ctx, conf.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		return initSQL(ctx, sqlStorage)
	default:
		return repository.NewMemoryGameRepository(), io.NopCloser(nil), nil
	}
}

func initSQL(ctx context.Context, sqlStorage *storage.SQLStorage) (repository.GameRepository, io.Closer, error) {
	if err := sqlStorage.Init(ctx); err != nil {
		_ = sqlStorage.Close()

		return nil, nil, fmt.Errorf("could not init sql storage: %w", err)
	}

	return repository.NewSQLGameRepository(sqlStorage), sqlStorage, nil
}
