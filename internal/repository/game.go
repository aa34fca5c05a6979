package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

var ErrGameAlreadyExists = errors.New("game already exists")

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	// ListIDs returns the ids of all games in creation order.
	ListIDs(ctx context.Context) ([]string, error)
	// Update applies fn to a private copy of the game and stores the result unless fn fails.
	// Updates of one game never interleave; errors returned by fn are passed through unchanged.
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
}

const gamesKey = "games"

type dbGame struct {
	client  *redis.Client
	retries int
}

// NewGameRepository stores games as JSON under "game:<id>". Updates are optimistic: a write that races
// another is retried up to retries times before apperror.ErrConflict is returned.
func NewGameRepository(client *redis.Client, retries int) GameRepository {
	return &dbGame{
		client:  client,
		retries: retries,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(game.ID), gameJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if !created {
		return ErrGameAlreadyExists
	}

	member := redis.Z{Score: float64(time.Now().UnixNano()), Member: game.ID}
	if err = that.client.ZAdd(ctx, gamesKey, member).Err(); err != nil {
		return fmt.Errorf("failed to index game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		return nil, that.mapGetError(err)
	}

	return unmarshalGame(response)
}

func (that *dbGame) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := that.client.ZRange(ctx, gamesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return ids, nil
}

func (that *dbGame) Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error) {
	key := gameKey(id)

	for attempt := 0; attempt < that.retries; attempt++ {
		var updated *entity.Game

		err := that.client.Watch(ctx, func(tx *redis.Tx) error {
			response, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return that.mapGetError(err)
			}

			game, err := unmarshalGame(response)
			if err != nil {
				return err
			}

			if err = fn(game); err != nil {
				return err
			}

			gameJSON, err := json.Marshal(game)
			if err != nil {
				return fmt.Errorf("could not marshal game: %w", err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, gameJSON, 0)

				return nil
			})
			if err != nil {
				return err
			}

			updated = game

			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, apperror.ErrConflict
}

func (that *dbGame) mapGetError(err error) error {
	if errors.Is(err, redis.Nil) {
		return apperror.ErrGameNotFound
	}

	return fmt.Errorf("failed to get game: %w", err)
}

func unmarshalGame(data []byte) (*entity.Game, error) {
	var existingGame entity.Game
	if err := json.Unmarshal(data, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}
