package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/droptoken"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	ListIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error)
}

// GameManager runs drop-token games on top of a game repository. Every mutation of a game
// goes through the repository's Update, so concurrent requests for one game are applied one at a time.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	hub      *watchHub
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		hub:      newWatchHub(),
	}
}

// CreateGame - starts a new game; the first player moves first.
func (that *GameManager) CreateGame(ctx context.Context, columns, rows int, players []string) (*entity.Game, error) {
	if columns < 1 || rows < 1 || !distinctPlayers(players) {
		return nil, apperror.ErrBadRequest
	}

	game := droptoken.NewGame(uuid.NewString(), columns, rows, players)

	if err := that.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "game_id", game.ID, "columns", columns, "rows", rows, "players", players)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) ListGameIDs(ctx context.Context) ([]string, error) {
	ids, err := that.gameRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return ids, nil
}

// GetMoves - returns the moves with indices start..until inclusive. A nil bound means the start or the end
// of the log; until is clamped to the last move.
func (that *GameManager) GetMoves(ctx context.Context, id string, start, until *int) ([]entity.Move, error) {
	if (start != nil && *start < 0) || (until != nil && *until < 0) {
		return nil, apperror.ErrBadRequest
	}

	game, err := that.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	from, to := 0, len(game.Moves)-1
	if start != nil {
		from = *start
	}

	if until != nil {
		to = min(*until, to)
	}

	if from > to {
		return []entity.Move{}, nil
	}

	return game.Moves[from : to+1], nil
}

func (that *GameManager) GetMove(ctx context.Context, id string, index int) (entity.Move, error) {
	game, err := that.GetGame(ctx, id)
	if err != nil {
		return entity.Move{}, err
	}

	if index < 0 || index >= len(game.Moves) {
		return entity.Move{}, apperror.ErrMoveNotFound
	}

	return game.Moves[index], nil
}

// MakeMove - drops player's token into column and returns the index of the new move.
func (that *GameManager) MakeMove(ctx context.Context, id string, column int, player string) (int, error) {
	log := that.logger.With("method", "MakeMove", "game_id", id, "player", player)

	var moveNumber int

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		if _, err := droptoken.MakeMove(game, column, player); err != nil {
			return err
		}

		moveNumber = droptoken.CurrentMoveNumber(game)

		return nil
	})
	if err != nil {
		log.Debug("move rejected", "column", column, "error", err)

		return 0, fmt.Errorf("failed to make move: %w", err)
	}

	log.Info("move applied", "column", column, "move", moveNumber, "state", game.State, "winner", game.Winner)

	that.hub.publish(game)

	return moveNumber, nil
}

// Quit - removes player from the game.
func (that *GameManager) Quit(ctx context.Context, id, player string) error {
	log := that.logger.With("method", "Quit", "game_id", id, "player", player)

	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		return droptoken.Quit(game, player)
	})
	if err != nil {
		log.Debug("quit rejected", "error", err)

		return fmt.Errorf("failed to quit game: %w", err)
	}

	log.Info("player quit", "state", game.State, "winner", game.Winner)

	that.hub.publish(game)

	return nil
}

// Watch - returns the current state of the game and a channel that receives every later state.
// The channel is closed once the game is done or ctx is canceled.
func (that *GameManager) Watch(ctx context.Context, id string) (*entity.Game, <-chan *entity.Game, error) {
	w := that.hub.subscribe(id)

	game, err := that.GetGame(ctx, id)
	if err != nil {
		that.hub.unsubscribe(id, w)

		return nil, nil, err
	}

	that.hub.mu.Lock()
	w.seen = max(w.seen, len(game.Moves))
	that.hub.mu.Unlock()

	if game.IsDone() {
		that.hub.unsubscribe(id, w)

		return game, w.updates, nil
	}

	go func() {
		<-ctx.Done()
		that.hub.unsubscribe(id, w)
	}()

	return game, w.updates, nil
}

func distinctPlayers(players []string) bool {
	if len(players) < 2 || slices.Contains(players, "") {
		return false
	}

	sorted := slices.Clone(players)
	slices.Sort(sorted)

	return len(slices.Compact(sorted)) == len(players)
}
