package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// memoryEntry holds the latest snapshot of a game. A snapshot is never mutated once stored.
type memoryEntry struct {
	mu   sync.Mutex // serializes updates of this game
	game *entity.Game
}

type memoryGame struct {
	mu    sync.RWMutex // guards games, ids and the snapshot pointers
	games map[string]*memoryEntry
	ids   []string
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*memoryEntry),
	}
}

func (that *memoryGame) Create(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[game.ID]; ok {
		return ErrGameAlreadyExists
	}

	that.games[game.ID] = &memoryEntry{game: game.Clone()}
	that.ids = append(that.ids, game.ID)

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.RLock()
	entry, ok := that.games[id]
	var snapshot *entity.Game
	if ok {
		snapshot = entry.game
	}
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return snapshot.Clone(), nil
}

func (that *memoryGame) ListIDs(_ context.Context) ([]string, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return slices.Clone(that.ids), nil
}

func (that *memoryGame) Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error) {
	that.mu.RLock()
	entry, ok := that.games[id]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	that.mu.RLock()
	working := entry.game.Clone()
	that.mu.RUnlock()

	if err := fn(working); err != nil {
		return nil, err
	}

	that.mu.Lock()
	entry.game = working
	that.mu.Unlock()

	return working.Clone(), nil
}
