package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// repositoryFactory returns a repository over an empty store.
type repositoryFactory func(t *testing.T) (context.Context, GameRepository)

func newTestGame(id string) *entity.Game {
	return &entity.Game{
		ID:            id,
		Columns:       2,
		Rows:          2,
		Players:       []string{"alice", "bob"},
		Board:         []string{entity.EmptyCell, entity.EmptyCell, entity.EmptyCell, entity.EmptyCell},
		CurrentPlayer: "alice",
		State:         entity.StateInProgress,
		Moves:         []entity.Move{},
	}
}

// testGameRepository runs the behaviour every GameRepository backend shares.
func testGameRepository(t *testing.T, newRepository repositoryFactory) {
	t.Helper()

	t.Run("Create_GetByID", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)

		// Given: a stored game
		game := newTestGame("123")
		require.NoError(t, gameRepo.Create(ctx, game))

		// When: GetByID is called with its id
		retrievedGame, err := gameRepo.GetByID(ctx, game.ID)

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		require.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("ListIDs_CreationOrder", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)

		ids, err := gameRepo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)

		// Given: three games created one after another
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, gameRepo.Create(ctx, newTestGame(id)))
		}

		// Then: ids come back in creation order
		ids, err = gameRepo.ListIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids)
	})

	t.Run("Update_Success", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)
		require.NoError(t, gameRepo.Create(ctx, newTestGame("123")))

		// When: a move is applied through Update
		updated, err := gameRepo.Update(ctx, "123", func(game *entity.Game) error {
			game.Board[0] = "alice"
			game.CurrentPlayer = "bob"
			game.Moves = append(game.Moves, entity.NewDropMove("alice", 1))

			return nil
		})
		require.NoError(t, err)

		// Then: the result is stored and returned
		expected := newTestGame("123")
		expected.Board[0] = "alice"
		expected.CurrentPlayer = "bob"
		expected.Moves = []entity.Move{entity.NewDropMove("alice", 1)}

		require.Equal(t, expected, updated)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		require.Equal(t, expected, stored)
	})

	t.Run("Update_FinishedGame", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)
		require.NoError(t, gameRepo.Create(ctx, newTestGame("123")))

		_, err := gameRepo.Update(ctx, "123", func(game *entity.Game) error {
			game.Players = []string{"bob"}
			game.Moves = append(game.Moves, entity.NewQuitMove("alice"))
			game.State = entity.StateDone
			game.Winner = "bob"
			game.CurrentPlayer = ""

			return nil
		})
		require.NoError(t, err)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.True(t, stored.IsDone())
		assert.Equal(t, "bob", stored.Winner)
		assert.Empty(t, stored.CurrentPlayer)
		assert.Equal(t, []string{"bob"}, stored.Players)
	})

	t.Run("Update_RejectedChangeIsDiscarded", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)
		game := newTestGame("123")
		require.NoError(t, gameRepo.Create(ctx, game))

		// When: the update function fails after touching the game
		_, err := gameRepo.Update(ctx, "123", func(game *entity.Game) error {
			game.Board[0] = "alice"

			return apperror.ErrColumnFull
		})

		// Then: the error is passed through and the stored game is untouched
		require.ErrorIs(t, err, apperror.ErrColumnFull)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		require.Equal(t, game, stored)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)

		called := false
		_, err := gameRepo.Update(ctx, "9999999", func(*entity.Game) error {
			called = true

			return nil
		})

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.False(t, called)
	})

	t.Run("Snapshots are independent", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)
		require.NoError(t, gameRepo.Create(ctx, newTestGame("123")))

		// When: a caller mutates what it read
		retrieved, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		retrieved.Board[0] = "mallory"
		retrieved.Players[0] = "mallory"

		// Then: the store does not see it
		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		require.Equal(t, newTestGame("123"), stored)
	})

	t.Run("Concurrent updates never lose a write", func(t *testing.T) {
		ctx, gameRepo := newRepository(t)
		require.NoError(t, gameRepo.Create(ctx, newTestGame("123")))

		const writers = 20

		var wg sync.WaitGroup
		errs := make(chan error, writers)

		// When: many writers append to the move log at the same time
		for i := 0; i < writers; i++ {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				_, err := gameRepo.Update(ctx, "123", func(game *entity.Game) error {
					game.Moves = append(game.Moves, entity.NewDropMove(fmt.Sprintf("p%d", i), 1))

					return nil
				})
				errs <- err
			}(i)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		// Then: every append survived
		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Len(t, stored.Moves, writers)
	})
}
