package droptoken

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// NewGame - creates a game in progress with an empty board; players[0] moves first.
// The caller guarantees positive geometry and at least two distinct players.
func NewGame(id string, columns, rows int, players []string) *entity.Game {
	return &entity.Game{
		ID:            id,
		Columns:       columns,
		Rows:          rows,
		Players:       slices.Clone(players),
		Board:         NewBoard(columns, rows),
		CurrentPlayer: players[0],
		State:         entity.StateInProgress,
		Moves:         []entity.Move{},
	}
}

// ValidateMove - checks whether player may drop a token into column. The order of the checks is fixed.
func ValidateMove(game *entity.Game, column int, player string) error {
	if game.IsDone() {
		return apperror.ErrGameIsDone
	}

	if column < 1 || column > game.Columns {
		return apperror.ErrInvalidColumn
	}

	if !game.HasPlayer(player) {
		return apperror.ErrInvalidPlayer
	}

	if game.CurrentPlayer != player {
		return apperror.ErrNotPlayersTurn
	}

	return nil
}

// MakeMove - drops player's token into column and resolves the game.
// On any error the game is left exactly as it was.
func MakeMove(game *entity.Game, column int, player string) (entity.Move, error) {
	if err := ValidateMove(game, column, player); err != nil {
		return entity.Move{}, fmt.Errorf("invalid move: %w", err)
	}

	cell := lowestEmptyCell(game.Board, game.Rows, column)
	if cell < 0 {
		return entity.Move{}, fmt.Errorf("invalid move: %w", apperror.ErrColumnFull)
	}

	move := entity.NewDropMove(player, column)
	game.Moves = append(game.Moves, move)
	game.Board[cell] = player

	updateGameState(game, player, cell)

	return move, nil
}

// updateGameState - checks the game status after a token landed on cell.
func updateGameState(game *entity.Game, player string, cell int) {
	switch {
	case IsWinningMove(game.Board, game.Columns, game.Rows, cell):
		finishGame(game, player)
	case isBoardFull(game.Board):
		finishGame(game, "")
	default:
		game.CurrentPlayer = nextPlayer(game.Players, player)
	}
}

// Quit - withdraws player from the game. When at most one player is left, the game ends and the
// remaining player, if any, wins.
func Quit(game *entity.Game, player string) error {
	if game.IsDone() {
		return apperror.ErrGameIsDone
	}

	position := slices.Index(game.Players, player)
	if position < 0 {
		return apperror.ErrPlayerNotFound
	}

	remaining := slices.Delete(slices.Clone(game.Players), position, position+1)

	game.Moves = append(game.Moves, entity.NewQuitMove(player))
	game.Players = remaining

	if len(remaining) <= 1 {
		winner := ""
		if len(remaining) == 1 {
			winner = remaining[0]
		}

		finishGame(game, winner)

		return nil
	}

	// the quitter's successor now sits at the quitter's old position
	game.CurrentPlayer = remaining[position%len(remaining)]

	return nil
}

// CurrentMoveNumber - returns the 0-based index of the last move, never negative.
func CurrentMoveNumber(game *entity.Game) int {
	return max(len(game.Moves)-1, 0)
}

func finishGame(game *entity.Game, winner string) {
	game.State = entity.StateDone
	game.Winner = winner
	game.CurrentPlayer = ""
}

func nextPlayer(players []string, player string) string {
	position := slices.Index(players, player)

	return players[(position+1)%len(players)]
}
