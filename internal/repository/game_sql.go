package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/droptoken-backend/internal/apperror"
	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
	"github.com/rocketscienceinc/droptoken-backend/internal/repository/storage"
)

const selectGame = `SELECT id, "columns", "rows", players, board, moves, current_player, state, winner
	FROM games WHERE id = ?`

type sqlGame struct {
	db      *sql.DB
	dialect storage.Dialect
}

// NewSQLGameRepository keeps games in the games table created by storage.SQLStorage.Init.
func NewSQLGameRepository(st *storage.SQLStorage) GameRepository {
	return &sqlGame{
		db:      st.Connection,
		dialect: st.Dialect,
	}
}

// gameRow is the column representation of a game; slices are stored as JSON text.
type gameRow struct {
	players []byte
	board   []byte
	moves   []byte
}

func encodeGame(game *entity.Game) (gameRow, error) {
	var (
		row gameRow
		err error
	)

	if row.players, err = json.Marshal(game.Players); err != nil {
		return row, fmt.Errorf("could not marshal players: %w", err)
	}

	if row.board, err = json.Marshal(game.Board); err != nil {
		return row, fmt.Errorf("could not marshal board: %w", err)
	}

	if row.moves, err = json.Marshal(game.Moves); err != nil {
		return row, fmt.Errorf("could not marshal moves: %w", err)
	}

	return row, nil
}

func (that *sqlGame) Create(ctx context.Context, game *entity.Game) error {
	row, err := encodeGame(game)
	if err != nil {
		return err
	}

	query := that.dialect.Rebind(`INSERT INTO games
		(id, "columns", "rows", players, board, moves, current_player, state, winner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = that.db.ExecContext(ctx, query,
		game.ID, game.Columns, game.Rows,
		string(row.players), string(row.board), string(row.moves),
		game.CurrentPlayer, string(game.State), game.Winner,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	return nil
}

func (that *sqlGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	return scanGame(that.db.QueryRowContext(ctx, that.dialect.Rebind(selectGame), id))
}

func (that *sqlGame) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := that.db.QueryContext(ctx, `SELECT id FROM games ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}

		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	return ids, nil
}

func (that *sqlGame) Update(ctx context.Context, id string, fn func(game *entity.Game) error) (*entity.Game, error) {
	tx, err := that.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	game, err := scanGame(tx.QueryRowContext(ctx, that.dialect.Rebind(selectGame+that.dialect.LockClause), id))
	if err != nil {
		return nil, err
	}

	if err = fn(game); err != nil {
		return nil, err
	}

	row, err := encodeGame(game)
	if err != nil {
		return nil, err
	}

	query := that.dialect.Rebind(`UPDATE games
		SET players = ?, board = ?, moves = ?, current_player = ?, state = ?, winner = ?
		WHERE id = ?`)

	_, err = tx.ExecContext(ctx, query,
		string(row.players), string(row.board), string(row.moves),
		game.CurrentPlayer, string(game.State), game.Winner, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return game, nil
}

func scanGame(row *sql.Row) (*entity.Game, error) {
	var (
		game    entity.Game
		encoded gameRow
		state   string
	)

	err := row.Scan(
		&game.ID, &game.Columns, &game.Rows,
		&encoded.players, &encoded.board, &encoded.moves,
		&game.CurrentPlayer, &state, &game.Winner,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	game.State = entity.State(state)

	if err = json.Unmarshal(encoded.players, &game.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}

	if err = json.Unmarshal(encoded.board, &game.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}

	if err = json.Unmarshal(encoded.moves, &game.Moves); err != nil {
		return nil, fmt.Errorf("failed to unmarshal moves: %w", err)
	}

	return &game, nil
}
