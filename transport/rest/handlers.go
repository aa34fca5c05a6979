package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

type gameService interface {
	CreateGame(ctx context.Context, columns, rows int, players []string) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	ListGameIDs(ctx context.Context) ([]string, error)
	GetMoves(ctx context.Context, id string, start, until *int) ([]entity.Move, error)
	GetMove(ctx context.Context, id string, index int) (entity.Move, error)
	MakeMove(ctx context.Context, id string, column int, player string) (int, error)
	Quit(ctx context.Context, id, player string) error
}

type handlers struct {
	logger  *slog.Logger
	service gameService
	limits  Limits
}

type listGamesResponse struct {
	Games []string `json:"games"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

type gameStateResponse struct {
	Players []string     `json:"players"`
	State   entity.State `json:"state"`
	Winner  string       `json:"winner,omitempty"`
}

type movesResponse struct {
	Moves []entity.Move `json:"moves"`
}

type makeMoveResponse struct {
	Move string `json:"move"`
}

// GET /drop_token
func (that *handlers) listGames(w http.ResponseWriter, r *http.Request) {
	ids, err := that.service.ListGameIDs(r.Context())
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, listGamesResponse{Games: ids})
}

// POST /drop_token
func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, r, &requestError{message: "malformed request body"})
		return
	}

	players, columns, rows, err := req.validate(that.limits)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.service.CreateGame(r.Context(), columns, rows, players)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, createGameResponse{GameID: game.ID})
}

// GET /drop_token/{gameId}
func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if err := validateGameID(gameID); err != nil {
		that.writeError(w, r, err)
		return
	}

	game, err := that.service.GetGame(r.Context(), gameID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gameStateResponse{
		Players: game.Players,
		State:   game.State,
		Winner:  game.Winner,
	})
}

// GET /drop_token/{gameId}/moves?start=&until=
func (that *handlers) getMoves(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if err := validateGameID(gameID); err != nil {
		that.writeError(w, r, err)
		return
	}

	query := r.URL.Query()

	start, err := parseIndex("start", query.Get("start"), true)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	until, err := parseIndex("until", query.Get("until"), true)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	moves, err := that.service.GetMoves(r.Context(), gameID, start, until)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, movesResponse{Moves: moves})
}

// GET /drop_token/{gameId}/moves/{moveNumber}
func (that *handlers) getMove(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameId")
	if err := validateGameID(gameID); err != nil {
		that.writeError(w, r, err)
		return
	}

	index, err := parseIndex("moveNumber", chi.URLParam(r, "moveNumber"), false)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	move, err := that.service.GetMove(r.Context(), gameID, *index)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, move)
}

// POST /drop_token/{gameId}/{playerId}
func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, err := that.gameAndPlayer(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	var req makeMoveRequest
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeError(w, r, &requestError{message: "malformed request body"})
		return
	}

	column, err := req.validate()
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	moveNumber, err := that.service.MakeMove(r.Context(), gameID, column, playerID)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, makeMoveResponse{Move: fmt.Sprintf("%s/moves/%d", gameID, moveNumber)})
}

// DELETE /drop_token/{gameId}/{playerId}
func (that *handlers) quit(w http.ResponseWriter, r *http.Request) {
	gameID, playerID, err := that.gameAndPlayer(r)
	if err != nil {
		that.writeError(w, r, err)
		return
	}

	if err = that.service.Quit(r.Context(), gameID, playerID); err != nil {
		that.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, struct{}{})
}

func (that *handlers) gameAndPlayer(r *http.Request) (string, string, error) {
	gameID := chi.URLParam(r, "gameId")
	if err := validateGameID(gameID); err != nil {
		return "", "", err
	}

	playerID := chi.URLParam(r, "playerId")
	if err := validatePlayerID(playerID); err != nil {
		return "", "", err
	}

	return gameID, playerID, nil
}
