package apperror

import "errors"

// Error is an application error kind. Code is the tag clients see on the wire.
type Error struct {
	Code    string
	message string
}

func (that *Error) Error() string {
	return that.message
}

func newError(code, message string) *Error {
	return &Error{Code: code, message: message}
}

var (
	ErrGameNotFound   = newError("game_not_found", "game not found")
	ErrMoveNotFound   = newError("move_not_found", "move not found")
	ErrInvalidColumn  = newError("invalid_column", "column is out of the board")
	ErrInvalidPlayer  = newError("invalid_player", "player is not part of the game")
	ErrNotPlayersTurn = newError("not_players_turn", "it's not your turn")
	ErrColumnFull     = newError("column_full", "column is full")
	ErrGameIsDone     = newError("game_is_done", "game is already finished")
	ErrPlayerNotFound = newError("player_not_found", "player not found")
	ErrBadRequest     = newError("bad_request", "malformed request")
	ErrConflict       = newError("update_conflict", "game was updated concurrently too many times")
)

// CodeOf returns the tag of the first application error in err's chain, or "".
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return ""
}
