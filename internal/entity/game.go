package entity

import "slices"

type State string

const (
	StateInProgress State = "IN_PROGRESS"
	StateDone       State = "DONE"
)

type MoveType string

const (
	MoveTypeMove MoveType = "MOVE"
	MoveTypeQuit MoveType = "QUIT"
)

// EmptyCell marks a board cell without a token.
const EmptyCell = ""

// Move is a single entry of the move log. Column is 1-based and only set for MOVE records.
type Move struct {
	Type   MoveType `json:"type"`
	Player string   `json:"player"`
	Column int      `json:"column,omitempty"`
}

func NewDropMove(player string, column int) Move {
	return Move{Type: MoveTypeMove, Player: player, Column: column}
}

func NewQuitMove(player string) Move {
	return Move{Type: MoveTypeQuit, Player: player}
}

// Game is a single drop-token match.
// Board is column-major: the cell of (column, row) lives at column*Rows + row, row 0 is the bottom.
type Game struct {
	ID            string   `json:"id"`
	Columns       int      `json:"columns"`
	Rows          int      `json:"rows"`
	Players       []string `json:"players"`
	Board         []string `json:"board"`
	CurrentPlayer string   `json:"current_player,omitempty"`
	State         State    `json:"state"`
	Winner        string   `json:"winner,omitempty"`
	Moves         []Move   `json:"moves"`
}

func (that *Game) IsDone() bool {
	return that.State == StateDone
}

func (that *Game) IsInProgress() bool {
	return that.State == StateInProgress
}

func (that *Game) HasPlayer(player string) bool {
	return slices.Contains(that.Players, player)
}

// Clone returns a deep copy so the caller can mutate it without touching the original.
func (that *Game) Clone() *Game {
	clone := *that
	clone.Players = slices.Clone(that.Players)
	clone.Board = slices.Clone(that.Board)
	clone.Moves = slices.Clone(that.Moves)

	return &clone
}
