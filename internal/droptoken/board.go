package droptoken

import (
	"slices"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

func cellIndex(rows, column, row int) int {
	return column*rows + row
}

// NewBoard allocates an empty column-major board.
func NewBoard(columns, rows int) []string {
	return make([]string, columns*rows)
}

// lowestEmptyCell returns the board index a token dropped into the 1-based column lands on, or -1 when the column is full.
func lowestEmptyCell(board []string, rows, column int) int {
	start := cellIndex(rows, column-1, 0)

	for index := start; index < start+rows; index++ {
		if board[index] == entity.EmptyCell {
			return index
		}
	}

	return -1
}

func isBoardFull(board []string) bool {
	return !slices.Contains(board, entity.EmptyCell)
}
