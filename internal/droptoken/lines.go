package droptoken

import (
	"sync"

	"github.com/rocketscienceinc/droptoken-backend/internal/entity"
)

// WinLength is the number of identical tokens in a row that wins a game.
const WinLength = 3

type line [WinLength]int

// lineTable holds, for every cell of a board shape, the winning lines that pass through it.
type lineTable [][]line

type geometry struct {
	columns int
	rows    int
}

// directions are (column, row) steps: vertical, horizontal and both diagonals.
var directions = [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

var lineTables sync.Map // geometry -> lineTable

// linesThrough returns the winning lines containing cell, building the table for the board shape once.
func linesThrough(columns, rows, cell int) []line {
	key := geometry{columns: columns, rows: rows}

	table, ok := lineTables.Load(key)
	if !ok {
		table, _ = lineTables.LoadOrStore(key, buildLineTable(columns, rows))
	}

	return table.(lineTable)[cell]
}

func buildLineTable(columns, rows int) lineTable {
	table := make(lineTable, columns*rows)

	for column := 0; column < columns; column++ {
		for row := 0; row < rows; row++ {
			cell := cellIndex(rows, column, row)

			for _, dir := range directions {
				// the cell may sit at any position of the line
				for offset := 0; offset < WinLength; offset++ {
					startColumn := column - offset*dir[0]
					startRow := row - offset*dir[1]

					if l, ok := buildLine(columns, rows, startColumn, startRow, dir); ok {
						table[cell] = append(table[cell], l)
					}
				}
			}
		}
	}

	return table
}

func buildLine(columns, rows, column, row int, dir [2]int) (line, bool) {
	var l line

	for i := 0; i < WinLength; i++ {
		c, r := column+i*dir[0], row+i*dir[1]
		if c < 0 || c >= columns || r < 0 || r >= rows {
			return l, false
		}

		l[i] = cellIndex(rows, c, r)
	}

	return l, true
}

// IsWinningMove reports whether any line through cell is filled by a single player.
func IsWinningMove(board []string, columns, rows, cell int) bool {
	for _, l := range linesThrough(columns, rows, cell) {
		if isLineWon(board, l) {
			return true
		}
	}

	return false
}

func isLineWon(board []string, l line) bool {
	first := board[l[0]]
	if first == entity.EmptyCell {
		return false
	}

	for _, index := range l[1:] {
		if board[index] != first {
			return false
		}
	}

	return true
}
