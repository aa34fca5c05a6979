package droptoken

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesThrough(t *testing.T) {
	testCases := []struct {
		name     string
		columns  int
		rows     int
		column   int
		row      int
		expected int
	}{
		{name: "corner of a 4x4 board", columns: 4, rows: 4, column: 0, row: 0, expected: 3},
		{name: "inner cell of a 4x4 board", columns: 4, rows: 4, column: 1, row: 1, expected: 7},
		{name: "center of a 3x3 board", columns: 3, rows: 3, column: 1, row: 1, expected: 4},
		{name: "single row board", columns: 5, rows: 1, column: 2, row: 0, expected: 3},
		{name: "single cell board", columns: 1, rows: 1, column: 0, row: 0, expected: 0},
		{name: "board narrower than a line", columns: 2, rows: 2, column: 1, row: 1, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lines := linesThrough(tc.columns, tc.rows, cellIndex(tc.rows, tc.column, tc.row))

			require.Len(t, lines, tc.expected)
		})
	}
}

func TestLinesThrough_LinesContainTheCell(t *testing.T) {
	columns, rows := 7, 6

	for cell := 0; cell < columns*rows; cell++ {
		for _, l := range linesThrough(columns, rows, cell) {
			assert.Contains(t, l, cell)

			for _, index := range l {
				require.GreaterOrEqual(t, index, 0)
				require.Less(t, index, columns*rows)
			}
		}
	}
}

func TestLinesThrough_Concurrent(t *testing.T) {
	// Given: many goroutines asking for a board shape nobody asked for before
	const workers = 32

	var wg sync.WaitGroup
	results := make([][]line, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			results[i] = linesThrough(8, 5, 0)
		}(i)
	}

	wg.Wait()

	// Then: all of them see the same lines
	for _, lines := range results {
		assert.Equal(t, results[0], lines)
	}
}

func TestIsWinningMove(t *testing.T) {
	t.Run("Three in a column", func(t *testing.T) {
		board := NewBoard(3, 3)
		board[0], board[1], board[2] = alice, alice, alice

		assert.True(t, IsWinningMove(board, 3, 3, 2))
	})

	t.Run("Two in a column", func(t *testing.T) {
		board := NewBoard(3, 3)
		board[0], board[1] = alice, alice

		assert.False(t, IsWinningMove(board, 3, 3, 1))
	})

	t.Run("Line must not wrap across columns", func(t *testing.T) {
		// Given: tokens at the top of column 1 and the bottom of column 2
		board := NewBoard(3, 2)
		board[cellIndex(2, 0, 1)] = alice
		board[cellIndex(2, 1, 0)] = alice
		board[cellIndex(2, 1, 1)] = alice

		// Then: adjacent indices are not a line
		assert.False(t, IsWinningMove(board, 3, 2, cellIndex(2, 1, 1)))
	})
}
