// game/lines.go
package game

// LineKind 线的种类：行、列、对角线
type LineKind string

const (
	LineRow  LineKind = "row"
	LineCol  LineKind = "col"
	LineDiag LineKind = "diag"
)

// Line 一条完成的宾果线。Index 对于 diag 为 0（主对角线）或 1（副对角线）
type Line struct {
	Kind  LineKind `json:"kind"`
	Index int      `json:"index"`
}

// Lines returns every completed line on the board given the called numbers.
// The result depends only on set membership of called, never on call order.
// A nil or empty board yields no lines.
func Lines(board Board, called []int) []Line {
	size := board.Size()
	if size == 0 {
		return nil
	}

	set := make(map[int]bool, len(called))
	for _, n := range called {
		set[n] = true
	}

	var lines []Line

	for r := 0; r < size; r++ {
		complete := true
		for c := 0; c < size; c++ {
			if !set[board[r][c]] {
				complete = false
				break
			}
		}
		if complete {
			lines = append(lines, Line{Kind: LineRow, Index: r})
		}
	}

	for c := 0; c < size; c++ {
		complete := true
		for r := 0; r < size; r++ {
			if !set[board[r][c]] {
				complete = false
				break
			}
		}
		if complete {
			lines = append(lines, Line{Kind: LineCol, Index: c})
		}
	}

	// 主对角线 左上→右下
	complete := true
	for i := 0; i < size; i++ {
		if !set[board[i][i]] {
			complete = false
			break
		}
	}
	if complete {
		lines = append(lines, Line{Kind: LineDiag, Index: 0})
	}

	// 副对角线 右上→左下
	complete = true
	for i := 0; i < size; i++ {
		if !set[board[i][size-1-i]] {
			complete = false
			break
		}
	}
	if complete {
		lines = append(lines, Line{Kind: LineDiag, Index: 1})
	}

	return lines
}

// CountLines 返回完成的线数，是唯一用于胜负判定的指标
func CountLines(board Board, called []int) int {
	return len(Lines(board, called))
}

// MaxLines 返回给定尺寸下可能完成的最大线数
func MaxLines(size int) int {
	return 2*size + 2
}

// CellInLine reports whether (row, col) lies on at least one completed line.
// Used for highlighting only, never for scoring.
func CellInLine(board Board, called []int, row, col int) bool {
	size := board.Size()
	if size == 0 {
		return false
	}
	for _, line := range Lines(board, called) {
		switch line.Kind {
		case LineRow:
			if line.Index == row {
				return true
			}
		case LineCol:
			if line.Index == col {
				return true
			}
		case LineDiag:
			if line.Index == 0 && row == col {
				return true
			}
			if line.Index == 1 && row+col == size-1 {
				return true
			}
		}
	}
	return false
}

// NewlyCompleted returns how many lines the most recent call completed, by
// comparing the evaluation with and without the last entry of called. This
// diff of two pure evaluations replaces any stateful "new line" flag.
func NewlyCompleted(board Board, called []int) int {
	if len(called) == 0 {
		return 0
	}
	before := CountLines(board, called[:len(called)-1])
	after := CountLines(board, called)
	return after - before
}
