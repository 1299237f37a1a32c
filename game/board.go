// game/board.go
package game

import (
	"errors"
	"math/rand"
)

// Board 玩家的方形棋盘，数字为 1..size*size 的一个排列
type Board [][]int

// 棋盘尺寸限制
const (
	MinBoardSize = 3
	MaxBoardSize = 5
)

var (
	ErrBoardSize    = errors.New("board size out of range")
	ErrBoardInvalid = errors.New("board is not a permutation of 1..size*size")
)

// Size returns the side length of the board, 0 for a nil board.
func (b Board) Size() int {
	return len(b)
}

// Cell returns the value at (row, col). Callers must pass valid indices.
func (b Board) Cell(row, col int) int {
	return b[row][col]
}

// Clone 返回棋盘的深拷贝
func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for r, row := range b {
		out[r] = append([]int(nil), row...)
	}
	return out
}

// Generate 生成随机棋盘：1..size*size 洗牌后按行填充
func Generate(size int) (Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, ErrBoardSize
	}
	total := size * size
	nums := rand.Perm(total)

	board := make(Board, size)
	for r := 0; r < size; r++ {
		row := make([]int, size)
		for c := 0; c < size; c++ {
			row[c] = nums[r*size+c] + 1
		}
		board[r] = row
	}
	return board, nil
}

// Validate 校验棋盘是 1..size*size 的完整排列（无重复、无缺漏）
func Validate(b Board, size int) error {
	if size < MinBoardSize || size > MaxBoardSize {
		return ErrBoardSize
	}
	if len(b) != size {
		return ErrBoardInvalid
	}
	seen := make(map[int]bool, size*size)
	for _, row := range b {
		if len(row) != size {
			return ErrBoardInvalid
		}
		for _, n := range row {
			if n < 1 || n > size*size || seen[n] {
				return ErrBoardInvalid
			}
			seen[n] = true
		}
	}
	return nil
}
