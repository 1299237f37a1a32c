package game

import (
	"math/rand"
	"testing"
)

// 测试用 3x3 棋盘
// 1 2 3
// 4 5 6
// 7 8 9
func testBoard() Board {
	return Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
}

func TestCountLines_Row(t *testing.T) {
	lines := Lines(testBoard(), []int{1, 2, 3})
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Kind != LineRow || lines[0].Index != 0 {
		t.Errorf("Expected row 0, got %+v", lines[0])
	}
}

func TestCountLines_Column(t *testing.T) {
	lines := Lines(testBoard(), []int{1, 4, 7})
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Kind != LineCol || lines[0].Index != 0 {
		t.Errorf("Expected col 0, got %+v", lines[0])
	}
}

func TestCountLines_MainDiagonal(t *testing.T) {
	lines := Lines(testBoard(), []int{1, 5, 9})
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Kind != LineDiag || lines[0].Index != 0 {
		t.Errorf("Expected main diagonal, got %+v", lines[0])
	}
}

func TestCountLines_AntiDiagonal(t *testing.T) {
	lines := Lines(testBoard(), []int{3, 5, 7})
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0].Kind != LineDiag || lines[0].Index != 1 {
		t.Errorf("Expected anti diagonal, got %+v", lines[0])
	}
}

func TestCountLines_AllCalled(t *testing.T) {
	called := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	count := CountLines(testBoard(), called)
	if count != MaxLines(3) {
		t.Errorf("Expected %d lines with everything called, got %d", MaxLines(3), count)
	}
}

func TestCountLines_OrderIndependent(t *testing.T) {
	board := testBoard()
	called := []int{1, 5, 9, 2, 3}

	want := CountLines(board, called)
	for i := 0; i < 20; i++ {
		shuffled := append([]int(nil), called...)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := CountLines(board, shuffled); got != want {
			t.Fatalf("Shuffled call order changed result: want %d, got %d", want, got)
		}
	}
}

func TestCountLines_Monotonic(t *testing.T) {
	board := testBoard()
	var called []int
	prev := 0
	for n := 1; n <= 9; n++ {
		called = append(called, n)
		count := CountLines(board, called)
		if count < prev {
			t.Fatalf("Line count decreased from %d to %d after calling %d", prev, count, n)
		}
		prev = count
	}
}

func TestCountLines_EmptyInputs(t *testing.T) {
	if got := CountLines(nil, []int{1, 2, 3}); got != 0 {
		t.Errorf("nil board should yield 0 lines, got %d", got)
	}
	if got := CountLines(testBoard(), nil); got != 0 {
		t.Errorf("no calls should yield 0 lines, got %d", got)
	}
}

func TestCellInLine(t *testing.T) {
	board := testBoard()
	called := []int{1, 2, 3} // row 0 complete

	if !CellInLine(board, called, 0, 1) {
		t.Error("(0,1) should be on the completed row")
	}
	if CellInLine(board, called, 1, 1) {
		t.Error("(1,1) should not be on any completed line")
	}
	if CellInLine(nil, called, 0, 0) {
		t.Error("nil board should never report a completed line")
	}

	// 对角线上的格子
	diag := []int{1, 5, 9}
	if !CellInLine(board, diag, 1, 1) {
		t.Error("(1,1) should be on the completed main diagonal")
	}
	if !CellInLine(board, []int{3, 5, 7}, 0, 2) {
		t.Error("(0,2) should be on the completed anti diagonal")
	}
}

func TestNewlyCompleted(t *testing.T) {
	board := testBoard()

	// 最后一个号码补全了第一行
	if got := NewlyCompleted(board, []int{1, 2, 3}); got != 1 {
		t.Errorf("Expected 1 newly completed line, got %d", got)
	}

	// 最后一个号码没有补全任何线
	if got := NewlyCompleted(board, []int{1, 2, 5}); got != 0 {
		t.Errorf("Expected 0 newly completed lines, got %d", got)
	}

	// 5 同时补全主对角线与中间行/列以外的线：1,9 已叫，5 补全对角线
	if got := NewlyCompleted(board, []int{1, 9, 5}); got != 1 {
		t.Errorf("Expected 1 newly completed line, got %d", got)
	}

	if got := NewlyCompleted(board, nil); got != 0 {
		t.Errorf("Expected 0 for empty call log, got %d", got)
	}
}

func TestCountLines_Idempotent(t *testing.T) {
	board := testBoard()
	called := []int{1, 2, 3, 5, 9}
	first := CountLines(board, called)
	second := CountLines(board, called)
	if first != second {
		t.Errorf("Same inputs gave different results: %d vs %d", first, second)
	}
}

func TestCountLines_DuplicateCalls(t *testing.T) {
	// 调用方可能传入含重复的序列，集合语义下结果不变
	board := testBoard()
	if got := CountLines(board, []int{1, 1, 2, 2, 3, 3}); got != 1 {
		t.Errorf("Duplicates should not change the result, got %d", got)
	}
}
