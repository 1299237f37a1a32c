package game

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	for size := MinBoardSize; size <= MaxBoardSize; size++ {
		board, err := Generate(size)
		if err != nil {
			t.Fatalf("Generate(%d) failed: %v", size, err)
		}
		if err := Validate(board, size); err != nil {
			t.Errorf("Generated %dx%d board is invalid: %v", size, size, err)
		}
	}
}

func TestGenerate_InvalidSize(t *testing.T) {
	if _, err := Generate(2); err != ErrBoardSize {
		t.Errorf("Expected ErrBoardSize for size 2, got %v", err)
	}
	if _, err := Generate(6); err != ErrBoardSize {
		t.Errorf("Expected ErrBoardSize for size 6, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	if err := Validate(valid, 3); err != nil {
		t.Errorf("Valid board rejected: %v", err)
	}

	duplicate := Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 8},
	}
	if err := Validate(duplicate, 3); err != ErrBoardInvalid {
		t.Errorf("Expected ErrBoardInvalid for duplicate, got %v", err)
	}

	outOfRange := Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 10},
	}
	if err := Validate(outOfRange, 3); err != ErrBoardInvalid {
		t.Errorf("Expected ErrBoardInvalid for out-of-range, got %v", err)
	}

	wrongShape := Board{
		{1, 2, 3},
		{4, 5},
		{7, 8, 9},
	}
	if err := Validate(wrongShape, 3); err != ErrBoardInvalid {
		t.Errorf("Expected ErrBoardInvalid for ragged board, got %v", err)
	}

	if err := Validate(valid, 4); err != ErrBoardInvalid {
		t.Errorf("Expected ErrBoardInvalid for size mismatch, got %v", err)
	}
}

func TestClone(t *testing.T) {
	board := Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	clone := board.Clone()
	clone[0][0] = 99
	if board[0][0] != 1 {
		t.Error("Clone should not share backing arrays with the original")
	}

	if Board(nil).Clone() != nil {
		t.Error("Cloning a nil board should yield nil")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("Default settings should be valid: %v", err)
	}

	bad := Settings{BoardSize: 5, WinCondition: 13, MaxPlayers: 12}
	if err := bad.Validate(); err == nil {
		t.Error("Win condition above MaxLines should be rejected")
	}

	bad = Settings{BoardSize: 6, WinCondition: 3, MaxPlayers: 12}
	if err := bad.Validate(); err == nil {
		t.Error("Board size 6 should be rejected")
	}

	bad = Settings{BoardSize: 3, WinCondition: 1, MaxPlayers: 1}
	if err := bad.Validate(); err == nil {
		t.Error("Max players below 2 should be rejected")
	}

	edge := Settings{BoardSize: 3, WinCondition: MaxLines(3), MaxPlayers: 2}
	if err := edge.Validate(); err != nil {
		t.Errorf("Win condition equal to MaxLines should be allowed: %v", err)
	}
}

func TestNewRoomCode(t *testing.T) {
	code := NewRoomCode()
	if len(code) != RoomCodeLength {
		t.Fatalf("Expected %d-char code, got %q", RoomCodeLength, code)
	}
	if !ValidRoomCode(code) {
		t.Errorf("Generated code %q failed validation", code)
	}
	// 不应包含易混淆字符
	for _, c := range "0O1I" {
		if strings.ContainsRune(code, c) {
			t.Errorf("Code %q contains ambiguous character %q", code, c)
		}
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	if got := NormalizeRoomCode("  ab2cde "); got != "AB2CDE" {
		t.Errorf("Expected AB2CDE, got %q", got)
	}
}

func TestValidRoomCode(t *testing.T) {
	if ValidRoomCode("ABC") {
		t.Error("Short code should be invalid")
	}
	if ValidRoomCode("ABCDE0") {
		t.Error("Code with ambiguous character should be invalid")
	}
	if !ValidRoomCode("ABCDEF") {
		t.Error("ABCDEF should be valid")
	}
}

func TestNewPlayerID(t *testing.T) {
	a := NewPlayerID()
	b := NewPlayerID()
	if a == b {
		t.Error("Player ids should be unique")
	}
	if !strings.HasPrefix(a, "player_") {
		t.Errorf("Unexpected player id format: %q", a)
	}
}
