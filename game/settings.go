// game/settings.go
package game

import "fmt"

// Settings 房间游戏设置
type Settings struct {
	BoardSize    int `json:"boardSize" mapstructure:"board_size"`
	WinCondition int `json:"winCondition" mapstructure:"win_condition"`
	MaxPlayers   int `json:"maxPlayers" mapstructure:"max_players"`
}

// DefaultSettings 默认设置（5x5、5 条线获胜、最多 12 人）
func DefaultSettings() Settings {
	return Settings{BoardSize: 5, WinCondition: 5, MaxPlayers: 12}
}

// Validate checks the settings invariants: board size in {3,4,5}, win
// condition within 1..MaxLines(size), at least two players allowed.
func (s Settings) Validate() error {
	if s.BoardSize < MinBoardSize || s.BoardSize > MaxBoardSize {
		return fmt.Errorf("board size must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, s.BoardSize)
	}
	if s.WinCondition < 1 || s.WinCondition > MaxLines(s.BoardSize) {
		return fmt.Errorf("win condition must be between 1 and %d, got %d", MaxLines(s.BoardSize), s.WinCondition)
	}
	if s.MaxPlayers < 2 {
		return fmt.Errorf("max players must be at least 2, got %d", s.MaxPlayers)
	}
	return nil
}
