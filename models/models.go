// models/models.go
package models

import (
	"time"

	"github.com/wfunc/bingoserver/game"
)

// RoomSnapshot 房间快照，每次变更后推送给所有订阅客户端
type RoomSnapshot struct {
	ID               string                    `json:"id"`
	Host             string                    `json:"host"`
	Status           string                    `json:"status"`
	Settings         game.Settings             `json:"settings"`
	Players          map[string]PlayerSnapshot `json:"players"`
	CalledNumbers    []int                     `json:"calledNumbers"`
	CurrentTurnIndex int                       `json:"currentTurnIndex"`
	TurnOrder        []string                  `json:"turnOrder"`
	Winner           string                    `json:"winner,omitempty"`
	CreatedAt        time.Time                 `json:"createdAt"`
}

// PlayerSnapshot 玩家快照（BingoLines 为派生值，由已叫号码重新计算）
type PlayerSnapshot struct {
	Name       string     `json:"name"`
	Order      int        `json:"order"`
	Board      game.Board `json:"board,omitempty"`
	Connected  bool       `json:"connected"`
	Ready      bool       `json:"ready"`
	BingoLines int        `json:"bingoLines"`
	LastSeen   time.Time  `json:"lastSeen"`
}

// CurrentTurnPlayer returns the id of the player whose turn it is,
// or "" when the turn order is empty.
func (s *RoomSnapshot) CurrentTurnPlayer() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentTurnIndex%len(s.TurnOrder)]
}

// GameRecord 一局结束后的存档
type GameRecord struct {
	RoomID      string       `json:"room_id"`
	Winner      string       `json:"winner"`
	Players     []PlayerInfo `json:"players"`
	CalledCount int          `json:"called_count"`
	Duration    int          `json:"duration"` // 秒
	CreatedAt   time.Time    `json:"created_at"`
}

// PlayerInfo 玩家在存档中的条目
type PlayerInfo struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	Outcome    string `json:"outcome"` // win/lose
	BingoLines int    `json:"bingo_lines"`
}

// 客户端事件负载

// NumberCalledEvent 叫号事件
type NumberCalledEvent struct {
	PlayerID string `json:"playerId"`
	Number   int    `json:"number"`
}

// BingoEvent 某玩家在本次叫号后新完成了线
type BingoEvent struct {
	PlayerID   string `json:"playerId"`
	NewLines   int    `json:"newLines"`
	TotalLines int    `json:"totalLines"`
}

// GameEndEvent 游戏结束事件
type GameEndEvent struct {
	Winner     string `json:"winner"`
	BingoLines int    `json:"bingoLines"`
}

// ErrorEvent 动作被拒绝时回给发起方
type ErrorEvent struct {
	Message string `json:"message"`
}
