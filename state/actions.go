// state/actions.go
package state

import (
	"github.com/wfunc/bingoserver/game"
)

// 客户端动作类型
const (
	ActionStartGame      = "start_game"
	ActionUpdateSettings = "update_settings"
	ActionSubmitBoard    = "submit_board"
	ActionCallNumber     = "call_number"
	ActionRestart        = "restart"
)

// Action 客户端动作包，按 Type 取对应字段
type Action struct {
	Type     string         `json:"type"`
	Number   int            `json:"number,omitempty"`
	Board    game.Board     `json:"board,omitempty"`
	Settings *game.Settings `json:"settings,omitempty"`
}
