// state/finished_state.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/bingoserver/logger"
)

// FinishedState 结束状态：胜者已定，房主可重开一局
type FinishedState struct {
	RoomStateBase
}

func NewFinishedState(room RoomContext) *FinishedState {
	return &FinishedState{
		RoomStateBase: RoomStateBase{
			ID:   StatusFinished,
			Room: room,
		},
	}
}

func (s *FinishedState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch action.Type {
	case ActionRestart:
		return s.handleRestart(player)
	default:
		return ErrUnknownAction
	}
}

// handleRestart 房主重开：清空叫号记录、轮转索引、胜者与各玩家棋盘，
// 保留玩家、加入顺序与设置，回到等待状态
func (s *FinishedState) handleRestart(player Player) error {
	if player.GetID() != s.Room.GetHostID() {
		return ErrNotHost
	}

	logger.Log.Infof("房间 %s 重新开始", s.Room.GetID())
	s.Room.ResetForNewGame()
	return s.Room.ChangeState(NewWaitingState(s.Room))
}
