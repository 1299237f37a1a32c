// state/waiting_state.go
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
)

// WaitingState 等待状态：玩家加入，房主可调整设置并开始游戏
type WaitingState struct {
	RoomStateBase
}

func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{
		RoomStateBase: RoomStateBase{
			ID:   StatusWaiting,
			Room: room,
		},
	}
}

func (s *WaitingState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch action.Type {
	case ActionStartGame:
		return s.handleStartGame(player)
	case ActionUpdateSettings:
		return s.handleUpdateSettings(player, action.Settings)
	default:
		return ErrUnknownAction
	}
}

// handleStartGame 房主开始游戏，进入摆盘阶段
func (s *WaitingState) handleStartGame(player Player) error {
	if player.GetID() != s.Room.GetHostID() {
		return ErrNotHost
	}
	if len(s.Room.GetPlayers()) < 2 {
		return ErrNotEnoughPlayers
	}

	logger.Log.Infof("房间 %s 开始游戏，进入摆盘阶段", s.Room.GetID())
	return s.Room.ChangeState(NewSetupState(s.Room))
}

// handleUpdateSettings 房主修改房间设置，只在等待阶段允许
func (s *WaitingState) handleUpdateSettings(player Player, settings *game.Settings) error {
	if player.GetID() != s.Room.GetHostID() {
		return ErrNotHost
	}
	if settings == nil {
		return errors.New("missing settings")
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.Room.UpdateSettings(*settings)
}
