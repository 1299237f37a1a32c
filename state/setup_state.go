// state/setup_state.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
)

// SetupState 摆盘状态：每个玩家提交自己的棋盘；
// 全员就绪后自动进入游戏状态
type SetupState struct {
	RoomStateBase
	started bool // 防止多次触发 setup→playing
}

func NewSetupState(room RoomContext) *SetupState {
	return &SetupState{
		RoomStateBase: RoomStateBase{
			ID:   StatusSetup,
			Room: room,
		},
	}
}

func (s *SetupState) OnEnter() {
	logger.Log.Infof("房间 %s 进入摆盘阶段", s.Room.GetID())
}

func (s *SetupState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch action.Type {
	case ActionSubmitBoard:
		return s.handleSubmitBoard(player, action.Board)
	default:
		return ErrUnknownAction
	}
}

// handleSubmitBoard 提交棋盘。空棋盘表示请求服务端随机发盘。
// 校验由 SetPlayerBoard 完成：必须是 1..size*size 的完整排列。
func (s *SetupState) handleSubmitBoard(player Player, board game.Board) error {
	if len(board) == 0 {
		generated, err := game.Generate(s.Room.GetSettings().BoardSize)
		if err != nil {
			return err
		}
		board = generated
	}
	return s.Room.SetPlayerBoard(player.GetID(), board)
}

// OnUpdate 响应式检查：人数≥2 且全员就绪则进入游戏状态，只触发一次
func (s *SetupState) OnUpdate() {
	if s.started {
		return
	}

	players := s.Room.GetPlayers()
	if len(players) < 2 {
		return
	}
	for _, p := range players {
		if !p.IsReady() {
			return
		}
	}

	s.started = true
	if err := s.Room.ChangeState(NewPlayingState(s.Room)); err != nil {
		logger.Log.Errorf("房间 %s 进入游戏状态失败: %v", s.Room.GetID(), err)
		s.started = false
	}
}
