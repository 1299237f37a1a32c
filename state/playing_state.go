// state/playing_state.go
package state

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
	"github.com/wfunc/bingoserver/models"
	"github.com/wfunc/bingoserver/network"
)

// PlayingState 游戏状态：轮到的玩家叫号，每次叫号后判定胜负
type PlayingState struct {
	RoomStateBase
}

func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   StatusPlaying,
			Room: room,
		},
	}
}

func (s *PlayingState) OnEnter() {
	logger.Log.Infof("房间 %s 进入游戏状态", s.Room.GetID())
	s.notifyGameStart()
}

func (s *PlayingState) notifyGameStart() {
	startMsg := map[string]interface{}{
		"turnOrder": s.Room.GetTurnOrder(),
		"turnIndex": s.Room.GetTurnIndex(),
	}
	data, _ := json.Marshal(startMsg)
	s.Room.Broadcast(network.MsgTypeGameStart, data)
}

func (s *PlayingState) HandleAction(player Player, actionData []byte) error {
	var action Action
	if err := json.Unmarshal(actionData, &action); err != nil {
		return fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	switch action.Type {
	case ActionCallNumber:
		return s.handleCallNumber(player, action.Number)
	default:
		return ErrUnknownAction
	}
}

// handleCallNumber 处理叫号。守卫：必须轮到该玩家、号码在范围内且未被叫过。
// 接受后追加号码，按加入顺序判定胜者；无人获胜则轮转到下一位。
func (s *PlayingState) handleCallNumber(player Player, number int) error {
	turnOrder := s.Room.GetTurnOrder()
	if len(turnOrder) == 0 {
		return ErrNotYourTurn
	}
	currentID := turnOrder[s.Room.GetTurnIndex()%len(turnOrder)]
	if player.GetID() != currentID {
		return ErrNotYourTurn
	}

	size := s.Room.GetSettings().BoardSize
	if number < 1 || number > size*size {
		return ErrNumberOutOfRange
	}

	for _, n := range s.Room.GetCalledNumbers() {
		if n == number {
			return ErrAlreadyCalled
		}
	}

	s.Room.AppendCalledNumber(number)
	s.notifyNumberCalled(player.GetID(), number)

	called := s.Room.GetCalledNumbers()
	players := s.Room.GetPlayers()
	winCondition := s.Room.GetSettings().WinCondition

	// 按加入顺序（turnOrder）遍历，保证平局判定是确定性的：
	// 同一次叫号让多人达标时，加入顺序靠前者获胜
	for _, pid := range turnOrder {
		p, ok := players[pid]
		if !ok || p.GetBoard() == nil {
			continue
		}

		lines := game.CountLines(p.GetBoard(), called)
		if newLines := game.NewlyCompleted(p.GetBoard(), called); newLines > 0 {
			s.notifyBingo(pid, newLines, lines)
		}

		if lines >= winCondition {
			logger.Log.Infof("房间 %s 玩家 %s 达成 %d 线获胜", s.Room.GetID(), pid, lines)
			s.Room.DeclareWinner(pid)
			s.notifyGameEnd(pid, lines)
			return s.Room.ChangeState(NewFinishedState(s.Room))
		}
	}

	s.Room.AdvanceTurn()
	return nil
}

func (s *PlayingState) notifyNumberCalled(playerID string, number int) {
	data, _ := json.Marshal(models.NumberCalledEvent{PlayerID: playerID, Number: number})
	s.Room.Broadcast(network.MsgTypeNumberCalled, data)
}

func (s *PlayingState) notifyBingo(playerID string, newLines, totalLines int) {
	data, _ := json.Marshal(models.BingoEvent{PlayerID: playerID, NewLines: newLines, TotalLines: totalLines})
	s.Room.Broadcast(network.MsgTypeBingo, data)
}

func (s *PlayingState) notifyGameEnd(winner string, lines int) {
	data, _ := json.Marshal(models.GameEndEvent{Winner: winner, BingoLines: lines})
	s.Room.Broadcast(network.MsgTypeGameEnd, data)
}
