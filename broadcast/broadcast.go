// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/bingoserver/session"
)

var (
	ErrNoSubscribers = errors.New("no sessions subscribed to room")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToPlayer(roomID, playerID string, msgID uint16, data []byte) error
}

// RoomBroadcaster 按会话的房间绑定做消息扇出
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom 推送给房间内所有在线会话。
// 单个会话发送失败不会中断其余会话。
func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	sessions := b.sessionManager.GetByRoomID(roomID)
	if len(sessions) == 0 {
		return ErrNoSubscribers
	}

	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			// 发送失败的连接由其读循环负责清理
			continue
		}
	}
	return nil
}

// SendToPlayer 只推送给某个玩家当前的会话
func (b *RoomBroadcaster) SendToPlayer(roomID, playerID string, msgID uint16, data []byte) error {
	s, exists := b.sessionManager.GetByPlayerID(roomID, playerID)
	if !exists {
		return ErrNoSubscribers
	}
	return s.Send(msgID, data)
}
