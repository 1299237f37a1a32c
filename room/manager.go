// room/manager.go
package room

import (
	"errors"
	"sync"
	"time"

	"github.com/wfunc/bingoserver/game"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	// 房间码生成重试上限，理论上几乎不会触发
	errCodeExhausted = errors.New("could not allocate a unique room code")
)

const codeRetries = 16

// Manager 管理所有房间
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewRoomManager() *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom 生成唯一房间码并创建房间
func (m *Manager) CreateRoom(hostID, hostName string, settings game.Settings, broadcaster Broadcaster) (*Room, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var code string
	for i := 0; ; i++ {
		if i >= codeRetries {
			return nil, errCodeExhausted
		}
		code = game.NewRoomCode()
		if _, exists := m.rooms[code]; !exists {
			break
		}
	}

	room, err := NewRoom(code, hostID, hostName, settings, broadcaster)
	if err != nil {
		return nil, err
	}
	m.rooms[code] = room
	return room, nil
}

// GetRoom 按房间码查找，输入先规范化为大写
func (m *Manager) GetRoom(code string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	room, exists := m.rooms[game.NormalizeRoomCode(code)]
	return room, exists
}

// RemoveRoom 从管理器中移除并关闭一个房间
func (m *Manager) RemoveRoom(code string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[code]; exists {
		room.Close()
		delete(m.rooms, code)
	}
}

// Count 当前房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Rooms 返回所有房间的副本切片
func (m *Manager) Rooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// SweepAbandoned 清理被遗弃的房间，返回被移除的房间码
func (m *Manager) SweepAbandoned(ttl time.Duration) []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var removed []string
	for code, r := range m.rooms {
		if r.Abandoned(ttl) {
			r.Close()
			delete(m.rooms, code)
			removed = append(removed, code)
		}
	}
	return removed
}
