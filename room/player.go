// room/player.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/bingoserver/game"
)

// Player 房间内的玩家。Board 在摆盘阶段提交前为 nil。
type Player struct {
	ID        string
	Name      string
	Order     int
	Board     game.Board
	Connected bool
	Ready     bool
	LastSeen  time.Time
	mutex     sync.RWMutex
}

func NewPlayer(id, name string, order int) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Order:     order,
		Connected: true,
		LastSeen:  time.Now(),
	}
}

func (p *Player) GetID() string {
	return p.ID
}

func (p *Player) GetName() string {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.Name
}

func (p *Player) GetOrder() int {
	return p.Order
}

func (p *Player) GetBoard() game.Board {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.Board
}

func (p *Player) IsReady() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.Ready
}

func (p *Player) IsConnected() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.Connected
}

func (p *Player) GetLastSeen() time.Time {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.LastSeen
}

// SetBoard 设置棋盘并标记就绪
func (p *Player) SetBoard(board game.Board) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Board = board
	p.Ready = true
	p.LastSeen = time.Now()
}

// ResetBoard 清空棋盘与就绪标记（重开一局时）
func (p *Player) ResetBoard() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Board = nil
	p.Ready = false
}

// SetConnected 更新在线标记并刷新活跃时间
func (p *Player) SetConnected(connected bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.Connected = connected
	p.LastSeen = time.Now()
}

// Touch 刷新活跃时间
func (p *Player) Touch() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.LastSeen = time.Now()
}
