// room/room.go
package room

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
	"github.com/wfunc/bingoserver/models"
	"github.com/wfunc/bingoserver/network"
	"github.com/wfunc/bingoserver/state"
)

// MaxNameLength 玩家昵称最大长度
const MaxNameLength = 12

var (
	ErrRoomFull       = errors.New("room is full")
	ErrRoomStarted    = errors.New("game already started")
	ErrPlayerNotFound = errors.New("player not found in room")
	ErrPlayerExists   = errors.New("player already in room")
	ErrInvalidName    = errors.New("name must be 1-12 characters")
)

// Room 是游戏房间的核心结构。所有动作经 Dispatch 串行执行，
// 叫号的回合校验与胜负判定因此是原子的。
type Room struct {
	ID               string
	HostID           string
	Settings         game.Settings
	Players          map[string]*Player // playerID -> player
	CalledNumbers    []int
	CurrentTurnIndex int
	TurnOrder        []string
	WinnerID         string
	CreatedAt        time.Time
	StateMachine     state.StateMachine

	broadcaster  Broadcaster
	statusHook   func(models.RoomSnapshot)
	actionMutex  sync.Mutex // 串行化动作与心跳
	dataMutex    sync.RWMutex
	playStarted  time.Time
	lastDuration time.Duration
	ticker       *time.Ticker
	closeChan    chan bool
	closeOnce    sync.Once
}

// NewRoom 创建新房间，创建者成为房主并占据轮转顺序首位
func NewRoom(id, hostID, hostName string, settings game.Settings, broadcaster Broadcaster) (*Room, error) {
	if !validName(hostName) {
		return nil, ErrInvalidName
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	r := &Room{
		ID:          id,
		HostID:      hostID,
		Settings:    settings,
		Players:     map[string]*Player{hostID: NewPlayer(hostID, hostName, 0)},
		TurnOrder:   []string{hostID},
		CreatedAt:   time.Now(),
		broadcaster: broadcaster,
		closeChan:   make(chan bool),
	}

	// 初始化状态机，将房间自身作为上下文传入
	r.StateMachine = state.NewBaseStateMachine(state.NewWaitingState(r))

	// 启动房间心跳，驱动状态的响应式检查（如摆盘阶段全员就绪）
	r.ticker = time.NewTicker(100 * time.Millisecond)
	go r.loop()

	return r, nil
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= MaxNameLength
}

// --- 实现 state.RoomContext 接口 ---

func (r *Room) GetID() string {
	return r.ID
}

func (r *Room) GetHostID() string {
	return r.HostID
}

func (r *Room) GetSettings() game.Settings {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	return r.Settings
}

// GetPlayers 返回玩家副本映射，避免并发修改
func (r *Room) GetPlayers() map[string]state.Player {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()

	players := make(map[string]state.Player, len(r.Players))
	for k, v := range r.Players {
		players[k] = v
	}
	return players
}

func (r *Room) GetTurnOrder() []string {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	return append([]string(nil), r.TurnOrder...)
}

func (r *Room) GetCalledNumbers() []int {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	return append([]int(nil), r.CalledNumbers...)
}

func (r *Room) GetTurnIndex() int {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	return r.CurrentTurnIndex
}

func (r *Room) UpdateSettings(s game.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()
	r.Settings = s
	return nil
}

// SetPlayerBoard 校验并设置玩家棋盘，成功后玩家进入就绪状态
func (r *Room) SetPlayerBoard(playerID string, board game.Board) error {
	r.dataMutex.RLock()
	p, exists := r.Players[playerID]
	size := r.Settings.BoardSize
	r.dataMutex.RUnlock()

	if !exists {
		return ErrPlayerNotFound
	}
	if err := game.Validate(board, size); err != nil {
		return err
	}

	p.SetBoard(board.Clone())
	return nil
}

func (r *Room) AppendCalledNumber(n int) {
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()
	r.CalledNumbers = append(r.CalledNumbers, n)
}

func (r *Room) AdvanceTurn() {
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()
	if len(r.TurnOrder) > 0 {
		r.CurrentTurnIndex = (r.CurrentTurnIndex + 1) % len(r.TurnOrder)
	}
}

func (r *Room) DeclareWinner(playerID string) {
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()
	r.WinnerID = playerID
}

// ResetForNewGame 重开一局：清空叫号、轮转索引与胜者，
// 重置所有玩家棋盘；玩家、加入顺序与设置保留
func (r *Room) ResetForNewGame() {
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()

	r.CalledNumbers = nil
	r.CurrentTurnIndex = 0
	r.WinnerID = ""
	for _, p := range r.Players {
		p.ResetBoard()
	}
}

// ChangeState 切换状态机状态，并记录对局起止用于存档时长
func (r *Room) ChangeState(newState state.State) error {
	if err := r.StateMachine.ChangeState(newState); err != nil {
		return err
	}

	r.dataMutex.Lock()
	switch newState.GetID() {
	case state.StatusPlaying:
		r.playStarted = time.Now()
	case state.StatusFinished:
		if !r.playStarted.IsZero() {
			r.lastDuration = time.Since(r.playStarted)
		}
	}
	r.dataMutex.Unlock()
	return nil
}

func (r *Room) Broadcast(msgID uint16, data []byte) error {
	return r.broadcaster.BroadcastToRoom(r.ID, msgID, data)
}

// --- 房间核心逻辑 ---

// Status 房间当前状态 waiting/setup/playing/finished
func (r *Room) Status() string {
	return r.StateMachine.GetCurrentState().GetID()
}

// AddPlayer 加入新玩家，追加到 players 与 turnOrder。
// 只在等待状态且未满员时允许。与动作分发共用 actionMutex，
// 加入不会插到开始游戏的校验与状态切换之间。
func (r *Room) AddPlayer(playerID, name string) error {
	if !validName(name) {
		return ErrInvalidName
	}

	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	if r.Status() != state.StatusWaiting {
		return ErrRoomStarted
	}

	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()

	if _, exists := r.Players[playerID]; exists {
		return ErrPlayerExists
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return ErrRoomFull
	}

	r.Players[playerID] = NewPlayer(playerID, name, len(r.Players))
	r.TurnOrder = append(r.TurnOrder, playerID)
	return nil
}

// GetPlayer 获取单个玩家
func (r *Room) GetPlayer(playerID string) (*Player, bool) {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	p, exists := r.Players[playerID]
	return p, exists
}

// Reconnect 断线重连：刷新在线标记与活跃时间
func (r *Room) Reconnect(playerID string) error {
	p, exists := r.GetPlayer(playerID)
	if !exists {
		return ErrPlayerNotFound
	}
	p.SetConnected(true)
	return nil
}

// MarkDisconnected 连接意外断开时由服务器调用，状态不变
func (r *Room) MarkDisconnected(playerID string) {
	if p, exists := r.GetPlayer(playerID); exists {
		p.SetConnected(false)
	}
}

// Dispatch 将玩家动作交给当前状态处理。动作串行执行，
// 校验与写入之间不会插入其他动作。
func (r *Room) Dispatch(playerID string, actionData []byte) error {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	p, exists := r.GetPlayer(playerID)
	if !exists {
		return ErrPlayerNotFound
	}
	p.Touch()

	current := r.StateMachine.GetCurrentState()
	return current.HandleAction(p, actionData)
}

// Snapshot 生成当前房间快照，玩家线数由已叫号码即时重算
func (r *Room) Snapshot() models.RoomSnapshot {
	status := r.Status()

	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()

	players := make(map[string]models.PlayerSnapshot, len(r.Players))
	for id, p := range r.Players {
		players[id] = models.PlayerSnapshot{
			Name:       p.GetName(),
			Order:      p.GetOrder(),
			Board:      p.GetBoard(),
			Connected:  p.IsConnected(),
			Ready:      p.IsReady(),
			BingoLines: game.CountLines(p.GetBoard(), r.CalledNumbers),
			LastSeen:   p.GetLastSeen(),
		}
	}

	return models.RoomSnapshot{
		ID:               r.ID,
		Host:             r.HostID,
		Status:           status,
		Settings:         r.Settings,
		Players:          players,
		CalledNumbers:    append([]int(nil), r.CalledNumbers...),
		CurrentTurnIndex: r.CurrentTurnIndex,
		TurnOrder:        append([]string(nil), r.TurnOrder...),
		Winner:           r.WinnerID,
		CreatedAt:        r.CreatedAt,
	}
}

// LastGameDuration 最近一局的时长
func (r *Room) LastGameDuration() time.Duration {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()
	return r.lastDuration
}

// Abandoned 判断房间是否已被遗弃：所有玩家离线且最近活跃早于 ttl
func (r *Room) Abandoned(ttl time.Duration) bool {
	r.dataMutex.RLock()
	defer r.dataMutex.RUnlock()

	latest := r.CreatedAt
	for _, p := range r.Players {
		if p.IsConnected() {
			return false
		}
		if seen := p.GetLastSeen(); seen.After(latest) {
			latest = seen
		}
	}
	return time.Since(latest) > ttl
}

// loop 是房间的主循环，定时驱动状态更新
func (r *Room) loop() {
	for {
		select {
		case <-r.ticker.C:
			r.Update()
		case <-r.closeChan:
			r.ticker.Stop()
			return
		}
	}
}

// Update 由主循环调用，驱动状态机的响应式检查。
// 被动状态迁移（如摆盘阶段全员就绪）不经过动作分发，
// 快照推送在这里补上。
func (r *Room) Update() {
	r.actionMutex.Lock()
	defer r.actionMutex.Unlock()

	if r.StateMachine == nil {
		return
	}
	current := r.StateMachine.GetCurrentState()
	if current == nil {
		return
	}

	before := current.GetID()
	current.OnUpdate()

	if after := r.StateMachine.GetCurrentState().GetID(); after != before {
		r.pushSnapshot()
	}
}

// pushSnapshot 广播最新快照并触发落库钩子
func (r *Room) pushSnapshot() {
	snap := r.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Log.Errorf("房间 %s 快照序列化失败: %v", r.ID, err)
		return
	}
	r.broadcaster.BroadcastToRoom(r.ID, network.MsgTypeRoomState, data)

	r.dataMutex.RLock()
	hook := r.statusHook
	r.dataMutex.RUnlock()
	if hook != nil {
		hook(snap)
	}
}

// SetStatusHook 注册被动状态迁移后的回调，用于异步落库
func (r *Room) SetStatusHook(fn func(models.RoomSnapshot)) {
	r.dataMutex.Lock()
	defer r.dataMutex.Unlock()
	r.statusHook = fn
}

// Close 关闭房间，停止主循环
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.closeChan)
	})
}
