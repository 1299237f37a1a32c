package state

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	os.Exit(m.Run())
}

// mockPlayer is a test double for the Player interface.
type mockPlayer struct {
	id    string
	name  string
	order int
	board game.Board
	ready bool
}

func (p *mockPlayer) GetID() string        { return p.id }
func (p *mockPlayer) GetName() string      { return p.name }
func (p *mockPlayer) GetOrder() int        { return p.order }
func (p *mockPlayer) GetBoard() game.Board { return p.board }
func (p *mockPlayer) IsReady() bool        { return p.ready }
func (p *mockPlayer) IsConnected() bool    { return true }

// mockRoomContext is a test double for the RoomContext interface.
type mockRoomContext struct {
	id            string
	hostID        string
	settings      game.Settings
	players       map[string]*mockPlayer
	turnOrder     []string
	calledNumbers []int
	turnIndex     int
	winner        string
	resetCalled   bool
	currentState  State
	broadcasts    []uint16
}

func newMockRoom(hostID string) *mockRoomContext {
	return &mockRoomContext{
		id:        "TEST42",
		hostID:    hostID,
		settings:  game.Settings{BoardSize: 3, WinCondition: 1, MaxPlayers: 4},
		players:   make(map[string]*mockPlayer),
		turnOrder: []string{},
	}
}

func (m *mockRoomContext) addPlayer(p *mockPlayer) {
	m.players[p.id] = p
	m.turnOrder = append(m.turnOrder, p.id)
}

func (m *mockRoomContext) GetID() string              { return m.id }
func (m *mockRoomContext) GetHostID() string          { return m.hostID }
func (m *mockRoomContext) GetSettings() game.Settings { return m.settings }
func (m *mockRoomContext) GetTurnOrder() []string     { return m.turnOrder }
func (m *mockRoomContext) GetCalledNumbers() []int    { return m.calledNumbers }
func (m *mockRoomContext) GetTurnIndex() int          { return m.turnIndex }

func (m *mockRoomContext) GetPlayers() map[string]Player {
	players := make(map[string]Player, len(m.players))
	for k, v := range m.players {
		players[k] = v
	}
	return players
}

func (m *mockRoomContext) UpdateSettings(s game.Settings) error {
	m.settings = s
	return nil
}

func (m *mockRoomContext) SetPlayerBoard(playerID string, board game.Board) error {
	if err := game.Validate(board, m.settings.BoardSize); err != nil {
		return err
	}
	p := m.players[playerID]
	p.board = board
	p.ready = true
	return nil
}

func (m *mockRoomContext) AppendCalledNumber(n int) {
	m.calledNumbers = append(m.calledNumbers, n)
}

func (m *mockRoomContext) AdvanceTurn() {
	if len(m.turnOrder) > 0 {
		m.turnIndex = (m.turnIndex + 1) % len(m.turnOrder)
	}
}

func (m *mockRoomContext) DeclareWinner(playerID string) { m.winner = playerID }
func (m *mockRoomContext) ResetForNewGame()              { m.resetCalled = true }

func (m *mockRoomContext) ChangeState(newState State) error {
	m.currentState = newState
	newState.OnEnter()
	return nil
}

func (m *mockRoomContext) Broadcast(msgID uint16, data []byte) error {
	m.broadcasts = append(m.broadcasts, msgID)
	return nil
}

func action(t *testing.T, a Action) []byte {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal action: %v", err)
	}
	return data
}

// 测试棋盘，行 0 = 1,2,3
func orderedBoard() game.Board {
	return game.Board{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
}

func TestWaitingState_StartGame(t *testing.T) {
	host := &mockPlayer{id: "host"}
	guest := &mockPlayer{id: "guest"}
	room := newMockRoom("host")
	room.addPlayer(host)

	waiting := NewWaitingState(room)

	// 只有一个玩家时不能开始
	err := waiting.HandleAction(host, action(t, Action{Type: ActionStartGame}))
	if err != ErrNotEnoughPlayers {
		t.Errorf("Expected ErrNotEnoughPlayers, got %v", err)
	}

	room.addPlayer(guest)

	// 非房主不能开始
	err = waiting.HandleAction(guest, action(t, Action{Type: ActionStartGame}))
	if err != ErrNotHost {
		t.Errorf("Expected ErrNotHost, got %v", err)
	}

	// 房主开始，进入摆盘阶段
	err = waiting.HandleAction(host, action(t, Action{Type: ActionStartGame}))
	if err != nil {
		t.Fatalf("Start game failed: %v", err)
	}
	if room.currentState == nil || room.currentState.GetID() != StatusSetup {
		t.Error("Expected transition to setup state")
	}
}

func TestWaitingState_UpdateSettings(t *testing.T) {
	host := &mockPlayer{id: "host"}
	room := newMockRoom("host")
	room.addPlayer(host)

	waiting := NewWaitingState(room)
	newSettings := game.Settings{BoardSize: 4, WinCondition: 3, MaxPlayers: 6}

	err := waiting.HandleAction(host, action(t, Action{Type: ActionUpdateSettings, Settings: &newSettings}))
	if err != nil {
		t.Fatalf("Update settings failed: %v", err)
	}
	if room.settings.BoardSize != 4 {
		t.Errorf("Settings not applied, got %+v", room.settings)
	}

	// 非法设置被拒绝
	bad := game.Settings{BoardSize: 4, WinCondition: 99, MaxPlayers: 6}
	err = waiting.HandleAction(host, action(t, Action{Type: ActionUpdateSettings, Settings: &bad}))
	if err == nil {
		t.Error("Invalid settings should be rejected")
	}
}

func TestSetupState_SubmitBoardAndAutoAdvance(t *testing.T) {
	host := &mockPlayer{id: "host"}
	guest := &mockPlayer{id: "guest"}
	room := newMockRoom("host")
	room.addPlayer(host)
	room.addPlayer(guest)

	setup := NewSetupState(room)

	// 提交非法棋盘被拒绝
	bad := game.Board{{1, 2, 3}, {4, 5, 6}, {7, 8, 8}}
	if err := setup.HandleAction(host, action(t, Action{Type: ActionSubmitBoard, Board: bad})); err == nil {
		t.Error("Invalid board should be rejected")
	}

	// 全员未就绪时不自动推进
	setup.OnUpdate()
	if room.currentState != nil {
		t.Fatal("Should not advance before all players are ready")
	}

	if err := setup.HandleAction(host, action(t, Action{Type: ActionSubmitBoard, Board: orderedBoard()})); err != nil {
		t.Fatalf("Submit board failed: %v", err)
	}

	// 空棋盘请求服务端随机发盘
	if err := setup.HandleAction(guest, action(t, Action{Type: ActionSubmitBoard})); err != nil {
		t.Fatalf("Auto board failed: %v", err)
	}
	if err := game.Validate(guest.board, 3); err != nil {
		t.Errorf("Dealt board is invalid: %v", err)
	}

	setup.OnUpdate()
	if room.currentState == nil || room.currentState.GetID() != StatusPlaying {
		t.Fatal("Expected transition to playing state once everyone is ready")
	}

	// 再次 OnUpdate 不应重复触发
	previous := room.currentState
	setup.OnUpdate()
	if room.currentState != previous {
		t.Error("Auto advance fired more than once")
	}
}

func TestPlayingState_TurnGuards(t *testing.T) {
	a := &mockPlayer{id: "a", board: orderedBoard(), ready: true}
	b := &mockPlayer{id: "b", board: orderedBoard(), ready: true}
	room := newMockRoom("a")
	room.settings.WinCondition = 3 // 避免第一条线就结束
	room.addPlayer(a)
	room.addPlayer(b)

	playing := NewPlayingState(room)

	// 没轮到 b
	err := playing.HandleAction(b, action(t, Action{Type: ActionCallNumber, Number: 1}))
	if err != ErrNotYourTurn {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}

	// 超出范围
	err = playing.HandleAction(a, action(t, Action{Type: ActionCallNumber, Number: 10}))
	if err != ErrNumberOutOfRange {
		t.Errorf("Expected ErrNumberOutOfRange, got %v", err)
	}

	// 正常叫号，轮转到 b
	err = playing.HandleAction(a, action(t, Action{Type: ActionCallNumber, Number: 1}))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if room.turnIndex != 1 {
		t.Errorf("Expected turn index 1, got %d", room.turnIndex)
	}

	// 已叫过的号码被拒绝，状态不变
	err = playing.HandleAction(b, action(t, Action{Type: ActionCallNumber, Number: 1}))
	if err != ErrAlreadyCalled {
		t.Errorf("Expected ErrAlreadyCalled, got %v", err)
	}
	if room.turnIndex != 1 || len(room.calledNumbers) != 1 {
		t.Error("Rejected call must not change state")
	}
}

func TestPlayingState_TurnRotationWrapsAround(t *testing.T) {
	a := &mockPlayer{id: "a", board: orderedBoard(), ready: true}
	b := &mockPlayer{id: "b", board: orderedBoard(), ready: true}
	room := newMockRoom("a")
	room.settings.WinCondition = 8 // 不会触发胜利
	room.addPlayer(a)
	room.addPlayer(b)

	playing := NewPlayingState(room)

	// 两次叫号后轮转回到 a
	if err := playing.HandleAction(a, action(t, Action{Type: ActionCallNumber, Number: 1})); err != nil {
		t.Fatal(err)
	}
	if err := playing.HandleAction(b, action(t, Action{Type: ActionCallNumber, Number: 4})); err != nil {
		t.Fatal(err)
	}
	if room.turnIndex != 0 {
		t.Errorf("Expected turn to wrap back to index 0, got %d", room.turnIndex)
	}
}

func TestPlayingState_WinDeclared(t *testing.T) {
	a := &mockPlayer{id: "a", board: orderedBoard(), ready: true}
	b := &mockPlayer{id: "b", board: orderedBoard(), ready: true}
	room := newMockRoom("a")
	room.settings.WinCondition = 1
	room.addPlayer(a)
	room.addPlayer(b)
	room.calledNumbers = []int{1, 2}

	playing := NewPlayingState(room)

	// 3 补全第一行，winCondition=1 即获胜
	err := playing.HandleAction(a, action(t, Action{Type: ActionCallNumber, Number: 3}))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if room.winner == "" {
		t.Fatal("Expected a winner to be declared")
	}
	if room.currentState == nil || room.currentState.GetID() != StatusFinished {
		t.Error("Expected transition to finished state")
	}
}

func TestPlayingState_TieBreakByJoinOrder(t *testing.T) {
	// 两人棋盘相同，同一号码让两人同时达标：加入顺序靠前者获胜
	shared := orderedBoard()
	a := &mockPlayer{id: "a", board: shared, ready: true}
	b := &mockPlayer{id: "b", board: shared, ready: true}
	room := newMockRoom("a")
	room.settings.WinCondition = 1
	room.addPlayer(a)
	room.addPlayer(b)
	room.calledNumbers = []int{1, 2}

	playing := NewPlayingState(room)

	if err := playing.HandleAction(a, action(t, Action{Type: ActionCallNumber, Number: 3})); err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if room.winner != "a" {
		t.Errorf("Expected first player in join order to win, got %q", room.winner)
	}
}

func TestFinishedState_Restart(t *testing.T) {
	host := &mockPlayer{id: "host"}
	guest := &mockPlayer{id: "guest"}
	room := newMockRoom("host")
	room.addPlayer(host)
	room.addPlayer(guest)
	room.winner = "guest"

	finished := NewFinishedState(room)

	err := finished.HandleAction(guest, action(t, Action{Type: ActionRestart}))
	if err != ErrNotHost {
		t.Errorf("Expected ErrNotHost, got %v", err)
	}

	err = finished.HandleAction(host, action(t, Action{Type: ActionRestart}))
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	if !room.resetCalled {
		t.Error("Expected room reset on restart")
	}
	if room.currentState == nil || room.currentState.GetID() != StatusWaiting {
		t.Error("Expected transition back to waiting state")
	}
}

func TestStates_UnknownAction(t *testing.T) {
	host := &mockPlayer{id: "host"}
	room := newMockRoom("host")
	room.addPlayer(host)

	states := []State{
		NewWaitingState(room),
		NewSetupState(room),
		NewPlayingState(room),
		NewFinishedState(room),
	}
	for _, s := range states {
		err := s.HandleAction(host, action(t, Action{Type: "bogus"}))
		if err != ErrUnknownAction {
			t.Errorf("State %s: expected ErrUnknownAction, got %v", s.GetID(), err)
		}
	}
}
