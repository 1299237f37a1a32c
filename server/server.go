package server

import (
	"encoding/json"
	"net/http"
	stdrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/bingoserver/broadcast"
	"github.com/wfunc/bingoserver/config"
	"github.com/wfunc/bingoserver/game"
	"github.com/wfunc/bingoserver/logger"
	"github.com/wfunc/bingoserver/models"
	"github.com/wfunc/bingoserver/monitor"
	"github.com/wfunc/bingoserver/network"
	"github.com/wfunc/bingoserver/persistence"
	"github.com/wfunc/bingoserver/room"
	adminrpc "github.com/wfunc/bingoserver/rpc"
	"github.com/wfunc/bingoserver/services"
	"github.com/wfunc/bingoserver/session"
	"github.com/wfunc/bingoserver/state"
	"github.com/wfunc/bingoserver/timer"
)

type GameServer struct {
	addr            string
	monitorAddr     string
	upgrader        websocket.Upgrader
	roomManager     *room.Manager
	sessionManager  *session.Manager
	playerService   *services.PlayerService
	db              persistence.Database
	broadcaster     broadcast.Broadcaster
	rpcServer       *adminrpc.Server
	monitor         *monitor.Monitor
	timers          *timer.Manager
	defaultSettings game.Settings
	idleTTL         time.Duration
	shutdownChan    chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		monitorAddr:    cfg.Server.MonitorAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		playerService:  services.NewPlayerService(db),
		db:             db,
		monitor:        monitor.NewMonitor("bingoserver"),
		timers:         timer.NewManager(),
		defaultSettings: game.Settings{
			BoardSize:    cfg.Game.DefaultBoardSize,
			WinCondition: cfg.Game.DefaultWinCondition,
			MaxPlayers:   cfg.Game.DefaultMaxPlayers,
		},
		idleTTL:      time.Duration(cfg.Game.RoomIdleMinutes) * time.Minute,
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)

	// 初始化RPC服务器
	rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := adminrpc.NewAdminService(s.roomManager, s.playerService)
	stdrpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.monitorAddr)

	// 定期清理被遗弃的房间
	s.timers.AddTimer(time.Minute, time.Minute, s.sweepAbandonedRooms)

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) sweepAbandonedRooms() {
	removed := s.roomManager.SweepAbandoned(s.idleTTL)
	for _, code := range removed {
		logger.Log.Infof("Swept abandoned room %s", code)
		if err := s.db.DeleteRoomState(code); err != nil {
			logger.Log.Warnf("Failed to delete room state %s: %v", code, err)
		}
	}
	if len(removed) > 0 {
		s.monitor.SetActiveRooms(s.roomManager.Count())
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// handleDisconnect 连接意外断开：标记玩家离线并推送新快照，房间保留
func (s *GameServer) handleDisconnect(sess *session.Session) {
	roomID, playerID := sess.Binding()
	if roomID == "" {
		return
	}
	// 先解绑再广播，避免向已关闭的连接推送
	sess.Unbind()

	if r, exists := s.roomManager.GetRoom(roomID); exists {
		r.MarkDisconnected(playerID)
		s.pushSnapshot(r)
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeReconnect:
		s.handleReconnect(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeCloseRoom:
		s.handleCloseRoom(sess)
	case network.MsgTypeGameAction:
		s.handleGameAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// sendError 把校验错误回给发起方，不中断游戏
func (s *GameServer) sendError(sess *session.Session, err error) {
	data, _ := json.Marshal(models.ErrorEvent{Message: err.Error()})
	sess.Send(network.MsgTypeError, data)
}

// pushSnapshot 向房间所有订阅会话推送最新快照，并异步落库
func (s *GameServer) pushSnapshot(r *room.Room) {
	snap := r.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Log.Errorf("Failed to marshal snapshot for room %s: %v", r.ID, err)
		return
	}
	s.broadcaster.BroadcastToRoom(r.ID, network.MsgTypeRoomState, data)
	s.persistSnapshot(snap)
}

func (s *GameServer) persistSnapshot(snap models.RoomSnapshot) {
	go func() {
		if err := s.db.SaveRoomState(snap.ID, snap.Status, snap); err != nil {
			logger.Log.Warnf("Failed to persist room %s: %v", snap.ID, err)
		}
	}()
}

type createRoomRequest struct {
	Name     string         `json:"name"`
	Settings *game.Settings `json:"settings,omitempty"`
}

type joinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type reconnectRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type roomJoinedReply struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req createRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	settings := s.defaultSettings
	if req.Settings != nil {
		settings = *req.Settings
	}

	playerID := game.NewPlayerID()
	r, err := s.roomManager.CreateRoom(playerID, req.Name, settings, s.broadcaster)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	// 被动状态迁移（摆盘完成自动开局）由房间自行广播，这里只挂落库
	r.SetStatusHook(s.persistSnapshot)

	sess.Bind(r.ID, playerID)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	logger.Log.Infof("Session %s created room %s as %s", sess.GetID(), r.ID, playerID)

	reply, _ := json.Marshal(roomJoinedReply{RoomID: r.ID, PlayerID: playerID})
	sess.Send(network.MsgTypeCreateRoom, reply)
	s.pushSnapshot(r)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req joinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	r, exists := s.roomManager.GetRoom(req.Code)
	if !exists {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}

	playerID := game.NewPlayerID()
	if err := r.AddPlayer(playerID, req.Name); err != nil {
		s.sendError(sess, err)
		return
	}

	sess.Bind(r.ID, playerID)
	logger.Log.Infof("Session %s joined room %s as %s", sess.GetID(), r.ID, playerID)

	reply, _ := json.Marshal(roomJoinedReply{RoomID: r.ID, PlayerID: playerID})
	sess.Send(network.MsgTypeJoinRoom, reply)
	s.pushSnapshot(r)
}

// handleReconnect 客户端持有的会话信息匹配现有房间与玩家时恢复连接
func (s *GameServer) handleReconnect(sess *session.Session, packet *network.Packet) {
	var req reconnectRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}

	if err := r.Reconnect(req.PlayerID); err != nil {
		s.sendError(sess, err)
		return
	}

	sess.Bind(r.ID, req.PlayerID)
	logger.Log.Infof("Session %s reconnected to room %s as %s", sess.GetID(), r.ID, req.PlayerID)

	reply, _ := json.Marshal(roomJoinedReply{RoomID: r.ID, PlayerID: req.PlayerID})
	sess.Send(network.MsgTypeReconnect, reply)
	s.pushSnapshot(r)
}

// handleLeaveRoom 主动离开：等同断线，玩家条目保留以便重连
func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	s.handleDisconnect(sess)
}

// handleCloseRoom 房主关闭房间：广播关闭事件、踢出所有会话并删除房间
func (s *GameServer) handleCloseRoom(sess *session.Session) {
	roomID, playerID := sess.Binding()
	if roomID == "" {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return
	}
	if r.HostID != playerID {
		s.sendError(sess, state.ErrNotHost)
		return
	}

	s.broadcaster.BroadcastToRoom(roomID, network.MsgTypeRoomClosed, nil)
	for _, member := range s.sessionManager.GetByRoomID(roomID) {
		member.Unbind()
	}

	s.roomManager.RemoveRoom(roomID)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	if err := s.db.DeleteRoomState(roomID); err != nil {
		logger.Log.Warnf("Failed to delete room state %s: %v", roomID, err)
	}
	logger.Log.Infof("Room %s closed by host %s", roomID, playerID)
}

func (s *GameServer) handleGameAction(sess *session.Session, packet *network.Packet) {
	roomID, playerID := sess.Binding()
	if roomID == "" {
		logger.Log.Warnf("Session %s sent game action but is not in a room", sess.GetID())
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		logger.Log.Errorf("Room %s not found for session %s", roomID, sess.GetID())
		sess.Unbind()
		return
	}

	start := time.Now()
	err := r.Dispatch(playerID, packet.Data)
	s.monitor.ObserveActionLatency(time.Since(start))

	if err != nil {
		s.sendError(sess, err)
		return
	}

	var action state.Action
	if json.Unmarshal(packet.Data, &action) == nil && action.Type == state.ActionCallNumber {
		s.monitor.IncNumbersCalled()
	}

	s.pushSnapshot(r)

	if r.Status() == state.StatusFinished {
		s.monitor.IncGamesFinished()
		s.recordFinishedGame(r)
	}
}

// recordFinishedGame 一局结束后异步存档
func (s *GameServer) recordFinishedGame(r *room.Room) {
	snap := r.Snapshot()
	record := models.GameRecord{
		RoomID:      snap.ID,
		Winner:      snap.Winner,
		CalledCount: len(snap.CalledNumbers),
		Duration:    int(r.LastGameDuration().Seconds()),
		CreatedAt:   time.Now(),
	}
	for id, p := range snap.Players {
		outcome := "lose"
		if id == snap.Winner {
			outcome = "win"
		}
		record.Players = append(record.Players, models.PlayerInfo{
			PlayerID:   id,
			Name:       p.Name,
			Outcome:    outcome,
			BingoLines: p.BingoLines,
		})
	}

	go func() {
		if err := s.playerService.RecordGameResult(record); err != nil {
			logger.Log.Errorf("Failed to record game result for room %s: %v", record.RoomID, err)
		}
	}()
}
