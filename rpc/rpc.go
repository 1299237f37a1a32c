package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/bingoserver/logger"
	"github.com/wfunc/bingoserver/models"
	"github.com/wfunc/bingoserver/room"
	"github.com/wfunc/bingoserver/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the caller
// via the stdlib rpc package before Start.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes room and player inspection over net/rpc.
type AdminService struct {
	roomManager   *room.Manager
	playerService *services.PlayerService
}

func NewAdminService(rm *room.Manager, ps *services.PlayerService) *AdminService {
	return &AdminService{roomManager: rm, playerService: ps}
}

// net/rpc 方法签名：导出方法、导出参数、第二个参数为指针、返回 error

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

type RoomSummary struct {
	Code    string
	Status  string
	Players int
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, r := range a.roomManager.Rooms() {
		snap := r.Snapshot()
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:    snap.ID,
			Status:  snap.Status,
			Players: len(snap.Players),
		})
	}
	return nil
}

type GetRoomArgs struct {
	Code string
}

type GetRoomReply struct {
	Snapshot models.RoomSnapshot
}

func (a *AdminService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, exists := a.roomManager.GetRoom(args.Code)
	if !exists {
		return room.ErrRoomNotFound
	}
	reply.Snapshot = r.Snapshot()
	return nil
}

type GetPlayerArgs struct {
	PlayerID string
}

type GetPlayerReply struct {
	Data map[string]interface{}
}

func (a *AdminService) GetPlayerStats(args *GetPlayerArgs, reply *GetPlayerReply) error {
	data, err := a.playerService.GetPlayerWithStats(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Data = data
	return nil
}
