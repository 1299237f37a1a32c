package network

const (
	MsgTypeHeartbeat = 1
	MsgTypeError     = 2

	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeReconnect  = 103
	MsgTypeLeaveRoom  = 104
	MsgTypeCloseRoom  = 105

	MsgTypeGameAction = 201

	MsgTypeRoomState    = 301
	MsgTypeGameStart    = 303
	MsgTypeNumberCalled = 304
	MsgTypeBingo        = 305
	MsgTypeGameEnd      = 306
	MsgTypeRoomClosed   = 307
)
