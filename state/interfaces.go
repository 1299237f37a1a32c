// state/interfaces.go
package state

import (
	"github.com/wfunc/bingoserver/game"
)

// Player defines the minimal view of a player that a state needs.
type Player interface {
	GetID() string
	GetName() string
	GetOrder() int
	GetBoard() game.Board
	IsReady() bool
	IsConnected() bool
}

// RoomContext defines what a Room must implement to be driven by the state
// machine. This breaks the import cycle between room and state. Mutating
// methods are only called from within a dispatched action or an OnUpdate
// tick, both of which the room serializes.
type RoomContext interface {
	GetID() string
	GetHostID() string
	GetSettings() game.Settings
	GetPlayers() map[string]Player
	GetTurnOrder() []string
	GetCalledNumbers() []int
	GetTurnIndex() int

	UpdateSettings(s game.Settings) error
	SetPlayerBoard(playerID string, board game.Board) error
	AppendCalledNumber(n int)
	AdvanceTurn()
	DeclareWinner(playerID string)
	ResetForNewGame()

	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error
}
