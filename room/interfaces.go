// room/interfaces.go
package room

// Broadcaster defines the interface for pushing messages to a room's
// subscribed sessions. Defined here to break the import cycle between
// room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
}
