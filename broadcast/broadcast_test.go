package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/bingoserver/network"
	"github.com/wfunc/bingoserver/session"
)

type capturingConn struct {
	sent []uint16
}

func (c *capturingConn) Send(msgID uint16, data []byte) error {
	c.sent = append(c.sent, msgID)
	return nil
}

func (c *capturingConn) Close() error { return nil }

func (c *capturingConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (c *capturingConn) SetHeartbeat(interval time.Duration) {}

func (c *capturingConn) ReadPacket() (*network.Packet, error) {
	return nil, net.ErrClosed
}

func boundSession(id, roomID, playerID string, conn network.Connection) *session.Session {
	s := session.NewSession(id, conn)
	s.Bind(roomID, playerID)
	return s
}

func TestBroadcastToRoom(t *testing.T) {
	manager := session.NewManager()
	broadcaster := NewRoomBroadcaster(manager)

	conn1 := &capturingConn{}
	conn2 := &capturingConn{}
	other := &capturingConn{}
	manager.Add(boundSession("s1", "ROOM01", "player1", conn1))
	manager.Add(boundSession("s2", "ROOM01", "player2", conn2))
	manager.Add(boundSession("s3", "ROOM02", "player3", other))

	if err := broadcaster.BroadcastToRoom("ROOM01", 301, []byte("{}")); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if len(conn1.sent) != 1 || conn1.sent[0] != 301 {
		t.Errorf("player1 should receive msg 301, got %v", conn1.sent)
	}
	if len(conn2.sent) != 1 || conn2.sent[0] != 301 {
		t.Errorf("player2 should receive msg 301, got %v", conn2.sent)
	}
	if len(other.sent) != 0 {
		t.Errorf("ROOM02 session should receive nothing, got %v", other.sent)
	}
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	broadcaster := NewRoomBroadcaster(session.NewManager())

	if err := broadcaster.BroadcastToRoom("ROOM01", 301, nil); err != ErrNoSubscribers {
		t.Errorf("Expected ErrNoSubscribers, got %v", err)
	}
}

func TestSendToPlayer(t *testing.T) {
	manager := session.NewManager()
	broadcaster := NewRoomBroadcaster(manager)

	conn1 := &capturingConn{}
	conn2 := &capturingConn{}
	manager.Add(boundSession("s1", "ROOM01", "player1", conn1))
	manager.Add(boundSession("s2", "ROOM01", "player2", conn2))

	if err := broadcaster.SendToPlayer("ROOM01", "player1", 305, []byte("{}")); err != nil {
		t.Fatalf("SendToPlayer failed: %v", err)
	}

	if len(conn1.sent) != 1 || conn1.sent[0] != 305 {
		t.Errorf("player1 should receive msg 305, got %v", conn1.sent)
	}
	if len(conn2.sent) != 0 {
		t.Errorf("player2 should receive nothing, got %v", conn2.sent)
	}

	if err := broadcaster.SendToPlayer("ROOM01", "ghost", 305, nil); err != ErrNoSubscribers {
		t.Errorf("Expected ErrNoSubscribers for unknown player, got %v", err)
	}
}
