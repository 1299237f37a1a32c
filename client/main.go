// 简单的命令行测试客户端：
//
//	create <name>            创建房间
//	join <code> <name>       加入房间
//	reconnect <room> <pid>   断线重连
//	start                    房主开始游戏
//	board                    请求服务端随机发盘
//	call <n>                 叫号
//	restart                  房主重开
//	close                    房主关闭房间
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeError      = 2
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeReconnect  = 103
	MsgTypeCloseRoom  = 105
	MsgTypeGameAction = 201
	MsgTypeRoomState  = 301
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal: %v", err)
		return
	}
	if err := send(c, msgID, data); err != nil {
		log.Printf("send: %v", err)
	}
}

func readLoop(c *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		if len(data) < 4 {
			continue
		}
		msgID := binary.BigEndian.Uint16(data[0:2])
		length := binary.BigEndian.Uint16(data[2:4])
		payload := data[4 : 4+length]

		switch msgID {
		case MsgTypeRoomState:
			fmt.Printf("<- room state: %s\n", payload)
		case MsgTypeError:
			fmt.Printf("<- error: %s\n", payload)
		default:
			fmt.Printf("<- msg %d: %s\n", msgID, payload)
		}
	}
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: "localhost:8080", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go readLoop(c, done)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			switch fields[0] {
			case "create":
				if len(fields) < 2 {
					fmt.Println("usage: create <name>")
					continue
				}
				sendJSON(c, MsgTypeCreateRoom, map[string]string{"name": fields[1]})
			case "join":
				if len(fields) < 3 {
					fmt.Println("usage: join <code> <name>")
					continue
				}
				sendJSON(c, MsgTypeJoinRoom, map[string]string{"code": fields[1], "name": fields[2]})
			case "reconnect":
				if len(fields) < 3 {
					fmt.Println("usage: reconnect <room> <playerId>")
					continue
				}
				sendJSON(c, MsgTypeReconnect, map[string]string{"roomId": fields[1], "playerId": fields[2]})
			case "start":
				sendJSON(c, MsgTypeGameAction, map[string]string{"type": "start_game"})
			case "board":
				sendJSON(c, MsgTypeGameAction, map[string]string{"type": "submit_board"})
			case "call":
				if len(fields) < 2 {
					fmt.Println("usage: call <n>")
					continue
				}
				n, err := strconv.Atoi(fields[1])
				if err != nil {
					fmt.Println("usage: call <n>")
					continue
				}
				sendJSON(c, MsgTypeGameAction, map[string]interface{}{"type": "call_number", "number": n})
			case "restart":
				sendJSON(c, MsgTypeGameAction, map[string]string{"type": "restart"})
			case "close":
				send(c, MsgTypeCloseRoom, nil)
			case "quit":
				c.Close()
				return
			default:
				fmt.Println("unknown command:", fields[0])
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
