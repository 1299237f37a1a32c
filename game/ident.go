// game/ident.go
package game

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// 房间码字母表：32 个字符，排除易混淆的 0/O/1/I
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomCodeLength 房间码长度
const RoomCodeLength = 6

// NewRoomCode 生成新的房间码
func NewRoomCode() string {
	var sb strings.Builder
	sb.Grow(RoomCodeLength)
	for i := 0; i < RoomCodeLength; i++ {
		sb.WriteByte(roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))])
	}
	return sb.String()
}

// NormalizeRoomCode canonicalizes user input: trimmed, uppercase.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidRoomCode reports whether code is a canonical room code.
func ValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(roomCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// NewPlayerID 生成玩家唯一标识，客户端保存用于断线重连
func NewPlayerID() string {
	return "player_" + uuid.New().String()
}
