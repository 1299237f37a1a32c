// persistence/interface.go
package persistence

import (
	"errors"
)

// Database 数据库接口。两个实现：GORM（默认）与原生 database/sql。
type Database interface {
	SaveRoomState(roomCode, status string, snapshot interface{}) error
	LoadRoomState(roomCode string, result interface{}) error
	DeleteRoomState(roomCode string) error
	SaveGameRecord(record interface{}) error
	UpsertPlayer(playerID, name string) error
	RecordPlayerResult(playerID string, won bool, lines int) error
	GetPlayerStats(playerID string) (map[string]interface{}, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = errors.New("record not found")
)
