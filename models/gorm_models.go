// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormRoom 房间持久化模型（jsonb 保存完整快照）
type GormRoom struct {
	gorm.Model
	RoomCode string                 `gorm:"uniqueIndex;not null"`
	Status   string                 `gorm:"not null"`
	Snapshot map[string]interface{} `gorm:"type:jsonb"`
}

// GormGameRecord 对局存档模型
type GormGameRecord struct {
	gorm.Model
	RoomCode    string                 `gorm:"index;not null"`
	Winner      string                 `gorm:"index"`
	Players     map[string]interface{} `gorm:"type:jsonb;not null"`
	CalledCount int                    `gorm:"default:0"`
	Duration    int                    `gorm:"default:0"` // 对局时长(秒)
}

// GormPlayer 玩家持久化模型
type GormPlayer struct {
	gorm.Model
	PlayerID string                 `gorm:"uniqueIndex;not null"`
	Name     string                 `gorm:"not null"`
	Stats    map[string]interface{} `gorm:"type:jsonb"`
}

// 两个持久化实现共用同一套表名
func (GormRoom) TableName() string       { return "rooms" }
func (GormGameRecord) TableName() string { return "game_records" }
func (GormPlayer) TableName() string     { return "players" }

// PlayerStats 玩家统计信息
type PlayerStats struct {
	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	TotalLines int `json:"total_lines"`
}
