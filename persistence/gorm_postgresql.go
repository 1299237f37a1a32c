// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/bingoserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(
		&models.GormRoom{},
		&models.GormGameRecord{},
		&models.GormPlayer{},
	); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// toJSONMap 任意结构转为 jsonb 列可用的 map
func toJSONMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRoomState 保存房间快照（UPSERT）
func (p *GormPostgreSQL) SaveRoomState(roomCode, status string, snapshot interface{}) error {
	snapMap, err := toJSONMap(snapshot)
	if err != nil {
		return err
	}

	var room models.GormRoom
	result := p.db.Where("room_code = ?", roomCode).First(&room)

	if result.Error == gorm.ErrRecordNotFound {
		room = models.GormRoom{
			RoomCode: roomCode,
			Status:   status,
			Snapshot: snapMap,
		}
		return p.db.Create(&room).Error
	} else if result.Error != nil {
		return result.Error
	}

	room.Status = status
	room.Snapshot = snapMap
	return p.db.Save(&room).Error
}

// LoadRoomState 加载房间快照
func (p *GormPostgreSQL) LoadRoomState(roomCode string, result interface{}) error {
	var room models.GormRoom
	if err := p.db.Where("room_code = ?", roomCode).First(&room).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrRecordNotFound
		}
		return err
	}

	data, err := json.Marshal(room.Snapshot)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// DeleteRoomState 删除房间持久化记录（房主关闭房间时）
func (p *GormPostgreSQL) DeleteRoomState(roomCode string) error {
	return p.db.Where("room_code = ?", roomCode).Delete(&models.GormRoom{}).Error
}

// SaveGameRecord 保存对局存档
func (p *GormPostgreSQL) SaveGameRecord(record interface{}) error {
	rec, ok := record.(models.GameRecord)
	if !ok {
		return fmt.Errorf("invalid game record type %T", record)
	}

	playersMap := make(map[string]interface{}, len(rec.Players))
	for _, pi := range rec.Players {
		entry, err := toJSONMap(pi)
		if err != nil {
			return err
		}
		playersMap[pi.PlayerID] = entry
	}

	gameRecord := models.GormGameRecord{
		RoomCode:    rec.RoomID,
		Winner:      rec.Winner,
		Players:     playersMap,
		CalledCount: rec.CalledCount,
		Duration:    rec.Duration,
	}

	return p.db.Create(&gameRecord).Error
}

// UpsertPlayer 确保玩家记录存在并刷新昵称
func (p *GormPostgreSQL) UpsertPlayer(playerID, name string) error {
	var player models.GormPlayer
	result := p.db.Where("player_id = ?", playerID).First(&player)

	if result.Error == gorm.ErrRecordNotFound {
		player = models.GormPlayer{
			PlayerID: playerID,
			Name:     name,
			Stats:    map[string]interface{}{},
		}
		return p.db.Create(&player).Error
	} else if result.Error != nil {
		return result.Error
	}

	return p.db.Model(&player).Update("name", name).Error
}

// RecordPlayerResult 累加玩家统计（事务内的 jsonb 原子更新）
func (p *GormPostgreSQL) RecordPlayerResult(playerID string, won bool, lines int) error {
	winDelta := 0
	if won {
		winDelta = 1
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		var player models.GormPlayer
		if err := tx.Where("player_id = ?", playerID).First(&player).Error; err != nil {
			return err
		}

		return tx.Model(&player).Update("stats", gorm.Expr(`
            jsonb_set(
                jsonb_set(
                    jsonb_set(
                        COALESCE(stats, '{}'::jsonb),
                        '{total_games}',
                        to_jsonb(COALESCE((stats->>'total_games')::int, 0) + 1)
                    ),
                    '{wins}',
                    to_jsonb(COALESCE((stats->>'wins')::int, 0) + ?)
                ),
                '{total_lines}',
                to_jsonb(COALESCE((stats->>'total_lines')::int, 0) + ?)
            )
        `, winDelta, lines)).Error
	})
}

// GetPlayerStats 聚合玩家对局统计
func (p *GormPostgreSQL) GetPlayerStats(playerID string) (map[string]interface{}, error) {
	var stats map[string]interface{}

	err := p.db.Raw(
		`
        SELECT
            COUNT(*) as total_games,
            SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END) as wins,
            SUM(CASE WHEN winner <> ? THEN 1 ELSE 0 END) as losses
        FROM game_records
        WHERE jsonb_exists(players, ?)`,
		playerID, playerID, playerID,
	).Scan(&stats).Error

	return stats, err
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
