// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"
)

// PostgreSQL 原生 database/sql 实现，与 GORM 实现共用表结构
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS rooms (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) UNIQUE NOT NULL,
            status VARCHAR(16) NOT NULL,
            snapshot JSONB NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            winner VARCHAR(64),
            players JSONB NOT NULL,
            called_count INT DEFAULT 0,
            duration INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS players (
            id SERIAL PRIMARY KEY,
            player_id VARCHAR(64) UNIQUE NOT NULL,
            name VARCHAR(64) NOT NULL,
            stats JSONB DEFAULT '{}'::jsonb,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_rooms_room_code ON rooms(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_winner ON game_records(winner);
        CREATE INDEX IF NOT EXISTS idx_players_player_id ON players(player_id);
    `)

	return err
}

// SaveRoomState 保存房间快照（UPSERT）
func (p *PostgreSQL) SaveRoomState(roomCode, status string, snapshot interface{}) error {
	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO rooms (room_code, status, snapshot)
        VALUES ($1, $2, $3)
        ON CONFLICT (room_code)
        DO UPDATE SET status = $2, snapshot = $3, updated_at = CURRENT_TIMESTAMP
    `

	_, err = p.db.ExecContext(ctx, query, roomCode, status, jsonData)
	return err
}

// LoadRoomState 加载房间快照
func (p *PostgreSQL) LoadRoomState(roomCode string, result interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var data []byte
	query := `SELECT snapshot FROM rooms WHERE room_code = $1 AND deleted_at IS NULL`
	err := p.db.QueryRowContext(ctx, query, roomCode).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRecordNotFound
		}
		return err
	}

	return json.Unmarshal(data, result)
}

// DeleteRoomState 删除房间记录
func (p *PostgreSQL) DeleteRoomState(roomCode string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_code = $1`, roomCode)
	return err
}

// SaveGameRecord 保存对局存档
func (p *PostgreSQL) SaveGameRecord(record interface{}) error {
	jsonData, err := json.Marshal(record)
	if err != nil {
		return err
	}

	var recordMap map[string]interface{}
	if err := json.Unmarshal(jsonData, &recordMap); err != nil {
		return err
	}

	playersJSON, err := json.Marshal(recordMap["players"])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO game_records (room_code, winner, players, called_count, duration)
        VALUES ($1, $2, $3, $4, $5)
    `

	_, err = p.db.ExecContext(ctx, query,
		recordMap["room_id"],
		recordMap["winner"],
		playersJSON,
		recordMap["called_count"],
		recordMap["duration"])

	return err
}

// UpsertPlayer 确保玩家记录存在并刷新昵称
func (p *PostgreSQL) UpsertPlayer(playerID, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        INSERT INTO players (player_id, name)
        VALUES ($1, $2)
        ON CONFLICT (player_id)
        DO UPDATE SET name = $2, updated_at = CURRENT_TIMESTAMP
    `

	_, err := p.db.ExecContext(ctx, query, playerID, name)
	return err
}

// RecordPlayerResult 累加玩家统计
func (p *PostgreSQL) RecordPlayerResult(playerID string, won bool, lines int) error {
	winDelta := 0
	if won {
		winDelta = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        UPDATE players SET stats = jsonb_set(
            jsonb_set(
                jsonb_set(
                    COALESCE(stats, '{}'::jsonb),
                    '{total_games}',
                    to_jsonb(COALESCE((stats->>'total_games')::int, 0) + 1)
                ),
                '{wins}',
                to_jsonb(COALESCE((stats->>'wins')::int, 0) + $2)
            ),
            '{total_lines}',
            to_jsonb(COALESCE((stats->>'total_lines')::int, 0) + $3)
        ), updated_at = CURRENT_TIMESTAMP
        WHERE player_id = $1
    `

	_, err := p.db.ExecContext(ctx, query, playerID, winDelta, lines)
	return err
}

// GetPlayerStats 聚合玩家对局统计
func (p *PostgreSQL) GetPlayerStats(playerID string) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
        SELECT
            COUNT(*) as total_games,
            SUM(CASE WHEN winner = $1 THEN 1 ELSE 0 END) as wins,
            SUM(CASE WHEN winner <> $1 THEN 1 ELSE 0 END) as losses
        FROM game_records
        WHERE jsonb_exists(players, $1)
    `

	var totalGames, wins, losses sql.NullInt64
	if err := p.db.QueryRowContext(ctx, query, playerID).Scan(&totalGames, &wins, &losses); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total_games": totalGames.Int64,
		"wins":        wins.Int64,
		"losses":      losses.Int64,
	}, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
