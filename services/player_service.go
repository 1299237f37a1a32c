// services/player_service.go
package services

import (
	"fmt"

	"github.com/wfunc/bingoserver/models"
	"github.com/wfunc/bingoserver/persistence"
)

type PlayerService struct {
	db persistence.Database
}

func NewPlayerService(db persistence.Database) *PlayerService {
	return &PlayerService{db: db}
}

// RecordGameResult 一局结束后存档：写入对局记录并累加每个玩家的统计
func (s *PlayerService) RecordGameResult(record models.GameRecord) error {
	if err := s.db.SaveGameRecord(record); err != nil {
		return fmt.Errorf("save game record: %w", err)
	}

	for _, p := range record.Players {
		if err := s.db.UpsertPlayer(p.PlayerID, p.Name); err != nil {
			return fmt.Errorf("upsert player %s: %w", p.PlayerID, err)
		}
		if err := s.db.RecordPlayerResult(p.PlayerID, p.Outcome == "win", p.BingoLines); err != nil {
			return fmt.Errorf("record result for %s: %w", p.PlayerID, err)
		}
	}
	return nil
}

// GetPlayerWithStats 获取玩家的对局统计
func (s *PlayerService) GetPlayerWithStats(playerID string) (map[string]interface{}, error) {
	stats, err := s.db.GetPlayerStats(playerID)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"player_id": playerID,
		"stats":     stats,
	}, nil
}
