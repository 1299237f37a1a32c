package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
	Development    bool   `mapstructure:"development"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig 游戏相关配置
type GameConfig struct {
	DefaultBoardSize    int `mapstructure:"default_board_size"`
	DefaultWinCondition int `mapstructure:"default_win_condition"`
	DefaultMaxPlayers   int `mapstructure:"default_max_players"`
	RoomIdleMinutes     int `mapstructure:"room_idle_minutes"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("game.default_board_size", 5)
	viper.SetDefault("game.default_win_condition", 5)
	viper.SetDefault("game.default_max_players", 12)
	viper.SetDefault("game.room_idle_minutes", 30)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
