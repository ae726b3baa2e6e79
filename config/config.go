package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-ini/ini"
)

const (
	defaultConfigName  = "conf.ini"
	defaultIDName      = "id.lock"
	defaultJournalName = "message.log"
)

// Store drivers
const (
	// DriverMysql records in mysql via xorm
	DriverMysql = "mysql"
	// DriverMongo records in mongodb
	DriverMongo = "mongo"
	// DriverMemory in-process records, for development
	DriverMemory = "memory"
)

// ServerConfig ServerConfig
type ServerConfig struct {
	ID         string
	ListenIP   string
	ListenPort int
	Origin     string
	Secret     string
}

// DatabaseConfig record store settings
type DatabaseConfig struct {
	Driver string
	// Source is the mysql dsn or the mongo uri, depending on Driver
	Source string
	// Name is the mongo database name
	Name string
}

// RedisConfig redis config
type RedisConfig struct {
	Enable   bool
	IP       string
	Port     int
	Password string
}

// PeerConfig PeerConfig
type PeerConfig struct {
	MaxMessageSize int
	WriteWait      int
	PongWait       int
	PingPeriod     int
}

// JournalConfig write-behind journal for chat messages. Off by default:
// synchronous inserts keep history reads consistent with what was relayed.
type JournalConfig struct {
	Enable bool
	File   string
}

// Config 系统配置信息
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Peer     PeerConfig
	Journal  JournalConfig
	DataDir  string
}

// WriteWaitDuration WriteWaitDuration
func (c *PeerConfig) WriteWaitDuration() time.Duration {
	return time.Duration(c.WriteWait) * time.Second
}

// PongWaitDuration PongWaitDuration
func (c *PeerConfig) PongWaitDuration() time.Duration {
	return time.Duration(c.PongWait) * time.Second
}

// PingPeriodDuration PingPeriodDuration
func (c *PeerConfig) PingPeriodDuration() time.Duration {
	return time.Duration(c.PingPeriod) * time.Second
}

// LoadConfig reads the ini file at path; an empty path means ./conf.ini.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigName
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("read config %v: %w", path, err)
	}

	config := Config{DataDir: "./data"}
	if err := cfg.Section("server").MapTo(&config.Server); err != nil {
		return nil, err
	}
	if err := cfg.Section("database").MapTo(&config.Database); err != nil {
		return nil, err
	}
	if err := cfg.Section("redis").MapTo(&config.Redis); err != nil {
		return nil, err
	}
	if err := cfg.Section("peer").MapTo(&config.Peer); err != nil {
		return nil, err
	}
	if err := cfg.Section("journal").MapTo(&config.Journal); err != nil {
		return nil, err
	}

	if config.Database.Driver == "" {
		config.Database.Driver = DriverMemory
	}
	if config.Journal.File == "" {
		config.Journal.File = filepath.Join(config.DataDir, defaultJournalName)
	}

	if _, err := os.Stat(config.DataDir); err != nil {
		if err := os.MkdirAll(config.DataDir, os.ModePerm); err != nil {
			return nil, err
		}
	}

	config.Server.ID, err = BuildServerID(config.DataDir)
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// BuildServerID build a serverID, kept stable across restarts
func BuildServerID(dataDir string) (string, error) {
	idFile := filepath.Join(dataDir, defaultIDName)
	if _, err := os.Stat(idFile); err != nil {
		sid := fmt.Sprintf("%d", time.Now().Unix())
		if err := os.WriteFile(idFile, []byte(sid), 0644); err != nil {
			return "", err
		}
	}
	fb, err := os.ReadFile(idFile)
	if err != nil {
		return "", err
	}
	return string(fb), nil
}
