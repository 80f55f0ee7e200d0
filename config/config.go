// Package config 描述 sqlbean 的运行配置，可由 YAML 文件加载。
//
// 示例：
//
//	database:
//	  driver: sqlite
//	  path: ./data/app.db
//	  busy_timeout_ms: 5000
//	session:
//	  auto_commit: true
//	  enforce_identity: false
//	log:
//	  level: warn
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sqlbean/logging"
	"sqlbean/validation"
)

// Config 顶层配置
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig 数据库文件与驱动配置
type DatabaseConfig struct {
	// Driver database/sql 驱动名，默认 "sqlite"（modernc.org/sqlite）
	Driver string `yaml:"driver"`
	// Path 数据库文件路径
	Path string `yaml:"path"`
	// BusyTimeoutMS 等待文件锁的毫秒数，0 表示不设置
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
	// Pragmas 打开连接时额外执行的 PRAGMA，例如 "journal_mode(WAL)"
	Pragmas []string `yaml:"pragmas"`
}

// SessionConfig 会话行为开关
type SessionConfig struct {
	// AutoCommit 关闭会话时对未结束事务执行提交（true）或回滚（false）
	AutoCommit bool `yaml:"auto_commit"`
	// EnforceIdentity 插入前按标识列查重，命中时返回重复键错误
	EnforceIdentity bool `yaml:"enforce_identity"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:        "sqlite",
			BusyTimeoutMS: 5000,
		},
		Session: SessionConfig{
			AutoCommit: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load 读取 YAML 文件并覆盖默认值，未知字段视为错误
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse 解析 YAML 内容
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, cfg.Validate()
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validation.ValidateRequired(c.Database.Driver, "database.driver"); err != nil {
		return err
	}
	if err := validation.ValidateNonNegative(c.Database.BusyTimeoutMS, "database.busy_timeout_ms"); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// LogLevel 返回解析后的日志级别
func (c *Config) LogLevel() logging.Level {
	lv, _ := logging.ParseLevel(c.Log.Level)
	return lv
}
