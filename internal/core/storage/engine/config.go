package engine

import (
	"os"
	"time"
)

// Config 存储引擎配置
type Config struct {
	// Path 数据目录路径，InMemory 为 false 时必需
	Path string

	// InMemory 内存模式，不写磁盘
	InMemory bool

	// SyncWrites 是否同步写入
	SyncWrites bool

	// GCInterval 值日志 GC 间隔，0 表示不运行
	GCInterval time.Duration

	// GCDiscardRatio GC 回收阈值
	GCDiscardRatio float64
}

// DefaultConfig 返回内存模式的默认配置
func DefaultConfig() *Config {
	return &Config{
		InMemory:       true,
		GCDiscardRatio: 0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return ErrInvalidConfig
	}
	if c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1 {
		return ErrInvalidConfig
	}
	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	return os.MkdirAll(c.Path, 0700)
}
