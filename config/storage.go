package config

import (
	"path/filepath"
	"time"
)

// StorageConfig 存储配置
//
// 调查会话结束后结果归档到 BadgerDB。DataDir 为空时使用内存模式，
// 进程退出即丢弃。
//
// 数据目录结构：
//
//	${DataDir}/
//	└── survey.db/          # BadgerDB 数据库
type StorageConfig struct {
	// DataDir 数据目录路径，为空表示内存模式
	DataDir string `json:"data_dir"`

	// SyncWrites 是否同步写入
	SyncWrites bool `json:"sync_writes"`

	// GCInterval 值日志 GC 间隔，0 表示不运行
	GCInterval Duration `json:"gc_interval"`

	// RetainSessions 最多保留的归档会话数
	RetainSessions int `json:"retain_sessions"`
}

// DefaultStorageConfig 返回默认的存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		GCInterval:     Duration(10 * time.Minute),
		RetainSessions: 32,
	}
}

func (c StorageConfig) validate(v *Validator) {
	if c.RetainSessions <= 0 {
		v.addError("storage.retain_sessions", "必须大于 0，当前 %d", c.RetainSessions)
	}
	if c.GCInterval < 0 {
		v.addError("storage.gc_interval", "不能为负")
	}
}

// InMemory 是否为内存模式
func (c StorageConfig) InMemory() bool {
	return c.DataDir == ""
}

// DBPath 返回 BadgerDB 数据库路径
func (c StorageConfig) DBPath() string {
	if c.InMemory() {
		return ""
	}
	return filepath.Join(c.DataDir, "survey.db")
}
