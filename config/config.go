// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Survey.SurveyorKeys = []string{"GAB..."}
//
//	// 从 JSON 文件加载（未出现的字段保留默认值）
//	cfg, err := config.LoadFile("survey.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是调查节点的完整配置结构
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Survey 调查协议配置
	Survey SurveyConfig `json:"survey"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`

	// Admin 管理接口配置
	Admin AdminConfig `json:"admin"`

	// Storage 归档存储配置
	Storage StorageConfig `json:"storage"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Survey:   DefaultSurveyConfig(),
		Metrics:  DefaultMetricsConfig(),
		Admin:    DefaultAdminConfig(),
		Storage:  DefaultStorageConfig(),
	}
}

// Validate 验证配置的有效性
//
// 汇总所有子配置的错误后一次性返回。
func (c *Config) Validate() error {
	if c == nil {
		return errNilConfig
	}
	v := NewValidator()
	c.Identity.validate(v)
	c.Survey.validate(v)
	c.Metrics.validate(v)
	c.Admin.validate(v)
	c.Storage.validate(v)
	return v.Err()
}

// FromJSON 从 JSON 数据解析配置
//
// 以默认配置为底，JSON 中出现的字段覆盖默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromJSON(data)
}
