package config

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否启用 Prometheus 指标
	Enabled bool `json:"enabled"`

	// Namespace 指标命名空间
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "survey",
	}
}

func (c MetricsConfig) validate(v *Validator) {
	if c.Enabled && c.Namespace == "" {
		v.addError("metrics.namespace", "启用指标时不能为空")
	}
}

// AdminConfig 管理接口配置
type AdminConfig struct {
	// ListenAddr HTTP 管理接口监听地址，为空表示不监听
	ListenAddr string `json:"listen_addr"`
}

// DefaultAdminConfig 返回默认管理接口配置
func DefaultAdminConfig() AdminConfig {
	return AdminConfig{ListenAddr: "127.0.0.1:11626"}
}

func (c AdminConfig) validate(_ *Validator) {}
