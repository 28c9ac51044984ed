package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`

	// Registry 外部提供的注册表（可选）
	Registry *prometheus.Registry `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Metrics  *SurveyMetrics
	Gatherer prometheus.Gatherer
}

// ProvideServices 提供模块服务
//
// 指标禁用时 Metrics 为 nil，注册表仍然提供。
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := config.DefaultMetricsConfig()
	if input.Config != nil {
		cfg = input.Config.Metrics
	}

	reg := input.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	if !cfg.Enabled {
		return ModuleOutput{Gatherer: reg}, nil
	}

	m, err := NewSurveyMetrics(reg, cfg.Namespace)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Metrics: m, Gatherer: reg}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "metrics"
	// Description 模块描述
	Description = "调查指标模块，提供 Prometheus 注册表与调查计数器"
)
