package survey

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/history"
	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
)

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config   *config.Config `optional:"true"`
	Identity *identity.Identity

	// 外部协作者
	Overlay interfaces.Overlay
	Quorum  interfaces.QuorumSource
	Ledger  interfaces.LedgerSource

	Clock   clock.Clock            `optional:"true"`
	Metrics *metrics.SurveyMetrics `optional:"true"`
	Storage engine.Engine          `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Manager *Manager
	Service interfaces.SurveyService
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := config.NewConfig()
	if input.Config != nil {
		cfg = input.Config
	}

	var archive *history.Archive
	if input.Storage != nil {
		archive = history.NewArchive(input.Storage, cfg.Storage.RetainSessions)
	}

	m, err := New(Params{
		Identity: input.Identity,
		Overlay:  input.Overlay,
		Quorum:   input.Quorum,
		Ledger:   input.Ledger,
		Config:   cfg.Survey,
		Clock:    input.Clock,
		Metrics:  input.Metrics,
		Archive:  archive,
	})
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Manager: m, Service: m}, nil
}

// Module 返回 fx 模块配置
//
// 生命周期:
//   - OnStart: 启动后台节拍
//   - OnStop: 结束进行中的会话（写入归档）并停止节拍
func Module() fx.Option {
	return fx.Module("survey",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return m.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			m.StopSurvey()
			return m.Stop()
		},
	})
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "survey"
	// Description 模块描述
	Description = "拓扑调查模块，提供调查会话管理、消息中继与结果汇总"
)
