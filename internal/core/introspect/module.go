// Package introspect 提供本地调查管理 HTTP 服务
package introspect

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
)

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Config   *config.Config      `optional:"true"`
	Survey   Surveyor
	Gatherer prometheus.Gatherer `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Server *Server
}

// ProvideServer 提供管理服务
func ProvideServer(in ModuleInput) ModuleOutput {
	cfg := Config{
		Addr:     config.DefaultAdminConfig().ListenAddr,
		Survey:   in.Survey,
		Gatherer: in.Gatherer,
	}
	if in.Config != nil {
		cfg.Addr = in.Config.Admin.ListenAddr
	}
	return ModuleOutput{
		Server: New(cfg),
	}
}

// Module 返回 introspect fx 模块
//
// 仅在模块被加入应用时监听；是否加入由上层根据 Admin.ListenAddr 决定。
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(ProvideServer),
		fx.Invoke(func(lc fx.Lifecycle, s *Server) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return s.Start(ctx)
				},
				OnStop: func(ctx context.Context) error {
					return s.Stop()
				},
			})
		}),
	)
}
