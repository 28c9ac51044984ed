package survey

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
	"github.com/dep2p/go-dep2p-survey/internal/core/introspect"
	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	coresurvey "github.com/dep2p/go-dep2p-survey/internal/core/survey"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/interfaces"
)

var fxLogger = logger.Logger("survey/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与外部协作者
//  2. Identity → Metrics → Storage → Survey
//  3. Introspect（Admin.ListenAddr 非空时）
//  4. 用户 Fx 选项与 Node 组件注入
//
// storage 必须先于 survey 注册生命周期，关闭时才能先写归档再关引擎。
func buildFxApp(cfg *nodeConfig, node *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg.config),
		fx.Provide(
			func() interfaces.Overlay { return cfg.overlay },
			func() interfaces.QuorumSource { return cfg.quorum },
			func() interfaces.LedgerSource { return cfg.ledger },
		),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 可选注入
	// ════════════════════════════════════════════════════════════════════════
	if cfg.clock != nil {
		modules = append(modules, fx.Provide(func() clock.Clock { return cfg.clock }))
	}
	if cfg.identity != nil {
		modules = append(modules, fx.Supply(fx.Annotated{
			Name:   "preset_identity",
			Target: cfg.identity,
		}))
	}
	if cfg.registry != nil {
		modules = append(modules, fx.Supply(cfg.registry))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		identity.Module(),
		metrics.Module(),
		storage.Module(),
		coresurvey.Module(),
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 管理接口（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.config.Admin.ListenAddr != "" {
		modules = append(modules,
			fx.Provide(func(m *coresurvey.Manager) introspect.Surveyor { return m }),
			introspect.Module(),
		)
		fxLogger.Debug("已加载管理接口", "addr", cfg.config.Admin.ListenAddr)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展与 Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	if len(cfg.userFxOptions) > 0 {
		modules = append(modules, cfg.userFxOptions...)
	}
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// 禁用 Fx 日志输出（避免干扰用户日志）
	modules = append(modules,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...), nil
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入辅助函数
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Identity *identity.Identity
	Manager  *coresurvey.Manager
	Gatherer prometheus.Gatherer
	Storage  engine.Engine

	// 管理接口（可选）
	Admin *introspect.Server `optional:"true"`
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.identity = params.Identity
		node.manager = params.Manager
		node.gatherer = params.Gatherer
		node.storage = params.Storage
		node.admin = params.Admin
	}
}
