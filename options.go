package survey

import (
	"errors"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/identity"
)

// Option 用户配置选项函数
type Option func(*nodeConfig) error

// nodeConfig 内部选项结构
type nodeConfig struct {
	// 基础配置（默认 config.NewConfig()）
	config *config.Config

	// 外部协作者
	overlay Overlay
	quorum  QuorumSource
	ledger  LedgerSource

	// 可选注入
	clock    clock.Clock
	identity *identity.Identity
	registry *prometheus.Registry

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newNodeConfig 创建默认选项
func newNodeConfig() *nodeConfig {
	return &nodeConfig{
		config: config.NewConfig(),
	}
}

// apply 依次应用选项
func (c *nodeConfig) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.overlay == nil || c.quorum == nil || c.ledger == nil {
		return ErrMissingCollaborator
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置替换默认配置
//
// 应放在其他细粒度选项之前，否则会覆盖它们的设置。
func WithConfig(cfg *config.Config) Option {
	return func(c *nodeConfig) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		c.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(c *nodeConfig) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		c.config = cfg
		return nil
	}
}

// WithSurveyorKeys 设置调查者白名单（Base58 NodeID）
func WithSurveyorKeys(keys ...string) Option {
	return func(c *nodeConfig) error {
		c.config.Survey.SurveyorKeys = append([]string(nil), keys...)
		return nil
	}
}

// WithNetworkPassphrase 设置网络口令，用于签名域隔离
func WithNetworkPassphrase(passphrase string) Option {
	return func(c *nodeConfig) error {
		if passphrase == "" {
			return errors.New("network passphrase is empty")
		}
		c.config.Survey.NetworkPassphrase = passphrase
		return nil
	}
}

// WithKeyFile 设置身份私钥文件
func WithKeyFile(path string) Option {
	return func(c *nodeConfig) error {
		c.config.Identity.KeyFile = path
		return nil
	}
}

// WithDataDir 设置归档目录；为空表示仅保存在内存中
func WithDataDir(dir string) Option {
	return func(c *nodeConfig) error {
		c.config.Storage.DataDir = dir
		return nil
	}
}

// WithAdminAddr 设置管理接口监听地址；为空表示不监听
func WithAdminAddr(addr string) Option {
	return func(c *nodeConfig) error {
		c.config.Admin.ListenAddr = addr
		return nil
	}
}

// WithThrottleMultiplier 设置节流窗口相对账本关闭间隔的倍数
func WithThrottleMultiplier(n int) Option {
	return func(c *nodeConfig) error {
		if n <= 0 {
			return errors.New("throttle multiplier must be positive")
		}
		c.config.Survey.ThrottleMultiplier = n
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              协作者注入
// ════════════════════════════════════════════════════════════════════════════

// WithOverlay 设置外部传输层
func WithOverlay(o Overlay) Option {
	return func(c *nodeConfig) error {
		c.overlay = o
		return nil
	}
}

// WithQuorum 设置传递仲裁集数据源
func WithQuorum(q QuorumSource) Option {
	return func(c *nodeConfig) error {
		c.quorum = q
		return nil
	}
}

// WithLedger 设置账本进度数据源
func WithLedger(l LedgerSource) Option {
	return func(c *nodeConfig) error {
		c.ledger = l
		return nil
	}
}

// WithClock 注入时钟（测试用 clock.NewMock()）
func WithClock(clk clock.Clock) Option {
	return func(c *nodeConfig) error {
		c.clock = clk
		return nil
	}
}

// WithIdentitySeed 使用 32 字节 Ed25519 种子作为节点身份
//
// 优先于配置中的 KeyFile。
func WithIdentitySeed(seed []byte) Option {
	return func(c *nodeConfig) error {
		id, err := identity.FromSeed(seed)
		if err != nil {
			return err
		}
		c.identity = id
		return nil
	}
}

// WithRegistry 使用外部 Prometheus 注册表
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *nodeConfig) error {
		c.registry = reg
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(c *nodeConfig) error {
		c.userFxOptions = append(c.userFxOptions, opts...)
		return nil
	}
}
