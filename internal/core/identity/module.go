package identity

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
)

// 包级别日志实例
var log = logger.Logger("survey/identity")

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选，使用默认配置）
	Config *config.Config `optional:"true"`

	// Identity 直接注入的身份（可选，优先于配置）
	Identity *Identity `name:"preset_identity" optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Identity *Identity
}

// ProvideServices 提供模块服务
//
// 优先级：注入身份 > KeyFile > 自动生成
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	if input.Identity != nil {
		return ModuleOutput{Identity: input.Identity}, nil
	}

	cfg := config.DefaultIdentityConfig()
	if input.Config != nil {
		cfg = input.Config.Identity
	}

	id, err := LoadOrCreate(cfg.KeyFile, cfg.AutoGenerate)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("加载身份失败: %w", err)
	}

	log.Info("节点身份就绪", "node", id.ID().ShortString())
	return ModuleOutput{Identity: id}, nil
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideServices),
	)
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "identity"
	// Description 模块描述
	Description = "身份管理模块，提供签名密钥与派生的应答加密密钥"
)
