package storage

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine/badger"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/kv"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
)

var log = logger.Logger("core/storage")

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Engine engine.Engine
}

// ProvideServices 提供存储引擎
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := config.DefaultStorageConfig()
	if input.Config != nil {
		cfg = input.Config.Storage
	}

	eng, err := NewEngine(cfg)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Engine: eng}, nil
}

// Module 返回 fx 模块配置
//
// 生命周期:
//   - OnStart: 启动引擎（GC 等后台任务）
//   - OnStop: 关闭引擎
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, eng engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := eng.Start(); err != nil {
				log.Error("存储引擎启动失败", "error", err)
				return err
			}
			log.Debug("存储引擎已启动")
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := eng.Close(); err != nil {
				log.Warn("存储引擎关闭失败", "error", err)
				return err
			}
			log.Debug("存储引擎已关闭")
			return nil
		},
	})
}

// NewEngine 根据配置创建存储引擎
func NewEngine(cfg config.StorageConfig) (engine.Engine, error) {
	engCfg := engine.DefaultConfig()
	engCfg.InMemory = cfg.InMemory()
	engCfg.Path = cfg.DBPath()
	engCfg.SyncWrites = cfg.SyncWrites
	engCfg.GCInterval = time.Duration(cfg.GCInterval)

	log.Debug("创建存储引擎", "path", engCfg.Path, "in_memory", engCfg.InMemory)
	return badger.New(engCfg)
}

// NewKVStore 创建带前缀的 KVStore
func NewKVStore(eng engine.Engine, prefix []byte) *kv.Store {
	return kv.New(eng, prefix)
}

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "storage"
	// Description 模块描述
	Description = "存储模块，提供 BadgerDB 存储引擎"
)
