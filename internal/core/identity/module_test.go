package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dep2p-survey/config"
)

// ============================================================================
// Fx 模块测试
// ============================================================================

func TestModule_Load(t *testing.T) {
	var loaded *Identity

	app := fxtest.New(t,
		fx.NopLogger,
		Module(),
		fx.Invoke(func(id *Identity) { loaded = id }),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, loaded)
	assert.False(t, loaded.ID().IsEmpty())
}

func TestProvideServices(t *testing.T) {
	t.Run("注入身份优先", func(t *testing.T) {
		preset, err := Generate()
		require.NoError(t, err)

		out, err := ProvideServices(ModuleInput{Identity: preset})
		require.NoError(t, err)
		assert.Same(t, preset, out.Identity)
	})

	t.Run("从配置的密钥文件加载", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Identity.KeyFile = filepath.Join(t.TempDir(), "node.pem")

		first, err := ProvideServices(ModuleInput{Config: cfg})
		require.NoError(t, err)
		second, err := ProvideServices(ModuleInput{Config: cfg})
		require.NoError(t, err)
		assert.Equal(t, first.Identity.ID(), second.Identity.ID())
	})

	t.Run("密钥缺失且禁止生成", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Identity.KeyFile = filepath.Join(t.TempDir(), "missing.pem")
		cfg.Identity.AutoGenerate = false

		_, err := ProvideServices(ModuleInput{Config: cfg})
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}
