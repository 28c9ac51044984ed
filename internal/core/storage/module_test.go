package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-dep2p-survey/config"
	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
)

func TestModule_Load(t *testing.T) {
	var eng engine.Engine

	app := fxtest.New(t,
		fx.NopLogger,
		Module(),
		fx.Populate(&eng),
	)
	app.RequireStart()

	require.NotNil(t, eng)
	require.NoError(t, eng.Put([]byte("k"), []byte("v")))

	app.RequireStop()

	// 停止后引擎已关闭
	assert.ErrorIs(t, eng.Put([]byte("k"), []byte("v")), engine.ErrClosed)
}

func TestNewEngine_DataDir(t *testing.T) {
	cfg := config.DefaultStorageConfig()
	cfg.DataDir = t.TempDir()

	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	defer eng.Close()

	store := NewKVStore(eng, []byte("t/"))
	require.NoError(t, store.Put([]byte("a"), []byte("b")))
	ok, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.True(t, ok)
}
