package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, uint32(11), cfg.Survey.MinOverlayVersion)
	assert.Equal(t, 3, cfg.Survey.ThrottleMultiplier)
	assert.True(t, cfg.Metrics.Enabled)
}

// TestConfig_ValidateAggregates 测试多个错误一次性返回
func TestConfig_ValidateAggregates(t *testing.T) {
	cfg := NewConfig()
	cfg.Survey.ThrottleMultiplier = 0
	cfg.Survey.DedupCapacity = -1
	cfg.Survey.SurveyorKeys = []string{"not-base58-0OIl"}
	cfg.Metrics.Namespace = ""

	err := cfg.Validate()
	require.Error(t, err)

	v := NewValidator()
	cfg.Survey.validate(v)
	cfg.Metrics.validate(v)
	assert.Len(t, v.Errors(), 4)

	assert.Contains(t, err.Error(), "survey.throttle_multiplier")
	assert.Contains(t, err.Error(), "survey.surveyor_keys")
	assert.Contains(t, err.Error(), "metrics.namespace")
}

// TestConfig_NilValidate 测试 nil 配置
func TestConfig_NilValidate(t *testing.T) {
	var cfg *Config
	assert.Error(t, cfg.Validate())
}

// TestSurveyConfig_Derived 测试派生值
func TestSurveyConfig_Derived(t *testing.T) {
	cfg := DefaultSurveyConfig()

	t.Run("节流窗口", func(t *testing.T) {
		assert.Equal(t, 15*time.Second, cfg.ThrottleWindow(5*time.Second))
	})

	t.Run("去重窗口默认派生", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, cfg.EffectiveDedupWindow(5*time.Second))
	})

	t.Run("去重窗口显式配置", func(t *testing.T) {
		c := cfg
		c.DedupWindow = Duration(time.Minute)
		assert.Equal(t, time.Minute, c.EffectiveDedupWindow(5*time.Second))
	})

	t.Run("网络ID随口令变化", func(t *testing.T) {
		c := cfg
		c.NetworkPassphrase = "other"
		assert.NotEqual(t, cfg.NetworkID(), c.NetworkID())
	})
}

// TestSurveyConfig_AllowList 测试白名单解析
func TestSurveyConfig_AllowList(t *testing.T) {
	raw := make([]byte, 32)
	raw[0] = 7
	key := base58.Encode(raw)

	cfg := DefaultSurveyConfig()
	cfg.SurveyorKeys = []string{key}

	set, err := cfg.SurveyorAllowList()
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())

	cfg.SurveyorKeys = []string{base58.Encode(raw[:31])}
	_, err = cfg.SurveyorAllowList()
	assert.Error(t, err)
}

// TestLoadFile 测试从文件加载
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.json")
	data := `{
		"survey": {"throttle_multiplier": 5, "dedup_window": "90s", "debug_drops": true},
		"admin": {"listen_addr": ""}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Survey.ThrottleMultiplier)
	assert.Equal(t, 90*time.Second, cfg.Survey.DedupWindow.Duration())
	assert.True(t, cfg.Survey.DebugDrops)
	assert.Empty(t, cfg.Admin.ListenAddr)
	// 未出现的字段保留默认值
	assert.Equal(t, 10, cfg.Survey.MaxRequestsPerWindow)

	t.Run("无效配置", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"survey":{"dedup_capacity":0}}`), 0600))
		_, err := LoadFile(bad)
		assert.Error(t, err)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})
}

// TestDuration_JSON 测试 Duration 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalJSON([]byte(`"1m30s"`)))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, d.UnmarshalJSON([]byte(`2.5`)))
	assert.Equal(t, 2500*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalJSON([]byte(`"bogus"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))

	out, err := Duration(time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1s"`, string(out))
}
