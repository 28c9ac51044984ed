package config

import (
	"time"

	sha256 "github.com/minio/sha256-simd"

	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

// SurveyConfig 拓扑调查协议配置
type SurveyConfig struct {
	// NetworkPassphrase 网络口令，派生签名域 NetworkID
	NetworkPassphrase string `json:"network_passphrase"`

	// SurveyorKeys 调查者白名单（Base58 NodeID）
	// 为空时退化为传递仲裁集成员资格
	SurveyorKeys []string `json:"surveyor_keys,omitempty"`

	// OverlayVersion 本节点声明的 overlay 协议版本
	OverlayVersion uint32 `json:"overlay_version"`

	// MinOverlayVersion 支持调查消息的最低 overlay 版本
	// 低于此版本的对端不会收到转发
	MinOverlayVersion uint32 `json:"min_overlay_version"`

	// ThrottleMultiplier 节流窗口 = ThrottleMultiplier × 预期账本关闭时间
	ThrottleMultiplier int `json:"throttle_multiplier"`

	// MaxRequestsPerWindow 每个节流窗口内本节点最多发出的请求数
	MaxRequestsPerWindow int `json:"max_requests_per_window"`

	// MaxRequestsPerLedger 每个调查者在单个账本内最多被转发的不同目标数
	MaxRequestsPerLedger int `json:"max_requests_per_ledger"`

	// NumLedgersBeforeIgnore 消息账本序号允许落后的账本数
	NumLedgersBeforeIgnore uint32 `json:"num_ledgers_before_ignore"`

	// DedupCapacity 去重缓存容量上限
	DedupCapacity int `json:"dedup_capacity"`

	// DedupWindow 去重条目有效期
	// 为 0 时取 NumLedgersBeforeIgnore × 预期账本关闭时间
	DedupWindow Duration `json:"dedup_window"`

	// PeerMessageRate 每个对端每秒最多接受的调查消息数，0 表示不限制
	PeerMessageRate float64 `json:"peer_message_rate"`

	// PeerMessageBurst 每个对端的突发上限
	PeerMessageBurst int `json:"peer_message_burst"`

	// DebugDrops 记录静默丢弃的调试日志（仅限非生产环境）
	DebugDrops bool `json:"debug_drops"`
}

// DefaultSurveyConfig 返回默认调查配置
func DefaultSurveyConfig() SurveyConfig {
	return SurveyConfig{
		NetworkPassphrase:      "dep2p survey network",
		OverlayVersion:         12,
		MinOverlayVersion:      11,
		ThrottleMultiplier:     3,
		MaxRequestsPerWindow:   10,
		MaxRequestsPerLedger:   10,
		NumLedgersBeforeIgnore: 6,
		DedupCapacity:          4096,
		PeerMessageBurst:       64,
	}
}

func (c SurveyConfig) validate(v *Validator) {
	if c.NetworkPassphrase == "" {
		v.addError("survey.network_passphrase", "不能为空")
	}
	if c.OverlayVersion == 0 {
		v.addError("survey.overlay_version", "必须大于 0")
	}
	if c.ThrottleMultiplier <= 0 {
		v.addError("survey.throttle_multiplier", "必须大于 0，当前 %d", c.ThrottleMultiplier)
	}
	if c.MaxRequestsPerWindow <= 0 {
		v.addError("survey.max_requests_per_window", "必须大于 0，当前 %d", c.MaxRequestsPerWindow)
	}
	if c.MaxRequestsPerLedger <= 0 {
		v.addError("survey.max_requests_per_ledger", "必须大于 0，当前 %d", c.MaxRequestsPerLedger)
	}
	if c.NumLedgersBeforeIgnore == 0 {
		v.addError("survey.num_ledgers_before_ignore", "必须大于 0")
	}
	if c.DedupCapacity <= 0 {
		v.addError("survey.dedup_capacity", "必须大于 0，当前 %d", c.DedupCapacity)
	}
	if c.DedupWindow < 0 {
		v.addError("survey.dedup_window", "不能为负")
	}
	if c.PeerMessageRate < 0 {
		v.addError("survey.peer_message_rate", "不能为负")
	}
	if c.PeerMessageRate > 0 && c.PeerMessageBurst <= 0 {
		v.addError("survey.peer_message_burst", "启用限速时必须大于 0，当前 %d", c.PeerMessageBurst)
	}
	if _, err := types.ParseNodeSet(c.SurveyorKeys); err != nil {
		v.addError("survey.surveyor_keys", "%v", err)
	}
}

// SurveyorAllowList 解析调查者白名单
func (c SurveyConfig) SurveyorAllowList() (types.NodeSet, error) {
	return types.ParseNodeSet(c.SurveyorKeys)
}

// NetworkID 返回网络口令派生的签名域
func (c SurveyConfig) NetworkID() [32]byte {
	return sha256.Sum256([]byte(c.NetworkPassphrase))
}

// ThrottleWindow 根据预期账本关闭时间计算节流窗口
func (c SurveyConfig) ThrottleWindow(expectedClose time.Duration) time.Duration {
	return time.Duration(c.ThrottleMultiplier) * expectedClose
}

// EffectiveDedupWindow 计算去重窗口
func (c SurveyConfig) EffectiveDedupWindow(expectedClose time.Duration) time.Duration {
	if c.DedupWindow > 0 {
		return c.DedupWindow.Duration()
	}
	return time.Duration(c.NumLedgersBeforeIgnore) * expectedClose
}
