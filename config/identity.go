package config

// IdentityConfig 身份配置
//
// 节点身份固定为 Ed25519 密钥，NodeID 即公钥本身。
type IdentityConfig struct {
	// KeyFile 私钥 PEM 文件路径
	// 为空时在内存中生成临时密钥
	KeyFile string `json:"key_file"`

	// AutoGenerate 当密钥文件不存在时是否自动生成并保存
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyFile:      "",
		AutoGenerate: true,
	}
}

func (c IdentityConfig) validate(v *Validator) {
	if c.KeyFile == "" && !c.AutoGenerate {
		v.addError("identity.auto_generate", "未指定 key_file 时必须允许自动生成")
	}
}
