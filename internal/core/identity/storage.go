package identity

import (
	"crypto/ed25519"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// pemTypeSeed 私钥种子 PEM 类型
const pemTypeSeed = "ED25519 PRIVATE KEY"

// ============================================================================
//                              私钥持久化
// ============================================================================

// EncodePEM 将身份的私钥种子编码为 PEM
func EncodePEM(id *Identity) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: pemTypeSeed, Bytes: id.Seed()})
}

// DecodePEM 从 PEM 数据解析身份
func DecodePEM(data []byte) (*Identity, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemTypeSeed {
		return nil, ErrInvalidPEM
	}
	switch len(block.Bytes) {
	case ed25519.SeedSize:
		return FromSeed(block.Bytes)
	case ed25519.PrivateKeySize:
		return New(ed25519.PrivateKey(block.Bytes))
	default:
		return nil, ErrInvalidKeySize
	}
}

// Save 保存身份到 PEM 文件
//
// 文件权限 0600，使用原子写。
func Save(id *Identity, path string) error {
	return atomicWriteFile(path, EncodePEM(id), 0600)
}

// Load 从 PEM 文件加载身份
func Load(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return DecodePEM(data)
}

// LoadOrCreate 加载身份，文件不存在且允许时生成并保存
func LoadOrCreate(path string, autoGenerate bool) (*Identity, error) {
	if path == "" {
		if !autoGenerate {
			return nil, ErrKeyNotFound
		}
		return Generate()
	}

	id, err := Load(path)
	if err == nil || !errors.Is(err, ErrKeyNotFound) || !autoGenerate {
		return id, err
	}

	id, err = Generate()
	if err != nil {
		return nil, err
	}
	if err := Save(id, path); err != nil {
		return nil, fmt.Errorf("save identity: %w", err)
	}
	return id, nil
}

// atomicWriteFile 原子写文件
//
// 临时文件 + rename，任何步骤失败时目标文件保持不变。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("原子 rename 失败: %w", err)
	}

	success = true
	return nil
}
