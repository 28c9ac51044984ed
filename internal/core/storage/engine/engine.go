// Package engine 定义存储引擎接口
package engine

// Engine 存储引擎
type Engine interface {
	// Get 获取键值，不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 写入键值
	Put(key, value []byte) error

	// Delete 删除键
	Delete(key []byte) error

	// Has 键是否存在
	Has(key []byte) (bool, error)

	// NewPrefixIterator 创建前缀迭代器，调用方负责 Close
	NewPrefixIterator(prefix []byte) Iterator

	// Start 启动后台任务
	Start() error

	// Close 关闭引擎
	Close() error
}

// Iterator 键值迭代器
//
// 用法：
//
//	it := eng.NewPrefixIterator(prefix)
//	defer it.Close()
//	for it.Next() {
//	    k, v := it.Key(), it.Value()
//	}
//	if err := it.Error(); err != nil { ... }
type Iterator interface {
	// Next 移动到下一个键值对，首次调用定位到第一个
	Next() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// Error 返回迭代过程中的错误
	Error() error

	// Close 关闭迭代器
	Close()
}
