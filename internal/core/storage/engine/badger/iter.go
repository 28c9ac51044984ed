package badger

import (
	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-dep2p-survey/internal/core/storage/engine"
)

// Iterator BadgerDB 前缀迭代器
type Iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	prefix  []byte
	started bool
	done    bool
	err     error
}

// Next 移动到下一个键值对
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		it.iter.Seek(it.prefix)
	} else {
		it.iter.Next()
	}
	if !it.iter.ValidForPrefix(it.prefix) {
		it.done = true
		return false
	}
	return true
}

// Key 返回当前键
func (it *Iterator) Key() []byte {
	if it.done || !it.started {
		return nil
	}
	return it.iter.Item().KeyCopy(nil)
}

// Value 返回当前值
func (it *Iterator) Value() []byte {
	if it.done || !it.started {
		return nil
	}
	v, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
		return nil
	}
	return v
}

// Error 返回迭代过程中的错误
func (it *Iterator) Error() error {
	return it.err
}

// Close 关闭迭代器
func (it *Iterator) Close() {
	if it.iter != nil {
		it.iter.Close()
		it.iter = nil
	}
	if it.txn != nil {
		it.txn.Discard()
		it.txn = nil
	}
	it.done = true
}

// 编译时检查接口实现
var _ engine.Iterator = (*Iterator)(nil)
