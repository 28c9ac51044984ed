// Package storage 提供调查结果归档使用的存储层
//
// 结构：
//
//	engine/         存储引擎接口与配置
//	engine/badger/  基于 BadgerDB 的实现（持久化或内存模式）
//	kv/             带前缀隔离的键值封装，支持 JSON 值
//
// 模块通过 fx 提供 engine.Engine，并在生命周期内启动 GC、关闭数据库。
package storage
