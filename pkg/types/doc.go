// Package types 定义拓扑调查子系统的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
//   - ids.go        - NodeID, NodeSet
//   - survey.go     - SurveyMessage, DedupKey, PeerStat, TopologyBody
//   - connection.go - PeerConnInfo（由外部 Overlay 提供的连接快照）
//   - errors.go     - 公共错误定义
//
// # 与 codec 的区别
//
// pkg/types 定义 Go 内存结构，
// internal/core/survey/codec 定义线上二进制格式。
package types
