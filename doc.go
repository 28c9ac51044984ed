// Package survey 提供 overlay 拓扑调查节点
//
// 调查者节点向网络泛洪签名的拓扑请求，被调查节点把自己的连接统计
// 加密给调查者后应答，中间节点按信任与版本规则转发。调查者汇总应答，
// 得到网络拓扑的快照。
//
// # 核心概念
//
//   - Node: 调查节点，用户交互的主入口
//   - Overlay: 外部传输层，提供连接快照与消息发送
//   - QuorumSource / LedgerSource: 外部只读数据源
//
// # 快速开始
//
//	import survey "github.com/dep2p/go-dep2p-survey"
//
//	node, err := survey.New(ctx,
//	    survey.WithConfig(cfg),
//	    survey.WithOverlay(overlay),
//	    survey.WithQuorum(quorum),
//	    survey.WithLedger(ledger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	// 传输层收到调查消息时
//	node.HandleWire(from, data)
//
//	// 账本关闭时
//	node.OnLedgerClosed(seq)
//
//	// 发起调查并读取结果
//	_ = node.SurveyTopology(target, 10*time.Minute)
//	res := node.Result()
//
// # 包结构
//
//	config/                   统一配置
//	pkg/types/                公共数据结构与错误
//	pkg/interfaces/           外部协作者与服务接口
//	internal/core/identity/   签名密钥与派生的加密密钥
//	internal/core/survey/     调查服务（编解码、加密、授权、中继、节流、结果）
//	internal/core/storage/    BadgerDB 存储（会话归档）
//	internal/core/metrics/    Prometheus 指标
//	internal/core/introspect/ 本地管理 HTTP 服务
//	internal/simulation/      回环模拟网络
//	cmd/survey-sim/           命令行工具
package survey
