// Package metrics 提供调查子系统的 Prometheus 指标
//
// 指标注册在独立的 prometheus.Registry 上，由管理接口的 /metrics 暴露：
//
//	survey_messages_total{type,outcome}  处理的调查消息数（按结果分类）
//	survey_dedup_entries                 去重缓存当前条目数
//	survey_pending_requests              节流窗口内待应答的请求数
//	survey_results_total{kind}           收到的应答（answer/bad）
//	survey_received_bytes_total          收到的调查消息线上字节数
//
// 所有方法对 nil 接收者安全，禁用指标时传 nil 即可。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	m, _ := metrics.NewSurveyMetrics(reg, "survey")
//	m.Message(types.MessageRequest, metrics.OutcomeRelayed)
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics
