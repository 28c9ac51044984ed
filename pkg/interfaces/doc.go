// Package interfaces 定义拓扑调查子系统的公共接口
//
// 调查核心只依赖下列外部协作者，全部以接口形式注入：
//   - overlay.go  - Overlay 连接枚举与消息发送（传输层由外部实现）
//   - survey.go   - QuorumSource、LedgerSource 只读快照，以及 SurveyService 服务接口
//
// 传输、仲裁计算与账本关闭调度都不在本仓库范围内。
package interfaces
