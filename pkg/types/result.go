package types

// SurveyResult 调查结果的对外表示
//
// Topology 以 Base58 节点 ID 为键；已请求但尚无应答的节点值为 nil（JSON 中为 null）。
type SurveyResult struct {
	SurveyInProgress bool                     `json:"surveyInProgress"`
	SessionID        string                   `json:"sessionId,omitempty"`
	Topology         map[string]*TopologyBody `json:"topology"`
	BadResponseNodes []string                 `json:"badResponseNodes,omitempty"`
}
