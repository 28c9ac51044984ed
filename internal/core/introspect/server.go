// Package introspect 提供本地调查管理 HTTP 服务
//
// 默认绑定到 127.0.0.1，不暴露到网络。
//
// 端点：
//   - GET /surveytopology?node=<id>&duration=<秒> - 请求调查指定节点
//   - GET /stopsurvey                              - 结束当前调查会话
//   - GET /getsurveyresult                         - 当前调查结果 (JSON)
//   - GET /getsurveyhistory                        - 已归档的会话 (JSON)
//   - GET /metrics                                 - Prometheus 指标
//   - GET /health                                  - 健康检查
//   - GET /debug/pprof/*                           - Go pprof 端点
package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-dep2p-survey/internal/core/metrics"
	"github.com/dep2p/go-dep2p-survey/internal/core/survey/history"
	"github.com/dep2p/go-dep2p-survey/internal/util/logger"
	"github.com/dep2p/go-dep2p-survey/pkg/types"
)

var log = logger.Logger("introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:11626"

// Surveyor 管理接口所需的调查服务能力
type Surveyor interface {
	SurveyTopology(surveyed types.NodeID, duration time.Duration) error
	StopSurvey()
	Result() types.SurveyResult
	History() ([]history.Record, error)
}

// Server 本地管理 HTTP 服务
type Server struct {
	// 依赖组件
	survey   Surveyor
	gatherer prometheus.Gatherer // 可选

	// 配置
	addr string

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running bool
	mu      sync.Mutex
}

// Config 服务配置
type Config struct {
	// Addr 监听地址
	Addr string

	// Survey 必需的调查服务
	Survey Surveyor

	// Gatherer 可选的指标来源
	Gatherer prometheus.Gatherer
}

// New 创建管理服务
func New(cfg Config) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{
		survey:   cfg.Survey,
		gatherer: cfg.Gatherer,
		addr:     addr,
	}
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 调查命令
	mux.HandleFunc("/surveytopology", s.handleSurveyTopology)
	mux.HandleFunc("/stopsurvey", s.handleStopSurvey)
	mux.HandleFunc("/getsurveyresult", s.handleResult)
	mux.HandleFunc("/getsurveyhistory", s.handleHistory)

	if s.gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(s.gatherer))
	}

	// pprof 端点
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("管理服务异常退出", "error", err)
		}
	}()

	s.running = true
	log.Info("管理服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("关闭管理服务失败", "error", err)
		return err
	}

	s.running = false
	log.Info("管理服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// commandResponse 命令类端点的响应
type commandResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleSurveyTopology 处理调查请求
//
// 被节流时目标已进入待发队列，返回 status=throttled 而不是错误码。
func (s *Server) handleSurveyTopology(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	node, err := types.ParseNodeID(q.Get("node"))
	if err != nil {
		http.Error(w, "invalid node: "+err.Error(), http.StatusBadRequest)
		return
	}

	var duration time.Duration
	if d := q.Get("duration"); d != "" {
		secs, err := strconv.ParseUint(d, 10, 32)
		if err != nil {
			http.Error(w, "invalid duration: "+err.Error(), http.StatusBadRequest)
			return
		}
		duration = time.Duration(secs) * time.Second
	}

	switch err := s.survey.SurveyTopology(node, duration); {
	case err == nil:
		s.writeJSON(w, commandResponse{Status: "pending"})
	case errors.Is(err, types.ErrThrottled):
		s.writeJSON(w, commandResponse{Status: "throttled", Error: err.Error()})
	case errors.Is(err, types.ErrInvalidDuration), errors.Is(err, types.ErrInvalidNodeID):
		s.writeJSONStatus(w, http.StatusBadRequest, commandResponse{Status: "error", Error: err.Error()})
	default:
		s.writeJSONStatus(w, http.StatusInternalServerError, commandResponse{Status: "error", Error: err.Error()})
	}
}

// handleStopSurvey 处理结束会话请求
func (s *Server) handleStopSurvey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.survey.StopSurvey()
	s.writeJSON(w, commandResponse{Status: "stopped"})
}

// handleResult 返回当前调查结果
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.survey.Result())
}

// handleHistory 返回已归档的会话
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	records, err := s.survey.History()
	if err != nil {
		log.Warn("读取调查归档失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	s.writeJSON(w, records)
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}{
		Status:    "ok",
		Timestamp: time.Now(),
	}
	if s.survey == nil {
		health.Status = "degraded"
	}
	s.writeJSON(w, health)
}

// ============================================================================
//                              辅助方法
// ============================================================================

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONStatus(w, http.StatusOK, data)
}

// writeJSONStatus 以指定状态码写入 JSON 响应
func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Error("JSON 编码失败", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
