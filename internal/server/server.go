// Package server 接收 OneBot 实现上报的事件
// 支持 HTTP POST 上报与反向 WebSocket 两种方式
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lichas/cqhttp-go/internal/logging"
	"github.com/Lichas/cqhttp-go/pkg/event"
)

// Publisher 接收分类后的事件，bus.Queue 实现了它
type Publisher interface {
	PublishInbound(ev event.Event) error
}

// Options 服务配置
type Options struct {
	Host         string
	Port         int
	Path         string // HTTP 上报路径
	Secret       string // 非空时校验 X-Signature
	AccessToken  string // 非空时校验反向 WebSocket 的令牌
	MaxBodyBytes int64

	WebSocket    bool
	WSPath       string
	AllowOrigins []string
}

// Server 上报接收服务
type Server struct {
	opts      Options
	publisher Publisher

	server   *http.Server
	listener net.Listener
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.RWMutex
	clients  map[string]*websocket.Conn
	upgrader websocket.Upgrader

	stats stats
}

type stats struct {
	mu       sync.Mutex
	received int64
	dropped  int64
	lastAt   time.Time
}

// New 创建服务
func New(opts Options, publisher Publisher) *Server {
	if opts.Host == "" {
		opts.Host = "0.0.0.0"
	}
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.WSPath == "" {
		opts.WSPath = "/ws"
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		opts:      opts,
		publisher: publisher,
		stopChan:  make(chan struct{}),
		clients:   make(map[string]*websocket.Conn),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(opts.AllowOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range opts.AllowOrigins {
				if allowed == origin {
					return true
				}
			}
			return false
		},
	}
	return s
}

// Handler 返回路由，测试时可直接挂到 httptest
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.opts.WebSocket {
		mux.HandleFunc(s.opts.WSPath, s.handleWebSocket)
	}
	mux.HandleFunc("/status", s.handleStatus)
	if s.opts.Path != s.opts.WSPath && s.opts.Path != "/status" {
		mux.HandleFunc(s.opts.Path, s.handlePost)
	}
	return mux
}

// Start 监听并在后台提供服务，ctx 结束时自动关闭
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverLog("listening on %s (post=%s ws=%v)", listener.Addr(), s.opts.Path, s.opts.WebSocket)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLog("serve error: %v", err)
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-ctx.Done():
		case <-s.stopChan:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
		s.closeAll()
	}()

	return nil
}

// Stop 关闭服务并等待后台协程退出
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Status 运行状态
func (s *Server) Status() map[string]interface{} {
	s.mu.RLock()
	conns := len(s.clients)
	s.mu.RUnlock()

	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	status := map[string]interface{}{
		"received":    s.stats.received,
		"dropped":     s.stats.dropped,
		"connections": conns,
	}
	if !s.stats.lastAt.IsZero() {
		status["lastEventAt"] = s.stats.lastAt.Format(time.RFC3339)
	}
	return status
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.Status())
}

// ingest 分类并发布一条上报
func (s *Server) ingest(raw []byte, source string) (event.Event, error) {
	ev, err := event.Classify(raw)
	if err != nil {
		s.record(false)
		serverLog("drop %s payload: %v body=%q", source, err, logging.Truncate(string(raw), 300))
		return nil, err
	}
	if err := s.publisher.PublishInbound(ev); err != nil {
		s.record(false)
		serverLog("drop %s event=%s: %v", source, ev.Name(), err)
		return ev, err
	}
	s.record(true)
	return ev, nil
}

func (s *Server) record(ok bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	if ok {
		s.stats.received++
		s.stats.lastAt = time.Now()
	} else {
		s.stats.dropped++
	}
}

func serverLog(format string, args ...interface{}) {
	if lg := logging.Get(); lg != nil && lg.Server != nil {
		lg.Server.Printf(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	})
}
