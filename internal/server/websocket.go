package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

// handleWebSocket 反向 WebSocket，上报端作为客户端连入
func (s *Server) handleWebSocket(rw http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		serverLog("reject websocket from %s: bad access token", r.RemoteAddr)
		rw.WriteHeader(http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}

	id := uuid.NewString()
	selfID := r.Header.Get("X-Self-ID")
	s.addClient(id, conn)
	serverLog("websocket connected id=%s self=%s role=%s", id, selfID, r.Header.Get("X-Client-Role"))

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		// 带 echo 的是 API 响应，不是事件
		if !gjson.GetBytes(data, "post_type").Exists() {
			continue
		}
		_, _ = s.ingest(data, "ws:"+id)
	}

	s.removeClient(id)
	_ = conn.Close()
	serverLog("websocket disconnected id=%s", id)
}

// authorized 检查 Authorization: Bearer 或 access_token 查询参数
func (s *Server) authorized(r *http.Request) bool {
	if s.opts.AccessToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && token == s.opts.AccessToken {
		return true
	}
	if token, ok := strings.CutPrefix(auth, "Token "); ok && token == s.opts.AccessToken {
		return true
	}
	return r.URL.Query().Get("access_token") == s.opts.AccessToken
}

func (s *Server) addClient(id string, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[id] = conn
}

func (s *Server) removeClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, conn := range s.clients {
		_ = conn.Close()
		delete(s.clients, id)
	}
}
