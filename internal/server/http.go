package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Lichas/cqhttp-go/internal/bus"
	"github.com/Lichas/cqhttp-go/pkg/event"
)

// ErrBadSignature X-Signature 校验失败
var ErrBadSignature = errors.New("signature mismatch")

// handlePost 处理 HTTP 上报
// 格式错误的事件记录后丢弃并返回 204，避免上报端重试
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	if s.opts.Secret != "" {
		if err := VerifySignature([]byte(s.opts.Secret), body, r.Header.Get("X-Signature")); err != nil {
			serverLog("reject post from %s: %v", r.RemoteAddr, err)
			writeError(w, http.StatusUnauthorized, err)
			return
		}
	}

	if _, err := s.ingest(body, "http"); err != nil {
		switch {
		case errors.Is(err, event.ErrDecode):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, bus.ErrBufferFull):
			writeError(w, http.StatusServiceUnavailable, err)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sign 计算上报签名，格式为 sha1=<hex>
func Sign(secret, body []byte) string {
	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature 校验 X-Signature
func VerifySignature(secret, body []byte, signature string) error {
	if signature == "" {
		return fmt.Errorf("%w: missing X-Signature", ErrBadSignature)
	}
	if !strings.HasPrefix(signature, "sha1=") {
		return fmt.Errorf("%w: unsupported scheme", ErrBadSignature)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha1="))
	if err != nil {
		return fmt.Errorf("%w: invalid hex: %v", ErrBadSignature, err)
	}

	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), got) {
		return ErrBadSignature
	}
	return nil
}
