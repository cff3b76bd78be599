package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Lichas/cqhttp-go/internal/logging"
)

// Caller 调用 OneBot 动作
type Caller interface {
	CallAction(ctx context.Context, action string, body []byte) (*Response, error)
}

// Options 客户端配置
type Options struct {
	APIRoot     string
	AccessToken string
	Timeout     time.Duration // 0 表示不限制
	HTTPClient  *http.Client
}

// Response OneBot 动作响应
type Response struct {
	Status  string          `json:"status"`  // ok, async, failed
	RetCode int64           `json:"retcode"` // 返回码
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
	Wording string          `json:"wording,omitempty"`
	Echo    json.RawMessage `json:"echo,omitempty"`
}

// OK 是否成功
func (r *Response) OK() bool {
	return r.Status != "failed"
}

// Client 通过 HTTP 调用 OneBot API
type Client struct {
	apiRoot     string
	accessToken string
	timeout     time.Duration
	httpClient  *http.Client
}

// NewClient 创建客户端
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		apiRoot:     strings.TrimRight(opts.APIRoot, "/"),
		accessToken: opts.AccessToken,
		timeout:     opts.Timeout,
		httpClient:  httpClient,
	}
}

// APIRoot 返回 API 地址
func (c *Client) APIRoot() string {
	return c.apiRoot
}

// CallAction POST {api_root}/{action}
func (c *Client) CallAction(ctx context.Context, action string, body []byte) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	url := fmt.Sprintf("%s/%s", c.apiRoot, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if lg := logging.Get(); lg != nil && lg.API != nil {
			lg.API.Printf("call action=%s error=%v", action, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, action, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrTransport, action, err)
	}

	if lg := logging.Get(); lg != nil && lg.API != nil {
		lg.API.Printf("call action=%s status=%d elapsed=%s body=%q", action, resp.StatusCode, time.Since(start), logging.Truncate(string(body), 300))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Action: action, StatusCode: resp.StatusCode, Body: logging.Truncate(string(data), 200)}
	}

	result := &Response{Status: "ok"}
	if len(bytes.TrimSpace(data)) > 0 {
		// 部分实现只返回空响应或非 JSON，按成功处理
		_ = json.Unmarshal(data, result)
	}
	if !result.OK() {
		msg := result.Message
		if result.Wording != "" {
			msg = result.Wording
		}
		return result, &ActionError{Action: action, RetCode: result.RetCode, Message: msg}
	}
	return result, nil
}
