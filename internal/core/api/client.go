package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"dishdash/internal/infrastructure/storage"
	"dishdash/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RequestOptions 請求選項
type RequestOptions struct {
	Method string      // 預設 GET
	Body   interface{} // nil 表示不送 body
}

// Response 統一的請求結果：成功時 Data 有值，失敗時 Error 有值
type Response struct {
	Data       []byte
	Error      string
	StatusCode int // 連線層錯誤時為 0
}

// OK 是否成功
func (r Response) OK() bool {
	return r.Error == ""
}

// Err 將失敗結果轉成帶代碼的錯誤
func (r Response) Err() error {
	if r.OK() {
		return nil
	}
	if r.StatusCode == 0 {
		return common.NewError(common.ErrCodeNetwork, r.Error, 0, nil)
	}
	return common.FromStatus(r.StatusCode, r.Error)
}

// Client 遠端 REST API 客戶端
type Client struct {
	http    *resty.Client
	storage storage.Storage

	mu           sync.RWMutex
	unauthorized []func()
}

// Option 客戶端選項
type Option func(*Client)

// WithTimeout 設定請求逾時；不設定時沿用網路堆疊的預設
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// NewClient 創建新的 API 客戶端
func NewClient(baseURL string, store storage.Storage, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		common.LogError("API URL not configured")
		return nil, common.ErrMissingAPIURL
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		storage: store,
	}
	c.installHooks()

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// installHooks 安裝權杖注入與日誌轉接
func (c *Client) installHooks() {
	c.http.SetLogger(restyLogger{})
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		token, ok, err := c.storage.Get(r.Context(), storage.TokenKey)
		if err != nil {
			// 讀不到權杖就當作未登入送出
			common.LogWarn("Failed to read session token", zap.Error(err))
			return nil
		}
		if ok && token != "" {
			r.SetAuthToken(token)
		}
		return nil
	})
}

// OnUnauthorized 註冊收到 401 時的回呼
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unauthorized = append(c.unauthorized, fn)
}

func (c *Client) notifyUnauthorized() {
	c.mu.RLock()
	hooks := make([]func(), len(c.unauthorized))
	copy(hooks, c.unauthorized)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

// BaseURL 回傳設定的 API 位址
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Request 發送請求；一般的 HTTP 失敗與連線錯誤都轉成 Response.Error，不回傳 error
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions) Response {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req := c.http.R().SetContext(ctx)
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	start := time.Now()
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		common.LogAPICall(method, endpoint, 0, time.Since(start), err.Error())
		return Response{Error: networkMessage(err)}
	}

	status := resp.StatusCode()
	if !resp.IsSuccess() {
		message := common.StatusText(status)
		var body common.ErrorResponse
		if perr := common.ParseJSONBytes(resp.Body(), &body); perr == nil && body.Text() != "" {
			message = body.Text()
		}
		common.LogAPICall(method, endpoint, status, time.Since(start), message)

		if status == http.StatusUnauthorized {
			c.notifyUnauthorized()
		}
		return Response{Error: message, StatusCode: status, Data: nil}
	}

	common.LogAPICall(method, endpoint, status, time.Since(start), "")
	return Response{Data: resp.Body(), StatusCode: status}
}

// networkMessage 整理連線層錯誤的訊息
func networkMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Unknown error"
	}
	return msg
}

// restyLogger 將 resty 的日誌轉到 zap
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	common.LogError("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	common.LogWarn("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	common.LogDebug("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}
