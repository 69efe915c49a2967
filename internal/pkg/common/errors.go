package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構（與遠端 API 的 detail 格式相容）
type ErrorResponse struct {
	Detail  string `json:"detail,omitempty"`  // FastAPI 風格錯誤信息
	Error   string `json:"error,omitempty"`   // 其他服務常用欄位
	Message string `json:"message,omitempty"` // 備用欄位
}

// Text 取出第一個非空的錯誤信息
func (r ErrorResponse) Text() string {
	switch {
	case r.Detail != "":
		return r.Detail
	case r.Error != "":
		return r.Error
	default:
		return r.Message
	}
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap 讓 errors.Is / errors.As 可以穿透到原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比較，讓預定義錯誤可以搭配 errors.Is 使用
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤（本地驗證，不會發出網路請求）
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrorCode 取得錯誤代碼，非 CustomError 回傳空字串
func ErrorCode(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// StatusCode 取得錯誤附帶的 HTTP 狀態碼，沒有則為 0
func StatusCode(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}

// 預定義錯誤代碼
const (
	ErrCodeConfig            = "CONFIG_ERROR"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"       // 401
	ErrCodeNotFound          = "NOT_FOUND"          // 404
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"  // 429
	ErrCodeHTTP              = "HTTP_ERROR"         // 其他非 2xx
	ErrCodeNetwork           = "NETWORK_ERROR"      // 連線層錯誤
	ErrCodeMalformedResponse = "MALFORMED_RESPONSE" // 回應格式不符
	ErrCodeDetailsNotLoaded  = "DETAILS_NOT_LOADED" // 尚未取得食譜詳情
	ErrCodeStorage           = "STORAGE_ERROR"
)

// 預定義錯誤
var (
	ErrMissingAPIURL     = NewError(ErrCodeConfig, "API URL not configured", 0, nil)
	ErrUnauthorized      = NewError(ErrCodeUnauthorized, "Not authenticated", http.StatusUnauthorized, nil)
	ErrNotFound          = NewError(ErrCodeNotFound, "Not found", http.StatusNotFound, nil)
	ErrTooManyRequests   = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrMalformedResponse = NewError(ErrCodeMalformedResponse, "Malformed response from server", 0, nil)
	ErrDetailsNotLoaded  = NewError(ErrCodeDetailsNotLoaded, "Recipe details must be loaded before saving", 0, nil)
	ErrNoToken           = NewError(ErrCodeUnauthorized, "No session token", 0, nil)
)

// FromStatus 依照 HTTP 狀態碼建立對應的錯誤
func FromStatus(status int, message string) *CustomError {
	code := ErrCodeHTTP
	switch status {
	case http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case http.StatusNotFound:
		code = ErrCodeNotFound
	case http.StatusTooManyRequests:
		code = ErrCodeTooManyRequests
	}
	return NewError(code, message, status, nil)
}
