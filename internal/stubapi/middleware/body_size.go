package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dishdash/internal/pkg/common"
)

// BodySizeLimit 限制請求體大小
//
// 宣告的長度超過上限時直接回 413；長度未知（chunked）的請求在讀取時才會超限，
// 由 RejectOversizedBody 在綁定失敗時轉成同樣的 413。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			writeTooLarge(c, c.Request.ContentLength, maxSize)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// RejectOversizedBody err 來自超過上限的請求體時寫入 413 並回傳 true
func RejectOversizedBody(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	writeTooLarge(c, c.Request.ContentLength, tooLarge.Limit)
	return true
}

func writeTooLarge(c *gin.Context, length, maxSize int64) {
	common.LogWarn("請求體過大",
		zap.Int64("content_length", length),
		zap.Int64("max_size", maxSize),
		zap.String("path", c.Request.URL.Path),
	)
	common.WriteErrorResponse(c, http.StatusRequestEntityTooLarge, BodyTooLargeDetail(maxSize))
}

// BodyTooLargeDetail 413 回應的 detail 文字
func BodyTooLargeDetail(maxSize int64) string {
	return fmt.Sprintf("Request body too large (max %d bytes)", maxSize)
}
