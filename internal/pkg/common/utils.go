package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WriteErrorResponse 寫入 FastAPI 風格的錯誤響應
func WriteErrorResponse(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Detail: detail})
}

// StatusText 產生通用的 HTTP 錯誤文字，例如 "HTTP 500"
func StatusText(status int) string {
	return "HTTP " + strconv.Itoa(status)
}
