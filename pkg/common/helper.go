package common

import (
	"adarelay.com/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// webhook 对外的错误返回格式是和前端约定死的：{error} / {error, details}
// 不要套统一 envelope，storefront 的 checkout 脚本按字段名取值

func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}

func ErrorDetails(c *gin.Context, httpStatus int, msg string, details string) {
	c.JSON(httpStatus, gin.H{"error": msg, "details": details})
}

// RetryLater 429 + shouldRetry 提示，重试策略交给调用方
func RetryLater(c *gin.Context, msg string, details string) {
	c.JSON(429, gin.H{
		"error":       msg,
		"details":     details,
		"shouldRetry": true,
	})
}

// ErrorLogged 返回错误的同时落一条 warn 日志 (带 request_id，方便排查)
func ErrorLogged(c *gin.Context, httpStatus int, msg string, details string, err error) {
	logger.Warn(c, "http error",
		zap.String("request_id", RequestIDFromGin(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("message", msg),
		zap.Error(err),
	)
	if details != "" {
		ErrorDetails(c, httpStatus, msg, details)
		return
	}
	Error(c, httpStatus, msg)
}
