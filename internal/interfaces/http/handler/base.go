// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// writeError 记录并返回应用错误
// 校验类错误只记 warn，上游与内部错误记 error
func writeError(c *gin.Context, msg string, err error) {
	ctx := c.Request.Context()
	appErr := errors.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError || appErr.HTTPStatus == 0 {
		logger.Error(ctx, msg, err)
	} else {
		logger.Warn(ctx, msg, "error", err.Error())
	}
	dto.FromError(c, appErr)
}

// setSSEHeaders 设置 SSE 响应头
func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}
