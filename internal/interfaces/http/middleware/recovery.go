// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// Recovery Panic 恢复中间件
// 已开始写出的响应（如 SSE）无法改写，只记录日志
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			dto.FromError(c, errors.ErrInternalError)
			c.Abort()
		}()

		c.Next()
	}
}
