// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"z-novel-workspace/pkg/metrics"
)

// Metrics Prometheus 指标采集中间件
// SSE 连接（聊天流、编辑器桥接）单独计入活跃连接数，不记录响应大小
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		stream := strings.Contains(c.GetHeader("Accept"), "text/event-stream")
		if stream {
			metrics.StreamConnections.WithLabelValues(path).Inc()
			defer metrics.StreamConnections.WithLabelValues(path).Dec()
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 && !stream {
			metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
