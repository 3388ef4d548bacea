// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-novel-workspace/pkg/logger"
)

const (
	// RequestIDHeader 请求 ID 头，外壳可自带以便串联前后端日志
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader 追踪 ID 响应头
	TraceIDHeader = "X-Trace-ID"

	maxRequestIDLen = 64
)

// RequestID 注入请求 ID；外壳传入的值过长或含控制字符时重新生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		c.Set(string(logger.RequestIDKey), requestID)
		c.Request = c.Request.WithContext(
			logger.WithContext(c.Request.Context(), logger.RequestIDKey, requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// Trace OpenTelemetry 追踪中间件，健康检查不产生 span
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			switch r.URL.Path {
			case "/health", "/live", "/ready":
				return false
			}
			return true
		}),
	)
}

// TraceContext 将当前 span 的标识写入日志上下文和响应头，并给 span 标注请求 ID
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := trace.SpanFromContext(ctx)
		if sc := span.SpanContext(); sc.IsValid() {
			traceID := sc.TraceID().String()
			c.Set(string(logger.TraceIDKey), traceID)
			if id := c.GetString(string(logger.RequestIDKey)); id != "" {
				span.SetAttributes(attribute.String("workspace.request_id", id))
			}

			ctx = logger.WithContext(ctx, logger.TraceIDKey, traceID)
			ctx = logger.WithContext(ctx, logger.SpanIDKey, sc.SpanID().String())
			c.Request = c.Request.WithContext(ctx)
			c.Header(TraceIDHeader, traceID)
		}

		c.Next()
	}
}
