// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/config"
)

var (
	defaultShellOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	defaultMethods      = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	// Last-Event-ID 由 EventSource 重连时携带
	defaultHeaders = []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", RequestIDHeader}
)

// CORS 外壳页面与网关不同源时的跨域中间件，未配置的项使用本机外壳默认值
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     orDefault(cfg.AllowedOrigins, defaultShellOrigins),
		AllowMethods:     orDefault(cfg.AllowedMethods, defaultMethods),
		AllowHeaders:     orDefault(cfg.AllowedHeaders, defaultHeaders),
		ExposeHeaders:    []string{RequestIDHeader, TraceIDHeader},
		AllowWildcard:    true,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
