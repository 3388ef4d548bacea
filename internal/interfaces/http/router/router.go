// Package router 提供 HTTP 路由配置
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"z-novel-workspace/internal/config"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/internal/interfaces/http/handler"
	"z-novel-workspace/internal/interfaces/http/middleware"
	"z-novel-workspace/pkg/errors"
)

// RouterHandlers 路由依赖的全部处理器
type RouterHandlers struct {
	Health       *handler.HealthHandler
	Settings     *handler.SettingsHandler
	Provider     *handler.ProviderHandler
	Project      *handler.ProjectHandler
	Prompt       *handler.PromptHandler
	Conversation *handler.ConversationHandler
	Stream       *handler.StreamHandler
	Chapter      *handler.ChapterHandler
	Editor       *handler.EditorHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers
}

// New 创建新的路由器
func New(cfg *config.Config, handlers *RouterHandlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(r.cfg.Security.CORS))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	h := r.handlers

	r.engine.GET("/health", h.Health.Health)
	r.engine.GET("/ready", h.Health.Ready)
	r.engine.GET("/live", h.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	RegisterWorkspaceRoutes(r.engine.Group("/workspace"), h)

	r.engine.HandleMethodNotAllowed = true
	r.engine.NoRoute(func(c *gin.Context) {
		dto.FromError(c, errors.ErrNotFound.WithDetail(c.Request.URL.Path))
	})
	r.engine.NoMethod(func(c *gin.Context) {
		dto.FromError(c, errors.New(errors.CodeInvalidParam, "method not allowed").
			WithStatus(http.StatusMethodNotAllowed))
	})
}
