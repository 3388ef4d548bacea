// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// readyTimeout 单次就绪检查的总超时
const readyTimeout = 2 * time.Second

// Pinger 可做健康探测的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// probe 就绪检查项；required 失败时整体不可用，否则只标记降级
type probe struct {
	name     string
	target   Pinger
	required bool
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	probes  []probe
	version string
}

// NewHealthHandler 创建健康检查处理器
// state 为必需依赖，backend 可为 nil
func NewHealthHandler(state, backend Pinger, version string) *HealthHandler {
	h := &HealthHandler{version: version}
	h.probes = append(h.probes, probe{name: "state_store", target: state, required: true})
	if backend != nil {
		h.probes = append(h.probes, probe{name: "backend", target: backend})
	}
	return h
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 就绪检查接口，各依赖并发探测
// @Summary 就绪检查
// @Description 本地状态存储不可用时返回 503；后端不可达只标记为降级
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]*readinessCheck, len(h.probes))
		ready  = true
	)
	// 探测失败记录在结果里，不中断其他探测
	var g errgroup.Group
	for _, p := range h.probes {
		g.Go(func() error {
			check := runProbe(ctx, p)
			mu.Lock()
			defer mu.Unlock()
			checks[p.name] = check
			if p.required && check.Status != "ok" {
				ready = false
			}
			return nil
		})
	}
	_ = g.Wait()

	if !ready {
		c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "not_ready", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, readinessResponse{Status: "ok", Checks: checks})
}

func runProbe(ctx context.Context, p probe) *readinessCheck {
	if p.target == nil {
		return &readinessCheck{Status: "missing", Error: p.name + " not configured"}
	}
	start := time.Now()
	err := p.target.Ping(ctx)
	check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = "error"
		if !p.required {
			check.Status = "degraded"
		}
		check.Error = err.Error()
	}
	return check
}

// Live 存活检查接口
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
