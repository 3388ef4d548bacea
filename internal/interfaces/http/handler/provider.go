// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/logger"
)

// ProviderHandler AI 服务商与模型处理器
type ProviderHandler struct {
	registry *provider.Registry
}

// NewProviderHandler 创建服务商处理器
func NewProviderHandler(registry *provider.Registry) *ProviderHandler {
	return &ProviderHandler{registry: registry}
}

// ListProviders 刷新并返回服务商列表
// @Summary 获取服务商列表
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[dto.ProviderListResponse]
// @Failure 502 {object} dto.ErrorResponse
// @Router /workspace/providers [get]
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	list, err := h.registry.ListProviders(c.Request.Context())
	if err != nil {
		writeError(c, "failed to list providers", err)
		return
	}
	dto.Success(c, dto.ProviderListResponse{Providers: list})
}

// CreateProvider 创建服务商
// @Summary 创建服务商
// @Tags Providers
// @Accept json
// @Produce json
// @Param body body dto.ProviderRequest true "服务商信息"
// @Success 201 {object} dto.Response[entity.Provider]
// @Router /workspace/providers [post]
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var req dto.ProviderRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	p, err := h.registry.CreateProvider(c.Request.Context(), req.ToInput())
	if err != nil {
		writeError(c, "failed to create provider", err)
		return
	}
	dto.Created(c, p)
}

// UpdateProvider 更新服务商
// @Router /workspace/providers/{id} [put]
func (h *ProviderHandler) UpdateProvider(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.ProviderRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	p, err := h.registry.UpdateProvider(ctx, id, req.ToInput())
	if err != nil {
		writeError(c, "failed to update provider", err)
		return
	}
	dto.Success(c, p)
}

// DeleteProvider 删除服务商
// @Router /workspace/providers/{id} [delete]
func (h *ProviderHandler) DeleteProvider(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	if err := h.registry.DeleteProvider(ctx, id); err != nil {
		writeError(c, "failed to delete provider", err)
		return
	}
	dto.NoContent(c)
}

// ReorderProviders 按给定顺序重排服务商，重复提交同一顺序结果不变
// @Router /workspace/providers/reorder [put]
func (h *ProviderHandler) ReorderProviders(c *gin.Context) {
	var req dto.ReorderProvidersRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	if err := h.registry.Reorder(c.Request.Context(), req.ProviderIDs); err != nil {
		writeError(c, "failed to reorder providers", err)
		return
	}
	dto.Success(c, dto.ProviderListResponse{Providers: h.registry.Providers()})
}

// CheckProviderKey 检测已保存服务商的凭证
// @Summary 检测服务商凭证
// @Description 检测结果总是以 200 返回，失败原因放在 error 字段
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[provider.KeyCheckResult]
// @Router /workspace/providers/{id}/check-key [post]
func (h *ProviderHandler) CheckProviderKey(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	p, err := h.registry.Lookup(ctx, id)
	if err != nil {
		writeError(c, "failed to look up provider", err)
		return
	}
	dto.Success(c, h.registry.CheckAPIKey(ctx, p))
}

// CheckKey 检测尚未保存的服务商凭证
// @Router /workspace/providers/check-key [post]
func (h *ProviderHandler) CheckKey(c *gin.Context) {
	var req dto.CheckKeyRequest
	if !dto.BindJSON(c, &req) {
		return
	}
	dto.Success(c, h.registry.CheckAPIKey(c.Request.Context(), entity.Provider{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
	}))
}

// DiscoverModels 拉取服务商模型列表并逐个注册
// @Summary 自动发现模型
// @Description 单个模型创建失败不影响其余模型，结果中给出成功与失败明细
// @Tags Providers
// @Produce json
// @Success 200 {object} dto.Response[provider.DiscoveryResult]
// @Router /workspace/providers/{id}/discover-models [post]
func (h *ProviderHandler) DiscoverModels(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	p, err := h.registry.Lookup(ctx, id)
	if err != nil {
		writeError(c, "failed to look up provider", err)
		return
	}
	dto.Success(c, h.registry.FetchAndAddModels(ctx, p))
}

// ListModels 获取服务商下的模型
// @Router /workspace/providers/{id}/models [get]
func (h *ProviderHandler) ListModels(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	models, err := h.registry.ListModels(ctx, id)
	if err != nil {
		writeError(c, "failed to list models", err)
		return
	}

	resp := dto.ModelListResponse{Models: models}
	if m, ok := h.registry.DefaultModel(id); ok {
		resp.DefaultModel = &m
	}
	dto.Success(c, resp)
}

// CreateModel 在服务商下创建模型
// @Router /workspace/providers/{id}/models [post]
func (h *ProviderHandler) CreateModel(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.ModelRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProviderIDKey, id)
	m, err := h.registry.CreateModel(ctx, id, req.ToInput())
	if err != nil {
		writeError(c, "failed to create model", err)
		return
	}
	dto.Created(c, m)
}

// UpdateModel 更新模型
// @Router /workspace/models/{id} [put]
func (h *ProviderHandler) UpdateModel(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.ModelRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	m, err := h.registry.UpdateModel(c.Request.Context(), id, req.ToInput())
	if err != nil {
		writeError(c, "failed to update model", err)
		return
	}
	dto.Success(c, m)
}

// DeleteModel 删除模型
// @Router /workspace/models/{id} [delete]
func (h *ProviderHandler) DeleteModel(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	if err := h.registry.DeleteModel(c.Request.Context(), id); err != nil {
		writeError(c, "failed to delete model", err)
		return
	}
	dto.NoContent(c)
}
