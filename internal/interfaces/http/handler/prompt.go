package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// PromptHandler 当前项目的提示词模板处理器
type PromptHandler struct {
	ws *workspace.Workspace
}

// NewPromptHandler 创建提示词模板处理器
func NewPromptHandler(ws *workspace.Workspace) *PromptHandler {
	return &PromptHandler{ws: ws}
}

// ListTemplates 获取当前项目的模板
// @Summary 获取提示词模板
// @Description 首次访问或 refresh=true 时从后端读取，之后使用缓存
// @Tags Prompts
// @Produce json
// @Param refresh query bool false "强制刷新"
// @Success 200 {object} dto.Response[dto.PromptTemplateListResponse]
// @Failure 409 {object} dto.ErrorResponse
// @Router /workspace/prompt-templates [get]
func (h *PromptHandler) ListTemplates(c *gin.Context) {
	list, err := h.ws.PromptTemplates(c.Request.Context(), dto.QueryBool(c, "refresh", false))
	if err != nil {
		writeError(c, "failed to list prompt templates", err)
		return
	}
	dto.Success(c, dto.PromptTemplateListResponse{Templates: list})
}

// DefaultTemplate 获取当前项目的默认模板
// @Router /workspace/prompt-templates/default [get]
func (h *PromptHandler) DefaultTemplate(c *gin.Context) {
	store, err := h.ws.LoadedPrompts(c.Request.Context())
	if err != nil {
		writeError(c, "failed to load prompt templates", err)
		return
	}
	t, ok := store.Default()
	if !ok {
		dto.FromError(c, errors.ErrTemplateNotFound.WithDetail("no default template"))
		return
	}
	dto.Success(c, t)
}

// TemplatesByCategory 按分类获取模板
// @Router /workspace/prompt-templates/by-category [get]
func (h *PromptHandler) TemplatesByCategory(c *gin.Context) {
	store, err := h.ws.LoadedPrompts(c.Request.Context())
	if err != nil {
		writeError(c, "failed to load prompt templates", err)
		return
	}
	dto.Success(c, dto.PromptTemplateGroupsResponse{Categories: store.ByCategory()})
}

// CreateTemplate 在当前项目下新建模板
// @Router /workspace/prompt-templates [post]
func (h *PromptHandler) CreateTemplate(c *gin.Context) {
	var req entity.PromptTemplateInput
	if !dto.BindJSON(c, &req) {
		return
	}
	store, err := h.ws.LoadedPrompts(c.Request.Context())
	if err != nil {
		writeError(c, "failed to load prompt templates", err)
		return
	}
	t, err := store.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, "failed to create prompt template", err)
		return
	}
	dto.Created(c, t)
}

// UpdateTemplate 整体更新模板
// @Router /workspace/prompt-templates/{id} [put]
func (h *PromptHandler) UpdateTemplate(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req entity.PromptTemplateInput
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.TemplateIDKey, id)
	store, err := h.ws.LoadedPrompts(ctx)
	if err != nil {
		writeError(c, "failed to load prompt templates", err)
		return
	}
	t, err := store.Update(ctx, id, &req)
	if err != nil {
		writeError(c, "failed to update prompt template", err)
		return
	}
	dto.Success(c, t)
}

// DeleteTemplate 删除模板
// @Router /workspace/prompt-templates/{id} [delete]
func (h *PromptHandler) DeleteTemplate(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.TemplateIDKey, id)
	store, err := h.ws.LoadedPrompts(ctx)
	if err != nil {
		writeError(c, "failed to load prompt templates", err)
		return
	}
	if err := store.Delete(ctx, id); err != nil {
		writeError(c, "failed to delete prompt template", err)
		return
	}
	dto.NoContent(c)
}
