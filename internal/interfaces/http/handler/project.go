// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/logger"
)

// ProjectHandler 当前项目处理器
type ProjectHandler struct {
	ws *workspace.Workspace
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(ws *workspace.Workspace) *ProjectHandler {
	return &ProjectHandler{ws: ws}
}

// GetCurrentProject 获取当前项目
// @Summary 获取当前项目
// @Tags Projects
// @Produce json
// @Success 200 {object} dto.Response[dto.CurrentProjectResponse]
// @Router /workspace/project [get]
func (h *ProjectHandler) GetCurrentProject(c *gin.Context) {
	resp := dto.CurrentProjectResponse{}
	if p, ok := h.ws.Project.Current(); ok {
		resp.HasProject = true
		resp.Project = &p
	}
	dto.Success(c, resp)
}

// SelectProject 选择当前项目
// @Summary 选择当前项目
// @Description 从后端获取项目并写入本地记录；切换到其他项目时关闭已打开的章节
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.SelectProjectRequest true "项目 ID"
// @Success 200 {object} dto.Response[entity.Project]
// @Failure 404 {object} dto.ErrorResponse
// @Router /workspace/project [put]
func (h *ProjectHandler) SelectProject(c *gin.Context) {
	var req dto.SelectProjectRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProjectIDKey, req.ID)
	p, err := h.ws.SelectProject(ctx, req.ID)
	if err != nil {
		writeError(c, "failed to select project", err)
		return
	}
	dto.Success(c, p)
}

// ClearProject 清除当前项目
// @Router /workspace/project [delete]
func (h *ProjectHandler) ClearProject(c *gin.Context) {
	if err := h.ws.ClearProject(c.Request.Context()); err != nil {
		writeError(c, "failed to clear current project", err)
		return
	}
	dto.NoContent(c)
}

// ListProjects 获取项目列表
// @Router /workspace/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	list, err := h.ws.Project.List(c.Request.Context())
	if err != nil {
		writeError(c, "failed to list projects", err)
		return
	}
	dto.Success(c, dto.ProjectListResponse{Projects: list})
}

// UpdateProject 更新项目；更新的是当前项目时同步本地记录
// @Router /workspace/projects/{id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProjectIDKey, id)
	p, err := h.ws.Project.Update(ctx, id, req.ToPatch())
	if err != nil {
		writeError(c, "failed to update project", err)
		return
	}
	dto.Success(c, p)
}

// DeleteProject 删除项目；删除的是当前项目时清除本地记录
// @Router /workspace/projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ProjectIDKey, id)
	if err := h.ws.DeleteProject(ctx, id); err != nil {
		writeError(c, "failed to delete project", err)
		return
	}
	dto.NoContent(c)
}
