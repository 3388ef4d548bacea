// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/logger"
)

// ChapterHandler 编辑会话中的章节处理器
type ChapterHandler struct {
	ws *workspace.Workspace
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(ws *workspace.Workspace) *ChapterHandler {
	return &ChapterHandler{ws: ws}
}

// ListOpenChapters 获取编辑会话快照
// @Summary 获取已打开章节
// @Tags Chapters
// @Produce json
// @Success 200 {object} dto.Response[editor.Snapshot]
// @Router /workspace/chapters [get]
func (h *ChapterHandler) ListOpenChapters(c *gin.Context) {
	dto.Success(c, h.ws.Editor.Snapshot())
}

// OpenChapter 打开章节并设为活动章节
// @Summary 打开章节
// @Description 已打开时仅切换活动章节；达到上限时返回 409 且不发起请求
// @Tags Chapters
// @Accept json
// @Produce json
// @Param body body dto.OpenChapterRequest true "章节 ID"
// @Success 200 {object} dto.Response[editor.Snapshot]
// @Failure 409 {object} dto.ErrorResponse
// @Router /workspace/chapters/open [post]
func (h *ChapterHandler) OpenChapter(c *gin.Context) {
	var req dto.OpenChapterRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	if _, err := h.ws.OpenChapter(c.Request.Context(), req.ID); err != nil {
		writeError(c, "failed to open chapter", err)
		return
	}
	dto.Success(c, h.ws.Editor.Snapshot())
}

// ActivateChapter 切换活动章节
// @Router /workspace/chapters/{id}/activate [post]
func (h *ChapterHandler) ActivateChapter(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	if err := h.ws.Editor.SetActiveChapter(id); err != nil {
		writeError(c, "failed to activate chapter", err)
		return
	}
	dto.Success(c, h.ws.Editor.Snapshot())
}

// UpdateChapter 更新已打开章节
// persist=false 时只更新本地投影，否则先写入后端
// @Router /workspace/chapters/{id} [patch]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateChapterRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ChapterIDKey, id)
	if !dto.QueryBool(c, "persist", true) {
		ch, err := h.ws.Editor.UpdateChapter(id, req.ToPatch())
		if err != nil {
			writeError(c, "failed to update chapter", err)
			return
		}
		dto.Success(c, ch)
		return
	}

	ch, err := h.ws.SaveChapter(ctx, id, req.ToPatch())
	if err != nil {
		writeError(c, "failed to save chapter", err)
		return
	}
	dto.Success(c, ch)
}

// CloseChapter 关闭章节，未打开时为空操作
// @Router /workspace/chapters/{id} [delete]
func (h *ChapterHandler) CloseChapter(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ChapterIDKey, id)
	h.ws.Editor.CloseChapter(ctx, id)
	dto.Success(c, h.ws.Editor.Snapshot())
}

// CloseAllChapters 关闭全部章节
// @Router /workspace/chapters [delete]
func (h *ChapterHandler) CloseAllChapters(c *gin.Context) {
	h.ws.Editor.CloseAllChapters(c.Request.Context())
	dto.Success(c, h.ws.Editor.Snapshot())
}

// ToggleAssistant 切换创作助手侧栏
// @Router /workspace/assistant/toggle [post]
func (h *ChapterHandler) ToggleAssistant(c *gin.Context) {
	dto.Success(c, dto.AssistantResponse{Visible: h.ws.Editor.ToggleCreativeAssistant()})
}

// AssistantState 获取创作助手侧栏状态
// @Router /workspace/assistant [get]
func (h *ChapterHandler) AssistantState(c *gin.Context) {
	dto.Success(c, dto.AssistantResponse{Visible: h.ws.Editor.AssistantVisible()})
}
