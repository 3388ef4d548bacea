// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-novel-workspace/internal/domain/entity"
)

// OpenChapterRequest 打开章节请求
type OpenChapterRequest struct {
	ID int64 `json:"id" binding:"required,gt=0"`
}

// UpdateChapterRequest 更新章节请求
type UpdateChapterRequest struct {
	Title     *string `json:"title,omitempty" binding:"omitempty,max=255"`
	Content   *string `json:"content,omitempty"`
	WordCount *int    `json:"word_count,omitempty" binding:"omitempty,gte=0"`
	Order     *int    `json:"order,omitempty"`
	VolumeID  *int64  `json:"volume_id,omitempty"`
}

// ToPatch 转换为章节补丁
func (r *UpdateChapterRequest) ToPatch() entity.ChapterPatch {
	return entity.ChapterPatch{
		Title:     r.Title,
		Content:   r.Content,
		WordCount: r.WordCount,
		Order:     r.Order,
		VolumeID:  r.VolumeID,
	}
}

// InsertContentRequest 在编辑器光标处插入内容
type InsertContentRequest struct {
	Content string `json:"content" binding:"required"`
}

// EditorContentRequest 编辑器上报的当前内容
type EditorContentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Content   string `json:"content"`
}

// SelectionRequest 缓存选中文本
type SelectionRequest struct {
	Text string `json:"text"`
}

// SelectionResponse 选中文本响应
type SelectionResponse struct {
	Text string `json:"text"`
}

// AssistantResponse 助手侧栏状态
type AssistantResponse struct {
	Visible bool `json:"visible"`
}
