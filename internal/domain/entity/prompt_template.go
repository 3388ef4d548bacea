// Package entity 定义领域实体
package entity

import "time"

// PromptTemplate 项目下的提示词模板
type PromptTemplate struct {
	ID        int64          `json:"id"`
	ProjectID int64          `json:"project_id"`
	Name      string         `json:"name"`
	Category  string         `json:"category,omitempty"`
	Content   string         `json:"content"`
	Variables map[string]any `json:"variables,omitempty"`
	IsDefault bool           `json:"is_default"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}

// PromptTemplateInput 创建或整体更新模板的请求体
type PromptTemplateInput struct {
	Name      string         `json:"name" binding:"required"`
	Category  string         `json:"category,omitempty"`
	Content   string         `json:"content" binding:"required"`
	Variables map[string]any `json:"variables,omitempty"`
	IsDefault bool           `json:"is_default"`
}
