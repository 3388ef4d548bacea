// Package service 定义领域服务端口
package service

import (
	"context"
	"io"

	"z-novel-workspace/internal/domain/entity"
)

// ChatRequest 发往后端 /api/chat 与 /api/chat/stream 的规范化请求体
type ChatRequest struct {
	Message          string           `json:"message"`
	ConversationID   *int64           `json:"conversation_id"`
	History          []entity.Message `json:"history"`
	PromptTemplateID *int64           `json:"prompt_template_id"`
	AIModelID        *int64           `json:"ai_model_id"`
	ProjectID        *int64           `json:"project_id"`
	Temperature      *float64         `json:"temperature,omitempty"`
	MaxTokens        *int             `json:"max_tokens,omitempty"`
}

// ChatResponse 同步对话的后端响应
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
	Title          string `json:"title,omitempty"`
}

// RenderRequest 模板变量渲染请求
type RenderRequest struct {
	Content   string `json:"content"`
	ProjectID int64  `json:"project_id"`
}

// ChatBackend 后端对话能力
type ChatBackend interface {
	// RenderPrompt 替换内容中的 {{变量}}，返回渲染后的文本
	RenderPrompt(ctx context.Context, req *RenderRequest) (string, error)
	// Chat 同步对话，等待完整 JSON 响应
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	// ChatStream 打开流式响应体，调用方负责逐块消费并关闭
	ChatStream(ctx context.Context, req *ChatRequest) (io.ReadCloser, error)
}
