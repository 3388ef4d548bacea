// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/domain/entity"
)

// ChatRequest 在当前对话中发送消息
// 内容允许为空白，由对话存储统一返回空消息错误
type ChatRequest struct {
	Content          string `json:"content"`
	PromptTemplateID *int64 `json:"prompt_template_id,omitempty"`
	AIModelID        *int64 `json:"ai_model_id,omitempty"`
	Scope            string `json:"scope,omitempty" binding:"omitempty,oneof=chat assistant"`
}

// ChatResponse 同步对话响应
// applied=false 表示回复到达时当前对话已切换，回复未写入
type ChatResponse struct {
	Reply    *conversation.ChatReply `json:"reply"`
	Applied  bool                    `json:"applied"`
	Messages []entity.Message        `json:"messages"`
}

// SendMessageRequest 不修改对话状态的单次发送
type SendMessageRequest struct {
	Content          string           `json:"content"`
	ConversationID   *int64           `json:"conversation_id,omitempty"`
	History          []entity.Message `json:"history,omitempty"`
	PromptTemplateID *int64           `json:"prompt_template_id,omitempty"`
	AIModelID        *int64           `json:"ai_model_id,omitempty"`
}

// CreateDraftRequest 新建临时对话
type CreateDraftRequest struct {
	Title string `json:"title" binding:"max=255"`
}

// RenameConversationRequest 重命名对话
type RenameConversationRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// SetCurrentConversationRequest 切换当前对话，id 为空表示未保存的新会话
type SetCurrentConversationRequest struct {
	ID *int64 `json:"id"`
}

// AddMessageRequest 向当前对话追加一条消息
type AddMessageRequest struct {
	Role    entity.Role `json:"role" binding:"required,oneof=user assistant"`
	Content string      `json:"content"`
}

// ConversationListResponse 对话列表响应
type ConversationListResponse struct {
	Conversations []entity.Conversation `json:"conversations"`
}

// MessageListResponse 消息列表响应
type MessageListResponse struct {
	Messages []entity.Message `json:"messages"`
}
