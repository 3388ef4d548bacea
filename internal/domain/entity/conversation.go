// Package entity 定义领域实体
package entity

import (
	"time"
)

// DefaultConversationTitle 新建对话的默认标题
const DefaultConversationTitle = "新对话"

// Conversation 对话
// IsTemp=true 表示仅存在于客户端、尚未被后端持久化
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsTemp    bool      `json:"is_temp,omitempty"`
}

// NewTempConversation 创建客户端临时对话，ID 仅用于本地区分
func NewTempConversation(title string, now time.Time) *Conversation {
	if title == "" {
		title = DefaultConversationTitle
	}
	return &Conversation{
		ID:        now.UnixMilli(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		IsTemp:    true,
	}
}

// Message 对话消息，值类型
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
