// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// ConversationRepository 对话远端仓储
type ConversationRepository interface {
	List(ctx context.Context) ([]*entity.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]entity.Message, error)
	Rename(ctx context.Context, conversationID int64, title string) error
	Delete(ctx context.Context, conversationID int64) error
}
