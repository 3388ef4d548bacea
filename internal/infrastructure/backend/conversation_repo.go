package backend

import (
	"context"
	"fmt"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
)

// ConversationRepository 对话仓储的 REST 实现
type ConversationRepository struct {
	client *Client
}

// NewConversationRepository 创建对话仓储
func NewConversationRepository(client *Client) repository.ConversationRepository {
	return &ConversationRepository{client: client}
}

func (r *ConversationRepository) List(ctx context.Context) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	if err := r.client.do(ctx, http.MethodGet, "/api/conversations", "/api/conversations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64) ([]entity.Message, error) {
	var out []entity.Message
	path := fmt.Sprintf("/api/conversations/%d/messages", conversationID)
	if err := r.client.do(ctx, http.MethodGet, "/api/conversations/:id/messages", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type renameRequest struct {
	Title string `json:"title"`
}

func (r *ConversationRepository) Rename(ctx context.Context, conversationID int64, title string) error {
	path := fmt.Sprintf("/api/conversations/%d", conversationID)
	return r.client.do(ctx, http.MethodPut, "/api/conversations/:id", path, &renameRequest{Title: title}, nil)
}

func (r *ConversationRepository) Delete(ctx context.Context, conversationID int64) error {
	path := fmt.Sprintf("/api/conversations/%d", conversationID)
	return r.client.do(ctx, http.MethodDelete, "/api/conversations/:id", path, nil, nil)
}
