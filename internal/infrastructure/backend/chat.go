package backend

import (
	"context"
	"io"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/service"
)

// ChatBackend 后端对话接口的 REST 实现
type ChatBackend struct {
	client *Client
}

// NewChatBackend 创建对话后端
func NewChatBackend(client *Client) service.ChatBackend {
	return &ChatBackend{client: client}
}

type renderResponse struct {
	RenderedContent string `json:"rendered_content"`
}

func (b *ChatBackend) RenderPrompt(ctx context.Context, req *service.RenderRequest) (string, error) {
	var out renderResponse
	if err := b.client.do(ctx, http.MethodPost, "/api/prompts/render", "/api/prompts/render", req, &out); err != nil {
		return "", err
	}
	return out.RenderedContent, nil
}

func (b *ChatBackend) Chat(ctx context.Context, req *service.ChatRequest) (*service.ChatResponse, error) {
	var out service.ChatResponse
	if err := b.client.do(ctx, http.MethodPost, "/api/chat", "/api/chat", normalize(req), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *ChatBackend) ChatStream(ctx context.Context, req *service.ChatRequest) (io.ReadCloser, error) {
	return b.client.openStream(ctx, "/api/chat/stream", "/api/chat/stream", normalize(req))
}

// normalize 保证 history 序列化为数组而非 null
func normalize(req *service.ChatRequest) *service.ChatRequest {
	if req.History != nil {
		return req
	}
	cp := *req
	cp.History = []entity.Message{}
	return &cp
}
