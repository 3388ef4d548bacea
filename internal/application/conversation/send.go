package conversation

import (
	"context"
	"io"
	"strings"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
	"z-novel-workspace/pkg/metrics"
)

// templateMarker 内容包含此标记时先经后端渲染模板变量
const templateMarker = "{{"

// Scope 发送来源，决定使用哪组默认参数
type Scope string

const (
	ScopeChat      Scope = "chat"
	ScopeAssistant Scope = "assistant"
)

// SendRequest 发送一条用户消息所需的参数
type SendRequest struct {
	Content          string
	ConversationID   *int64
	History          []entity.Message
	PromptTemplateID *int64
	AIModelID        *int64
	ProjectID        *int64
	Scope            Scope
}

// ChatReply 同步对话的回复
type ChatReply struct {
	Content        string `json:"content"`
	ConversationID *int64 `json:"conversation_id,omitempty"`
	Title          string `json:"title,omitempty"`
}

// SendMessage 同步发送消息，不修改对话状态
// 内容去除首尾空白后为空时直接失败，不发起任何网络请求；上游错误原样返回，不重试
func (s *Store) SendMessage(ctx context.Context, req SendRequest) (*ChatReply, error) {
	payload, err := s.buildPayload(ctx, req)
	if err != nil {
		metrics.ChatSendTotal.WithLabelValues("sync", "rejected").Inc()
		return nil, err
	}

	resp, err := s.chat.Chat(ctx, payload)
	if err != nil {
		metrics.ChatSendTotal.WithLabelValues("sync", "error").Inc()
		logger.Error(ctx, "chat request failed", err)
		return nil, err
	}

	metrics.ChatSendTotal.WithLabelValues("sync", "success").Inc()
	return &ChatReply{
		Content:        resp.Response,
		ConversationID: resp.ConversationID,
		Title:          resp.Title,
	}, nil
}

// SendMessageStream 流式发送消息，返回未读取的响应体
// 调用方负责逐块消费并关闭
func (s *Store) SendMessageStream(ctx context.Context, req SendRequest) (io.ReadCloser, error) {
	payload, err := s.buildPayload(ctx, req)
	if err != nil {
		metrics.ChatSendTotal.WithLabelValues("stream", "rejected").Inc()
		return nil, err
	}

	body, err := s.chat.ChatStream(ctx, payload)
	if err != nil {
		metrics.ChatSendTotal.WithLabelValues("stream", "error").Inc()
		logger.Error(ctx, "chat stream request failed", err)
		return nil, err
	}

	metrics.ChatSendTotal.WithLabelValues("stream", "success").Inc()
	return body, nil
}

// TurnOptions 当前对话一轮发送的可选参数
type TurnOptions struct {
	PromptTemplateID *int64
	AIModelID        *int64
	ProjectID        *int64
	Scope            Scope
}

// BeginTurn 校验内容、捕获票据并把用户消息追加到当前对话
// 返回的请求携带追加前的历史消息
func (s *Store) BeginTurn(content string, opts TurnOptions) (Ticket, SendRequest, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Ticket{}, SendRequest{}, errors.ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ticketLocked()
	req := SendRequest{
		Content:          trimmed,
		ConversationID:   s.remoteIDLocked(),
		History:          s.historyLocked(),
		PromptTemplateID: opts.PromptTemplateID,
		AIModelID:        opts.AIModelID,
		ProjectID:        opts.ProjectID,
		Scope:            opts.Scope,
	}
	s.messages = append(s.messages, entity.Message{Role: entity.RoleUser, Content: trimmed})
	return t, req, nil
}

// Converse 在当前对话中完成一轮同步问答
// 回复到达时若当前对话已切换，回复被丢弃且 applied=false
func (s *Store) Converse(ctx context.Context, content string, opts TurnOptions) (reply *ChatReply, applied bool, err error) {
	t, req, err := s.BeginTurn(content, opts)
	if err != nil {
		return nil, false, err
	}

	reply, err = s.SendMessage(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return reply, s.ApplyReply(ctx, t, reply), nil
}

// buildPayload 校验并规范化请求；需要时先渲染模板变量
func (s *Store) buildPayload(ctx context.Context, req SendRequest) (*service.ChatRequest, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errors.ErrEmptyMessage
	}

	message := content
	if strings.Contains(content, templateMarker) && req.ProjectID != nil && *req.ProjectID != 0 {
		rendered, err := s.chat.RenderPrompt(ctx, &service.RenderRequest{
			Content:   content,
			ProjectID: *req.ProjectID,
		})
		if err != nil {
			logger.Error(ctx, "failed to render user input", err, "project_id", *req.ProjectID)
			return nil, err
		}
		message = rendered
	}

	payload := &service.ChatRequest{
		Message:          message,
		ConversationID:   req.ConversationID,
		PromptTemplateID: req.PromptTemplateID,
		AIModelID:        req.AIModelID,
		ProjectID:        req.ProjectID,
	}

	history := req.History
	if s.defaults != nil {
		d := s.defaults.ChatDefaults()
		if req.Scope == ScopeAssistant {
			d = s.defaults.AssistantDefaults()
		}
		if payload.AIModelID == nil {
			payload.AIModelID = d.AIModelID
		}
		if payload.PromptTemplateID == nil {
			payload.PromptTemplateID = d.PromptTemplateID
		}
		temperature, maxTokens := d.Temperature, d.MaxTokens
		payload.Temperature = &temperature
		payload.MaxTokens = &maxTokens
		if limit := d.MemoryRounds * 2; d.MemoryRounds > 0 && len(history) > limit {
			history = history[len(history)-limit:]
		}
	}

	payload.History = make([]entity.Message, 0, len(history))
	for _, m := range history {
		payload.History = append(payload.History, entity.Message{Role: m.Role, Content: m.Content})
	}
	return payload, nil
}

// remoteIDLocked 当前对话的后端 ID；临时对话不向后端暴露其本地 ID
func (s *Store) remoteIDLocked() *int64 {
	if s.currentID == nil {
		return nil
	}
	if i := s.findLocked(*s.currentID); i >= 0 && s.conversations[i].IsTemp {
		return nil
	}
	return cloneID(s.currentID)
}

func (s *Store) historyLocked() []entity.Message {
	out := make([]entity.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
