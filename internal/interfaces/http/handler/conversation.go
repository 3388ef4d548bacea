// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/logger"
)

// ConversationHandler 对话处理器
type ConversationHandler struct {
	ws *workspace.Workspace
}

// NewConversationHandler 创建对话处理器
func NewConversationHandler(ws *workspace.Workspace) *ConversationHandler {
	return &ConversationHandler{ws: ws}
}

// ListConversations 从后端刷新对话列表，本地临时对话保留在列表前部
// @Summary 获取对话列表
// @Tags Conversations
// @Produce json
// @Success 200 {object} dto.Response[dto.ConversationListResponse]
// @Router /workspace/conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	list, err := h.ws.Conversations.FetchConversations(c.Request.Context())
	if err != nil {
		writeError(c, "failed to fetch conversations", err)
		return
	}
	dto.Success(c, dto.ConversationListResponse{Conversations: list})
}

// ListMessages 获取指定对话的消息，不切换当前对话
// @Router /workspace/conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, id)
	msgs, err := h.ws.Conversations.FetchConversationMessages(ctx, id)
	if err != nil {
		writeError(c, "failed to fetch conversation messages", err)
		return
	}
	dto.Success(c, dto.MessageListResponse{Messages: msgs})
}

// StartNew 开始未保存的新会话，消息重置为问候语
// @Router /workspace/conversations/new [post]
func (h *ConversationHandler) StartNew(c *gin.Context) {
	h.ws.Conversations.StartNewConversation()
	dto.Success(c, h.ws.Conversations.Snapshot())
}

// CreateDraft 新建客户端临时对话并设为当前对话
// @Router /workspace/conversations/draft [post]
func (h *ConversationHandler) CreateDraft(c *gin.Context) {
	var req dto.CreateDraftRequest
	if c.Request.ContentLength > 0 && !dto.BindJSON(c, &req) {
		return
	}
	dto.Created(c, h.ws.Conversations.CreateNewConversation(req.Title))
}

// Current 获取当前对话状态
// @Router /workspace/conversations/current [get]
func (h *ConversationHandler) Current(c *gin.Context) {
	dto.Success(c, h.ws.Conversations.Snapshot())
}

// SetCurrent 切换当前对话标识
// @Router /workspace/conversations/current [put]
func (h *ConversationHandler) SetCurrent(c *gin.Context) {
	var req dto.SetCurrentConversationRequest
	if !dto.BindJSON(c, &req) {
		return
	}
	h.ws.Conversations.SetCurrentConversationID(req.ID)
	dto.Success(c, h.ws.Conversations.Snapshot())
}

// AddMessage 向当前对话追加一条消息
// @Router /workspace/conversations/current/messages [post]
func (h *ConversationHandler) AddMessage(c *gin.Context) {
	var req dto.AddMessageRequest
	if !dto.BindJSON(c, &req) {
		return
	}
	h.ws.Conversations.AddMessage(entity.Message{Role: req.Role, Content: req.Content})
	dto.Success(c, dto.MessageListResponse{Messages: h.ws.Conversations.Messages()})
}

// ClearMessages 清空当前对话的消息，不改变当前对话标识
// @Router /workspace/conversations/current/messages [delete]
func (h *ConversationHandler) ClearMessages(c *gin.Context) {
	h.ws.Conversations.ClearCurrentMessages()
	dto.NoContent(c)
}

// LoadConversation 加载对话并设为当前对话
// @Router /workspace/conversations/{id}/load [post]
func (h *ConversationHandler) LoadConversation(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, id)
	if err := h.ws.Conversations.LoadConversation(ctx, id); err != nil {
		writeError(c, "failed to load conversation", err)
		return
	}
	dto.Success(c, h.ws.Conversations.Snapshot())
}

// RenameConversation 重命名对话
// @Router /workspace/conversations/{id} [put]
func (h *ConversationHandler) RenameConversation(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}
	var req dto.RenameConversationRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, id)
	if err := h.ws.Conversations.RenameConversation(ctx, id, req.Title); err != nil {
		writeError(c, "failed to rename conversation", err)
		return
	}
	dto.Success(c, h.ws.Conversations.Snapshot())
}

// DeleteConversation 删除对话；删除当前对话时重置为问候语
// @Router /workspace/conversations/{id} [delete]
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id, ok := dto.BindID(c, "id")
	if !ok {
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, id)
	if err := h.ws.Conversations.DeleteConversation(ctx, id); err != nil {
		writeError(c, "failed to delete conversation", err)
		return
	}
	dto.NoContent(c)
}

// Chat 在当前对话中完成一轮同步问答
// @Summary 发送对话消息
// @Description 回复到达时当前对话已切换则不写入，applied=false
// @Tags Conversations
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "消息"
// @Success 200 {object} dto.Response[dto.ChatResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /workspace/chat [post]
func (h *ConversationHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	opts := h.ws.TurnOptions(conversation.Scope(req.Scope), req.PromptTemplateID, req.AIModelID)
	reply, applied, err := h.ws.Conversations.Converse(c.Request.Context(), req.Content, opts)
	if err != nil {
		writeError(c, "chat failed", err)
		return
	}

	dto.Success(c, dto.ChatResponse{
		Reply:    reply,
		Applied:  applied,
		Messages: h.ws.Conversations.Messages(),
	})
}

// AssistantSend 助手面板的单次发送，不读写当前对话
// @Router /workspace/assistant/send [post]
func (h *ConversationHandler) AssistantSend(c *gin.Context) {
	var req dto.SendMessageRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	opts := h.ws.TurnOptions(conversation.ScopeAssistant, req.PromptTemplateID, req.AIModelID)
	reply, err := h.ws.Conversations.SendMessage(c.Request.Context(), conversation.SendRequest{
		Content:          req.Content,
		ConversationID:   req.ConversationID,
		History:          req.History,
		PromptTemplateID: opts.PromptTemplateID,
		AIModelID:        opts.AIModelID,
		ProjectID:        opts.ProjectID,
		Scope:            opts.Scope,
	})
	if err != nil {
		writeError(c, "assistant send failed", err)
		return
	}
	dto.Success(c, reply)
}
