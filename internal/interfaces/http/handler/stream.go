// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// streamReadSize 单次读取上游响应体的字节数
const streamReadSize = 4096

// StreamHandler 流式对话处理器
type StreamHandler struct {
	ws *workspace.Workspace
}

// NewStreamHandler 创建流式对话处理器
func NewStreamHandler(ws *workspace.Workspace) *StreamHandler {
	return &StreamHandler{ws: ws}
}

// ChatStream 流式发送消息，并以 SSE 转发后端响应
// @Summary 流式对话
// @Description 校验失败或后端拒绝时返回普通 JSON 错误；开始转发后以 content/done/stale/error 事件推送
// @Tags Conversations
// @Accept json
// @Produce text/event-stream
// @Param body body dto.ChatRequest true "消息"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /workspace/chat/stream [post]
func (h *StreamHandler) ChatStream(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChatRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	store := h.ws.Conversations
	opts := h.ws.TurnOptions(conversation.Scope(req.Scope), req.PromptTemplateID, req.AIModelID)
	ticket, sendReq, err := store.BeginTurn(req.Content, opts)
	if err != nil {
		writeError(c, "chat stream rejected", err)
		return
	}
	defer store.FinishStream(ticket)

	body, err := store.SendMessageStream(ctx, sendReq)
	if err != nil {
		writeError(c, "chat stream failed", err)
		return
	}
	defer body.Close()

	chunks, errs := readChunks(ctx, body)
	h.relay(c, ticket, chunks, errs)
}

// relay 把分片写回对话存储并推送给客户端
func (h *StreamHandler) relay(c *gin.Context, ticket conversation.Ticket, chunks <-chan string, errs <-chan error) {
	ctx := c.Request.Context()
	store := h.ws.Conversations
	setSSEHeaders(c)

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				c.SSEvent("done", gin.H{
					"chunks":          index,
					"conversation_id": ticket.ConversationID(),
				})
				return false
			}
			if !store.AppendStreamChunk(ctx, ticket, index, chunk) {
				// 当前对话已切换，后续分片不再有意义
				c.SSEvent("stale", gin.H{"index": index})
				return false
			}
			c.SSEvent("content", gin.H{
				"chunk": chunk,
				"index": index,
			})
			index++
			return true

		case err := <-errs:
			logger.Error(ctx, "chat stream interrupted", err, "chunks", index)
			appErr := errors.AsAppError(err)
			c.SSEvent("error", gin.H{
				"message": appErr.Message,
				"detail":  appErr.Detail,
			})
			return false

		case <-ctx.Done():
			// 客户端断开
			return false
		}
	})
}

// readChunks 在独立 goroutine 中读取响应体
// 分片只在完整的 UTF-8 字符边界处切开；读到 EOF 时关闭 chunks
func readChunks(ctx context.Context, body io.Reader) (<-chan string, <-chan error) {
	chunks := make(chan string)
	errs := make(chan error, 1)

	go func() {
		buf := make([]byte, streamReadSize)
		var pending []byte
		for {
			n, err := body.Read(buf)
			if n > 0 {
				pending = append(pending, buf[:n]...)
				var complete []byte
				complete, pending = splitComplete(pending)
				if len(complete) > 0 {
					select {
					case chunks <- string(complete):
					case <-ctx.Done():
						return
					}
				}
			}
			if err == io.EOF {
				if len(pending) > 0 {
					select {
					case chunks <- string(pending):
					case <-ctx.Done():
						return
					}
				}
				close(chunks)
				return
			}
			if err != nil {
				errs <- errors.Wrap(err, errors.CodeBackendError, "chat stream read failed").WithDetail(err.Error())
				return
			}
		}
	}()
	return chunks, errs
}

// splitComplete 拆出末尾不完整的多字节字符，complete 总是完整字符序列
func splitComplete(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if !utf8.FullRune(b[i:]) {
			return b[:i], append([]byte(nil), b[i:]...)
		}
		break
	}
	return b, nil
}
