// Package handler 提供 HTTP 请求处理器
package handler

import (
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/interfaces/http/dto"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

const (
	// bridgeQueueSize 单个编辑器待推送命令的上限
	bridgeQueueSize = 32
	// bridgeKeepAlive 心跳间隔，同时用于发现绑定已被释放
	bridgeKeepAlive = 15 * time.Second
)

var errBridgeClosed = errors.New(errors.CodeNoActiveEditor, "editor bridge closed")

// bridgeCommand 推送给编辑器宿主的命令
type bridgeCommand struct {
	Event  string
	Markup string
}

// bridgeEditor 以 SSE 连接代表外壳中的编辑器实例
// 写操作转为命令推送；内容由外壳通过 PUT /editor/content 回报
type bridgeEditor struct {
	id       string
	commands chan bridgeCommand
	done     chan struct{}
	once     sync.Once

	mu      sync.Mutex
	content string
}

func newBridgeEditor(content string) *bridgeEditor {
	return &bridgeEditor{
		id:       uuid.New().String(),
		commands: make(chan bridgeCommand, bridgeQueueSize),
		done:     make(chan struct{}),
		content:  content,
	}
}

func (e *bridgeEditor) Ready() bool {
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

func (e *bridgeEditor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.content
}

func (e *bridgeEditor) SetContent(markup string) error {
	if err := e.push(bridgeCommand{Event: "set_content", Markup: markup}); err != nil {
		return err
	}
	e.report(markup)
	return nil
}

func (e *bridgeEditor) InsertHTML(markup string) error {
	return e.push(bridgeCommand{Event: "insert", Markup: markup})
}

func (e *bridgeEditor) Destroy() {
	e.once.Do(func() { close(e.done) })
}

func (e *bridgeEditor) report(content string) {
	e.mu.Lock()
	e.content = content
	e.mu.Unlock()
}

// push 非阻塞入队；连接已关闭或外壳消费过慢时返回错误
func (e *bridgeEditor) push(cmd bridgeCommand) error {
	if !e.Ready() {
		return errBridgeClosed
	}
	select {
	case e.commands <- cmd:
		return nil
	default:
		return errors.New(errors.CodeNoActiveEditor, "editor bridge queue full")
	}
}

// EditorHandler 编辑器桥接处理器
type EditorHandler struct {
	ws *workspace.Workspace

	mu      sync.Mutex
	bridges map[string]*bridgeEditor
}

// NewEditorHandler 创建编辑器桥接处理器
func NewEditorHandler(ws *workspace.Workspace) *EditorHandler {
	return &EditorHandler{
		ws:      ws,
		bridges: make(map[string]*bridgeEditor),
	}
}

// Events 绑定编辑器实例并推送命令
// @Summary 绑定编辑器
// @Description 外壳为活动章节挂载编辑器后建立此连接；连接期间该编辑器接收 insert/set_content 命令，断开即解绑
// @Tags Editor
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 409 {object} dto.ErrorResponse
// @Router /workspace/editor/events [get]
func (h *EditorHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()
	sessions := h.ws.Editor

	ed := newBridgeEditor("")
	active, err := sessions.BindEditor(ed)
	if err != nil {
		writeError(c, "editor bind rejected", err)
		return
	}
	ed.report(active.Content)
	h.track(ed)
	defer func() {
		h.untrack(ed)
		sessions.ReleaseEditorInstance(ed)
		ed.Destroy()
		logger.Debug(ctx, "editor bridge closed", "session_id", ed.id)
	}()

	logger.Info(ctx, "editor bridge bound", "session_id", ed.id, "chapter_id", active.ID)
	setSSEHeaders(c)
	c.SSEvent("bound", gin.H{
		"session_id": ed.id,
		"chapter_id": active.ID,
		"content":    active.Content,
	})
	c.Writer.Flush()

	ticker := time.NewTicker(bridgeKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case cmd := <-ed.commands:
			c.SSEvent(cmd.Event, gin.H{"markup": cmd.Markup})
			return true

		case <-ticker.C:
			if !sessions.IsBound(ed) {
				// 绑定已被释放（章节关闭或被其他编辑器取代）
				c.SSEvent("unbound", gin.H{"session_id": ed.id})
				return false
			}
			c.SSEvent("ping", gin.H{"ts": time.Now().Unix()})
			return true

		case <-ed.done:
			return false

		case <-ctx.Done():
			return false
		}
	})
}

// Unbind 解除当前编辑器绑定
// @Router /workspace/editor [delete]
func (h *EditorHandler) Unbind(c *gin.Context) {
	h.ws.Editor.ClearActiveEditorInstance()
	dto.NoContent(c)
}

// Insert 通过活动编辑器插入内容
// @Summary 插入内容
// @Description 只写入活动章节绑定的编辑器；没有可用编辑器时返回 409
// @Tags Editor
// @Accept json
// @Produce json
// @Param body body dto.InsertContentRequest true "HTML 片段"
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /workspace/editor/insert [post]
func (h *EditorHandler) Insert(c *gin.Context) {
	var req dto.InsertContentRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	if err := h.ws.Editor.InsertContent(c.Request.Context(), req.Content); err != nil {
		writeError(c, "failed to insert content", err)
		return
	}
	dto.NoContent(c)
}

// ReportContent 外壳回报编辑器当前内容，同步到活动章节的本地投影
// @Router /workspace/editor/content [put]
func (h *EditorHandler) ReportContent(c *gin.Context) {
	var req dto.EditorContentRequest
	if !dto.BindJSON(c, &req) {
		return
	}

	ed, ok := h.lookup(req.SessionID)
	if !ok || !h.ws.Editor.IsBound(ed) {
		writeError(c, "stale editor session", errors.ErrNoActiveEditor.WithDetail(req.SessionID))
		return
	}
	ed.report(req.Content)

	// 编辑器属于其他章节时只记录内容，不写入活动章节
	id, ok := h.ws.Editor.ActiveChapterID()
	if !ok || !h.ws.Editor.HasActiveEditor() {
		writeError(c, "editor not bound to active chapter", errors.ErrNoActiveEditor)
		return
	}
	content := req.Content
	ch, err := h.ws.Editor.UpdateChapter(id, entity.ChapterPatch{Content: &content})
	if err != nil {
		writeError(c, "failed to sync editor content", err)
		return
	}
	dto.Success(c, ch)
}

// GetSelection 获取缓存的选中文本
// @Router /workspace/editor/selection [get]
func (h *EditorHandler) GetSelection(c *gin.Context) {
	dto.Success(c, dto.SelectionResponse{Text: h.ws.Editor.GetSelectedText()})
}

// UpdateSelection 更新缓存的选中文本
// @Router /workspace/editor/selection [put]
func (h *EditorHandler) UpdateSelection(c *gin.Context) {
	var req dto.SelectionRequest
	if !dto.BindJSON(c, &req) {
		return
	}
	h.ws.Editor.UpdateCachedSelectedText(req.Text)
	dto.Success(c, dto.SelectionResponse{Text: req.Text})
}

// ClearSelection 清空缓存的选中文本
// @Router /workspace/editor/selection [delete]
func (h *EditorHandler) ClearSelection(c *gin.Context) {
	h.ws.Editor.ClearCachedSelectedText()
	dto.NoContent(c)
}

func (h *EditorHandler) track(ed *bridgeEditor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bridges[ed.id] = ed
}

func (h *EditorHandler) untrack(ed *bridgeEditor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.bridges, ed.id)
}

func (h *EditorHandler) lookup(id string) (*bridgeEditor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ed, ok := h.bridges[id]
	return ed, ok
}
