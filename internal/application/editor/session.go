// Package editor 管理多章节编辑会话与当前绑定的编辑器实例
package editor

import (
	"context"
	"slices"
	"sync"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
	"z-novel-workspace/pkg/metrics"
)

// DefaultMaxOpenChapters 默认同时打开的章节上限
const DefaultMaxOpenChapters = 3

// SessionManager 编辑会话管理器
// 独占 openChapters 与 activeChapterID；章节持久化由后端负责
type SessionManager struct {
	mu sync.Mutex

	maxOpen   int
	chapters  []entity.Chapter // 按打开顺序
	activeID  int64
	hasActive bool

	editor      Handle
	editorOwner int64 // 绑定编辑器时的活动章节

	cachedSelection  string
	assistantVisible bool
}

// NewSessionManager 创建编辑会话管理器，maxOpen<=0 时使用默认上限
func NewSessionManager(maxOpen int) *SessionManager {
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenChapters
	}
	return &SessionManager{maxOpen: maxOpen}
}

// MaxOpenChapters 返回配置的上限
func (m *SessionManager) MaxOpenChapters() int {
	return m.maxOpen
}

// OpenChapter 打开章节并设为活动章节
// 已打开时仅切换活动章节；达到上限时拒绝且不修改任何状态，从不自动淘汰
func (m *SessionManager) OpenChapter(ctx context.Context, chapter entity.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(chapter.ID) >= 0 {
		m.setActive(chapter.ID)
		return nil
	}

	if len(m.chapters) >= m.maxOpen {
		logger.Debug(ctx, "open chapter rejected at capacity",
			"chapter_id", chapter.ID,
			"max_open_chapters", m.maxOpen,
		)
		return m.capacityError()
	}

	m.chapters = append(m.chapters, chapter)
	m.setActive(chapter.ID)
	metrics.OpenChapters.Set(float64(len(m.chapters)))
	return nil
}

// CheckCapacity 判断章节能否打开：已打开或仍有空位时返回 nil
func (m *SessionManager) CheckCapacity(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) >= 0 || len(m.chapters) < m.maxOpen {
		return nil
	}
	return m.capacityError()
}

func (m *SessionManager) capacityError() *errors.AppError {
	return errors.Newf(errors.CodeCapacityExceeded,
		"最多只能同时打开%d个章节，请先关闭一个章节", m.maxOpen)
}

// CloseChapter 关闭章节，未打开时为空操作
// 关闭活动章节时提升最近打开的剩余章节；全部关闭后释放编辑器与选区缓存
func (m *SessionManager) CloseChapter(ctx context.Context, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return
	}
	m.chapters = slices.Delete(m.chapters, idx, idx+1)
	metrics.OpenChapters.Set(float64(len(m.chapters)))

	if m.editor != nil && m.editorOwner == id {
		m.releaseEditor()
	}

	if m.hasActive && m.activeID == id {
		if n := len(m.chapters); n > 0 {
			m.setActive(m.chapters[n-1].ID)
		} else {
			m.hasActive = false
			m.activeID = 0
			m.releaseEditor()
			m.cachedSelection = ""
		}
	}

	logger.Debug(ctx, "chapter closed", "chapter_id", id, "open_chapters", len(m.chapters))
}

// CloseAllChapters 无条件清空所有打开的章节、活动章节与编辑器绑定
func (m *SessionManager) CloseAllChapters(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chapters = nil
	m.hasActive = false
	m.activeID = 0
	m.releaseEditor()
	m.cachedSelection = ""
	metrics.OpenChapters.Set(0)
}

// SetActiveChapter 切换活动章节，章节必须已打开
func (m *SessionManager) SetActiveChapter(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(id) < 0 {
		return errors.ErrChapterNotOpen
	}
	m.setActive(id)
	return nil
}

// UpdateChapter 合并更新已打开章节的投影
func (m *SessionManager) UpdateChapter(id int64, patch entity.ChapterPatch) (entity.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(id)
	if idx < 0 {
		return entity.Chapter{}, errors.ErrChapterNotOpen
	}
	m.chapters[idx] = patch.Apply(m.chapters[idx])
	return m.chapters[idx], nil
}

// ActiveChapter 返回活动章节
func (m *SessionManager) ActiveChapter() (entity.Chapter, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasActive {
		return entity.Chapter{}, false
	}
	idx := m.indexOf(m.activeID)
	if idx < 0 {
		return entity.Chapter{}, false
	}
	return m.chapters[idx], true
}

// ActiveChapterID 返回活动章节 ID
func (m *SessionManager) ActiveChapterID() (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID, m.hasActive
}

// IsChapterOpen 判断章节是否已打开
func (m *SessionManager) IsChapterOpen(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(id) >= 0
}

// CanOpenMoreChapters 是否还能打开新章节
func (m *SessionManager) CanOpenMoreChapters() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chapters) < m.maxOpen
}

// OpenChapters 返回打开章节的快照
func (m *SessionManager) OpenChapters() []entity.Chapter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.chapters)
}

// SetActiveEditorInstance 将编辑器实例绑定到当前活动章节
func (m *SessionManager) SetActiveEditorInstance(h Handle) error {
	if h == nil {
		m.ClearActiveEditorInstance()
		return nil
	}
	_, err := m.BindEditor(h)
	return err
}

// BindEditor 将编辑器绑定到当前活动章节，并在同一临界区内返回该章节
func (m *SessionManager) BindEditor(h Handle) (entity.Chapter, error) {
	if h == nil {
		return entity.Chapter{}, errors.ErrNoActiveEditor
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexOf(m.activeID)
	if !m.hasActive || idx < 0 {
		return entity.Chapter{}, errors.ErrNoActiveChapter
	}
	m.editor = h
	m.editorOwner = m.activeID
	return m.chapters[idx], nil
}

// ClearActiveEditorInstance 释放编辑器绑定
func (m *SessionManager) ClearActiveEditorInstance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editor = nil
	m.editorOwner = 0
}

// ReleaseEditorInstance 仅当 h 仍是当前绑定实例时释放
// 供编辑器宿主断开时调用，避免误释放后来者的绑定
func (m *SessionManager) ReleaseEditorInstance(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.editor == nil || m.editor != h {
		return false
	}
	m.editor = nil
	m.editorOwner = 0
	return true
}

// IsBound 判断 h 是否仍是当前绑定的编辑器实例
func (m *SessionManager) IsBound(h Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return h != nil && m.editor == h
}

// HasActiveEditor 是否存在可用于活动章节的编辑器
func (m *SessionManager) HasActiveEditor() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boundToActive()
}

// InsertContent 通过当前绑定的编辑器插入内容
// 这是助手修改正文的唯一入口：只写入活动章节的编辑器，绝不写入已关闭或后台章节
func (m *SessionManager) InsertContent(ctx context.Context, markup string) error {
	m.mu.Lock()
	var ins Inserter
	ok := false
	if m.boundToActive() {
		ins, ok = CanInsert(m.editor)
	}
	chapterID := m.activeID
	m.mu.Unlock()

	if !ok {
		metrics.EditorInsertTotal.WithLabelValues("no_editor").Inc()
		return errors.ErrNoActiveEditor.WithDetail("没有检测到活动的编辑器")
	}

	if err := ins.InsertHTML(markup); err != nil {
		metrics.EditorInsertTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "editor insert failed", err, "chapter_id", chapterID)
		return errors.Wrap(err, errors.CodeNoActiveEditor, "editor rejected insertion")
	}

	metrics.EditorInsertTotal.WithLabelValues("success").Inc()
	return nil
}

// GetSelectedText 返回缓存的选中文本（时间点快照，允许过期）
func (m *SessionManager) GetSelectedText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cachedSelection
}

// UpdateCachedSelectedText 更新缓存的选中文本
func (m *SessionManager) UpdateCachedSelectedText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedSelection = text
}

// ClearCachedSelectedText 清空缓存的选中文本
func (m *SessionManager) ClearCachedSelectedText() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedSelection = ""
}

// ToggleCreativeAssistant 切换助手侧栏可见性，返回切换后的状态
func (m *SessionManager) ToggleCreativeAssistant() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assistantVisible = !m.assistantVisible
	return m.assistantVisible
}

// AssistantVisible 助手侧栏是否可见
func (m *SessionManager) AssistantVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assistantVisible
}

// Snapshot 会话状态快照
type Snapshot struct {
	OpenChapters     []entity.Chapter `json:"open_chapters"`
	ActiveChapterID  *int64           `json:"active_chapter_id"`
	MaxOpenChapters  int              `json:"max_open_chapters"`
	EditorBound      bool             `json:"editor_bound"`
	SelectedText     string           `json:"selected_text"`
	AssistantVisible bool             `json:"assistant_visible"`
}

// Snapshot 返回完整状态快照
func (m *SessionManager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		OpenChapters:     slices.Clone(m.chapters),
		MaxOpenChapters:  m.maxOpen,
		EditorBound:      m.boundToActive(),
		SelectedText:     m.cachedSelection,
		AssistantVisible: m.assistantVisible,
	}
	if s.OpenChapters == nil {
		s.OpenChapters = []entity.Chapter{}
	}
	if m.hasActive {
		id := m.activeID
		s.ActiveChapterID = &id
	}
	return s
}

func (m *SessionManager) indexOf(id int64) int {
	return slices.IndexFunc(m.chapters, func(c entity.Chapter) bool { return c.ID == id })
}

func (m *SessionManager) setActive(id int64) {
	m.activeID = id
	m.hasActive = true
}

func (m *SessionManager) boundToActive() bool {
	return m.editor != nil && m.hasActive && m.editorOwner == m.activeID
}

// releaseEditor 释放编辑器绑定；选区缓存只在没有章节时清空
func (m *SessionManager) releaseEditor() {
	m.editor = nil
	m.editorOwner = 0
}
