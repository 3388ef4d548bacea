// Package workspace 组合各状态存储，作为进程内唯一的工作区上下文
// 所有存储由调用方显式构造后注入，不存在包级单例
package workspace

import (
	"context"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/editor"
	"z-novel-workspace/internal/application/project"
	"z-novel-workspace/internal/application/prompt"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// Workspace 工作区上下文
type Workspace struct {
	Settings      *settings.Store
	Project       *project.Store
	Providers     *provider.Registry
	Prompts       *prompt.Store
	Conversations *conversation.Store
	Editor        *editor.SessionManager

	chapters repository.ChapterRepository
	state    repository.StateRepository
}

// New 创建工作区上下文
func New(
	settingsStore *settings.Store,
	projectStore *project.Store,
	providers *provider.Registry,
	prompts *prompt.Store,
	conversations *conversation.Store,
	sessions *editor.SessionManager,
	chapters repository.ChapterRepository,
	state repository.StateRepository,
) *Workspace {
	return &Workspace{
		Settings:      settingsStore,
		Project:       projectStore,
		Providers:     providers,
		Prompts:       prompts,
		Conversations: conversations,
		Editor:        sessions,
		chapters:      chapters,
		state:         state,
	}
}

// TurnOptions 构造一轮对话参数，项目 ID 取自当前项目
// 未指定模板且设置中也没有该来源的默认模板时，使用当前项目的默认模板
func (w *Workspace) TurnOptions(scope conversation.Scope, promptTemplateID, aiModelID *int64) conversation.TurnOptions {
	if scope == "" {
		scope = conversation.ScopeChat
	}
	projectID := w.Project.CurrentID()
	if promptTemplateID == nil && w.scopeDefaults(scope).PromptTemplateID == nil &&
		projectID != nil && w.Prompts.Loaded(*projectID) {
		promptTemplateID = w.Prompts.Resolve(nil)
	}
	return conversation.TurnOptions{
		PromptTemplateID: promptTemplateID,
		AIModelID:        aiModelID,
		ProjectID:        projectID,
		Scope:            scope,
	}
}

// PromptTemplates 返回当前项目的模板；未加载、项目已变化或 refresh 时从后端读取
func (w *Workspace) PromptTemplates(ctx context.Context, refresh bool) ([]entity.PromptTemplate, error) {
	id := w.Project.CurrentID()
	if id == nil {
		return nil, errors.ErrNoCurrentProject
	}
	if !refresh && w.Prompts.Loaded(*id) {
		return w.Prompts.Templates(), nil
	}
	return w.Prompts.Load(ctx, *id)
}

// LoadedPrompts 返回已加载当前项目模板的缓存，供增删改使用
func (w *Workspace) LoadedPrompts(ctx context.Context) (*prompt.Store, error) {
	if _, err := w.PromptTemplates(ctx, false); err != nil {
		return nil, err
	}
	return w.Prompts, nil
}

func (w *Workspace) scopeDefaults(scope conversation.Scope) entity.GenerationDefaults {
	if scope == conversation.ScopeAssistant {
		return w.Settings.AssistantDefaults()
	}
	return w.Settings.ChatDefaults()
}

// SelectProject 切换当前项目；项目变化时关闭上一项目的全部章节
func (w *Workspace) SelectProject(ctx context.Context, id int64) (entity.Project, error) {
	prev := w.Project.CurrentID()

	p, err := w.Project.Select(ctx, id)
	if err != nil {
		return entity.Project{}, err
	}
	if prev == nil || *prev != p.ID {
		w.Editor.CloseAllChapters(ctx)
		w.Prompts.Reset()
		logger.Info(ctx, "project switched", "project_id", p.ID)
	}
	return p, nil
}

// ClearProject 清除当前项目并关闭全部章节
func (w *Workspace) ClearProject(ctx context.Context) error {
	if err := w.Project.Clear(ctx); err != nil {
		return err
	}
	w.Editor.CloseAllChapters(ctx)
	w.Prompts.Reset()
	return nil
}

// DeleteProject 删除项目；删除的是当前项目时一并关闭其章节
func (w *Workspace) DeleteProject(ctx context.Context, id int64) error {
	cur := w.Project.CurrentID()
	if err := w.Project.Delete(ctx, id); err != nil {
		return err
	}
	if cur != nil && *cur == id {
		w.Editor.CloseAllChapters(ctx)
		w.Prompts.Reset()
	}
	return nil
}

// OpenChapter 打开章节：已打开时仅激活，否则先从后端获取
func (w *Workspace) OpenChapter(ctx context.Context, id int64) (entity.Chapter, error) {
	ctx = logger.WithContext(ctx, logger.ChapterIDKey, id)

	if w.Editor.IsChapterOpen(id) {
		if err := w.Editor.SetActiveChapter(id); err != nil {
			return entity.Chapter{}, err
		}
		ch, _ := w.Editor.ActiveChapter()
		return ch, nil
	}

	// 容量不足时不发起请求
	if err := w.Editor.CheckCapacity(id); err != nil {
		return entity.Chapter{}, err
	}

	ch, err := w.chapters.GetByID(ctx, id)
	if err != nil {
		logger.Error(ctx, "failed to fetch chapter", err)
		return entity.Chapter{}, err
	}
	if err := w.Editor.OpenChapter(ctx, *ch); err != nil {
		return entity.Chapter{}, err
	}
	return *ch, nil
}

// SaveChapter 保存已打开章节：合并补丁、写入后端，再以后端结果刷新投影
func (w *Workspace) SaveChapter(ctx context.Context, id int64, patch entity.ChapterPatch) (entity.Chapter, error) {
	ctx = logger.WithContext(ctx, logger.ChapterIDKey, id)

	cur, ok := w.openChapter(id)
	if !ok {
		return entity.Chapter{}, errors.ErrChapterNotOpen
	}

	merged := patch.Apply(cur)
	saved, err := w.chapters.Update(ctx, &merged)
	if err != nil {
		logger.Error(ctx, "failed to save chapter", err)
		return entity.Chapter{}, err
	}

	title, content, words := saved.Title, saved.Content, saved.WordCount
	return w.Editor.UpdateChapter(id, entity.ChapterPatch{
		Title:     &title,
		Content:   &content,
		WordCount: &words,
	})
}

// Ready 检查本地状态存储是否可用
func (w *Workspace) Ready(ctx context.Context) error {
	if w.state == nil {
		return errors.New(errors.CodeStateStoreError, "state store not configured")
	}
	if err := w.state.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.CodeStateStoreError, "state store unavailable")
	}
	return nil
}

// Close 关闭全部章节并释放编辑器绑定
func (w *Workspace) Close(ctx context.Context) {
	w.Editor.CloseAllChapters(ctx)
	w.Editor.ClearCachedSelectedText()
}

func (w *Workspace) openChapter(id int64) (entity.Chapter, bool) {
	for _, ch := range w.Editor.OpenChapters() {
		if ch.ID == id {
			return ch, true
		}
	}
	return entity.Chapter{}, false
}
