// Package prompt 缓存当前项目的提示词模板
package prompt

import (
	"context"
	"sync"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// Store 提示词模板缓存
// 远端成功后才更新缓存；缓存切片只整体替换，不原地修改
type Store struct {
	repo repository.PromptTemplateRepository

	mu        sync.RWMutex
	projectID int64
	loaded    bool
	templates []entity.PromptTemplate
}

// NewStore 创建提示词模板缓存
func NewStore(repo repository.PromptTemplateRepository) *Store {
	return &Store{repo: repo}
}

// Load 从后端读取项目的模板列表并替换缓存
func (s *Store) Load(ctx context.Context, projectID int64) ([]entity.PromptTemplate, error) {
	if projectID <= 0 {
		return nil, errors.ErrInvalidParam.WithDetail("project id must be positive")
	}
	list, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to load prompt templates", err, "project_id", projectID)
		return nil, err
	}
	next := make([]entity.PromptTemplate, 0, len(list))
	for _, t := range list {
		if t != nil {
			next = append(next, cloneTemplate(*t))
		}
	}

	s.mu.Lock()
	s.projectID = projectID
	s.loaded = true
	s.templates = next
	s.mu.Unlock()

	logger.Debug(ctx, "prompt templates loaded", "project_id", projectID, "count", len(next))
	return cloneAll(next), nil
}

// Loaded 报告缓存是否已属于给定项目
func (s *Store) Loaded(projectID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded && s.projectID == projectID
}

// ProjectID 返回缓存所属项目，未加载时为 0
func (s *Store) ProjectID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectID
}

// Templates 返回缓存的模板
func (s *Store) Templates() []entity.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.templates)
}

// Template 按 ID 查找模板
func (s *Store) Template(id int64) (entity.PromptTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.ID == id {
			return cloneTemplate(t), true
		}
	}
	return entity.PromptTemplate{}, false
}

// Default 返回第一个标记为默认的模板
func (s *Store) Default() (entity.PromptTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.IsDefault {
			return cloneTemplate(t), true
		}
	}
	return entity.PromptTemplate{}, false
}

// ByCategory 按分类分组，未分类的模板归入空字符串键
func (s *Store) ByCategory() map[string][]entity.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]entity.PromptTemplate)
	for _, t := range s.templates {
		out[t.Category] = append(out[t.Category], cloneTemplate(t))
	}
	return out
}

// Resolve 显式 ID 优先，否则回退到默认模板；都没有时返回 nil
func (s *Store) Resolve(explicit *int64) *int64 {
	if explicit != nil {
		id := *explicit
		return &id
	}
	if t, ok := s.Default(); ok {
		id := t.ID
		return &id
	}
	return nil
}

// Create 在当前项目下新建模板
func (s *Store) Create(ctx context.Context, in *entity.PromptTemplateInput) (entity.PromptTemplate, error) {
	projectID, err := s.requireLoaded()
	if err != nil {
		return entity.PromptTemplate{}, err
	}
	created, err := s.repo.Create(ctx, projectID, in)
	if err != nil {
		logger.Error(ctx, "failed to create prompt template", err, "project_id", projectID)
		return entity.PromptTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		// 项目已切换，结果不属于当前缓存
		return cloneTemplate(*created), nil
	}
	next := make([]entity.PromptTemplate, 0, len(s.templates)+1)
	next = append(next, s.templates...)
	next = append(next, cloneTemplate(*created))
	s.templates = next
	return cloneTemplate(*created), nil
}

// Update 整体更新模板并合并进缓存
func (s *Store) Update(ctx context.Context, id int64, in *entity.PromptTemplateInput) (entity.PromptTemplate, error) {
	projectID, err := s.requireLoaded()
	if err != nil {
		return entity.PromptTemplate{}, err
	}
	if _, ok := s.Template(id); !ok {
		return entity.PromptTemplate{}, errors.ErrTemplateNotFound
	}
	updated, err := s.repo.Update(ctx, id, in)
	if err != nil {
		logger.Error(ctx, "failed to update prompt template", err, "template_id", id)
		return entity.PromptTemplate{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return cloneTemplate(*updated), nil
	}
	next := make([]entity.PromptTemplate, len(s.templates))
	for i, t := range s.templates {
		if t.ID == id {
			t = cloneTemplate(*updated)
		}
		next[i] = t
	}
	s.templates = next
	return cloneTemplate(*updated), nil
}

// Delete 删除模板并从缓存移除
func (s *Store) Delete(ctx context.Context, id int64) error {
	projectID, err := s.requireLoaded()
	if err != nil {
		return err
	}
	if _, ok := s.Template(id); !ok {
		return errors.ErrTemplateNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.Error(ctx, "failed to delete prompt template", err, "template_id", id)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projectID != projectID {
		return nil
	}
	next := make([]entity.PromptTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.templates = next
	return nil
}

// Reset 清空缓存，切换或关闭项目时调用
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projectID = 0
	s.loaded = false
	s.templates = nil
}

func (s *Store) requireLoaded() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return 0, errors.ErrNoCurrentProject
	}
	return s.projectID, nil
}

func cloneTemplate(t entity.PromptTemplate) entity.PromptTemplate {
	if t.Variables != nil {
		vars := make(map[string]any, len(t.Variables))
		for k, v := range t.Variables {
			vars[k] = v
		}
		t.Variables = vars
	}
	if t.UpdatedAt != nil {
		u := *t.UpdatedAt
		t.UpdatedAt = &u
	}
	return t
}

func cloneAll(list []entity.PromptTemplate) []entity.PromptTemplate {
	out := make([]entity.PromptTemplate, len(list))
	for i, t := range list {
		out[i] = cloneTemplate(t)
	}
	return out
}
