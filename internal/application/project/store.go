// Package project 维护当前打开的小说项目
package project

import (
	"context"
	"sync"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// Store 当前项目存储
// 当前项目记录在启动时恢复，每次变化都写穿到本地存储
type Store struct {
	mu       sync.RWMutex
	state    repository.StateRepository
	projects repository.ProjectRepository
	current  *entity.Project
}

// NewStore 创建项目存储并恢复上次的当前项目
func NewStore(ctx context.Context, state repository.StateRepository, projects repository.ProjectRepository) (*Store, error) {
	s := &Store{state: state, projects: projects}

	var p entity.Project
	found, err := state.Load(ctx, repository.StateKeyCurrentProject, &p)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStateStoreError, "failed to restore current project")
	}
	if found {
		s.current = &p
		logger.Info(ctx, "current project restored", "project_id", p.ID)
	}
	return s, nil
}

// Current 返回当前项目副本
func (s *Store) Current() (entity.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return entity.Project{}, false
	}
	return *s.current, true
}

// CurrentID 返回当前项目 ID，无项目时为 nil
func (s *Store) CurrentID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := s.current.ID
	return &id
}

// HasProject 是否已选择项目
func (s *Store) HasProject() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// SetCurrent 设置当前项目
func (s *Store) SetCurrent(ctx context.Context, p entity.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, &p)
}

// Clear 清除当前项目
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, nil)
}

// List 获取项目列表
func (s *Store) List(ctx context.Context) ([]*entity.Project, error) {
	return s.projects.List(ctx)
}

// Select 按 ID 从后端获取项目并设为当前项目
func (s *Store) Select(ctx context.Context, id int64) (entity.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return entity.Project{}, err
	}
	if err := s.SetCurrent(ctx, *p); err != nil {
		return entity.Project{}, err
	}
	return *p, nil
}

// Update 更新项目；若为当前项目则同步本地记录
func (s *Store) Update(ctx context.Context, id int64, patch entity.ProjectPatch) (*entity.Project, error) {
	updated, err := s.projects.Update(ctx, id, &patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		p := *updated
		if err := s.commit(ctx, &p); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete 删除项目；若为当前项目则清除本地记录
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		return s.commit(ctx, nil)
	}
	return nil
}

// commit 先持久化再替换内存记录，调用方需持有写锁
func (s *Store) commit(ctx context.Context, p *entity.Project) error {
	var err error
	if p == nil {
		err = s.state.Delete(ctx, repository.StateKeyCurrentProject)
	} else {
		err = s.state.Save(ctx, repository.StateKeyCurrentProject, p)
	}
	if err != nil {
		logger.Error(ctx, "failed to persist current project", err)
		return errors.Wrap(err, errors.CodeStateStoreError, "failed to persist current project")
	}
	s.current = p
	return nil
}
