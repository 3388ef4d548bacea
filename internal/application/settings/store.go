// Package settings 提供进程级系统设置的读写
package settings

import (
	"context"
	"sync"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

// Store 系统设置存储
// 启动时读取一次持久化记录，之后每次修改都整条写穿到本地存储
type Store struct {
	mu   sync.RWMutex
	repo repository.StateRepository
	cur  entity.Settings
}

// NewStore 从持久化存储初始化设置，记录不存在时使用默认值
func NewStore(ctx context.Context, repo repository.StateRepository) (*Store, error) {
	cur := entity.DefaultSettings()
	found, err := repo.Load(ctx, repository.StateKeySettings, &cur)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStateStoreError, "failed to load settings")
	}
	if !found {
		logger.Info(ctx, "no persisted settings found, using defaults")
	}

	return &Store{repo: repo, cur: cur}, nil
}

// Get 返回当前设置副本
func (s *Store) Get() entity.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// ProxyURL 当前代理地址
func (s *Store) ProxyURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.ProxyURL
}

// ChatDefaults 对话面板默认生成参数
func (s *Store) ChatDefaults() entity.GenerationDefaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.ChatDefaults
}

// AssistantDefaults 创作助手默认生成参数
func (s *Store) AssistantDefaults() entity.GenerationDefaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.AssistantDefaults
}

// Update 浅合并补丁并立即持久化整条记录
// 不校验字段取值；持久化失败时内存中的设置保持不变
func (s *Store) Update(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.Merge(patch)
	if err := s.repo.Save(ctx, repository.StateKeySettings, next); err != nil {
		logger.Error(ctx, "failed to persist settings", err)
		return s.cur, errors.Wrap(err, errors.CodeStateStoreError, "failed to persist settings")
	}
	s.cur = next
	return next, nil
}
