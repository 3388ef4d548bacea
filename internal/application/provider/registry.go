// Package provider 维护 AI 服务商与模型的本地缓存，并负责凭证检测与模型自动发现
package provider

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

const refreshKey = "providers"

// Registry 服务商注册表
// 远端为唯一事实来源，本地缓存只在远端调用成功后更新
type Registry struct {
	providers repository.ProviderRepository
	models    repository.ModelRepository
	catalog   service.ModelCatalog

	group singleflight.Group

	mu             sync.RWMutex
	cache          []*entity.Provider
	modelsByParent map[int64][]*entity.Model
}

// NewRegistry 创建服务商注册表
func NewRegistry(providers repository.ProviderRepository, models repository.ModelRepository, catalog service.ModelCatalog) *Registry {
	return &Registry{
		providers:      providers,
		models:         models,
		catalog:        catalog,
		modelsByParent: make(map[int64][]*entity.Model),
	}
}

// ListProviders 从后端刷新服务商列表，并发调用合并为一次请求
func (r *Registry) ListProviders(ctx context.Context) ([]entity.Provider, error) {
	v, err, shared := r.group.Do(refreshKey, func() (any, error) {
		list, err := r.providers.List(ctx)
		if err != nil {
			return nil, err
		}
		sortByDisplayOrder(list)
		// 快照在写入缓存前生成，此后缓存中的指针只在 r.mu 下访问
		snapshot := copyProviders(list)

		r.mu.Lock()
		r.cache = list
		r.mu.Unlock()
		return snapshot, nil
	})
	if err != nil {
		logger.Error(ctx, "failed to list providers", err)
		return nil, err
	}
	if shared {
		logger.Debug(ctx, "provider refresh shared with concurrent caller")
	}
	return slices.Clone(v.([]entity.Provider)), nil
}

// Providers 返回缓存的服务商列表
func (r *Registry) Providers() []entity.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyProviders(r.cache)
}

// Provider 按 ID 查找缓存的服务商
func (r *Registry) Provider(id int64) (entity.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(id); i >= 0 {
		return *r.cache[i], true
	}
	return entity.Provider{}, false
}

// Lookup 查找服务商，缓存未命中时刷新一次
func (r *Registry) Lookup(ctx context.Context, id int64) (entity.Provider, error) {
	if p, ok := r.Provider(id); ok {
		return p, nil
	}
	if _, err := r.ListProviders(ctx); err != nil {
		return entity.Provider{}, err
	}
	if p, ok := r.Provider(id); ok {
		return p, nil
	}
	return entity.Provider{}, errors.ErrProviderNotFound
}

// CreateProvider 创建服务商
func (r *Registry) CreateProvider(ctx context.Context, in entity.ProviderInput) (*entity.Provider, error) {
	p, err := r.providers.Create(ctx, &in)
	if err != nil {
		logger.Error(ctx, "failed to create provider", err)
		return nil, err
	}

	r.mu.Lock()
	r.cache = append(r.cache, p)
	r.mu.Unlock()

	logger.Info(ctx, "provider created", "provider_id", p.ID, "name", p.Name)
	cp := *p
	return &cp, nil
}

// UpdateProvider 更新服务商
func (r *Registry) UpdateProvider(ctx context.Context, id int64, in entity.ProviderInput) (*entity.Provider, error) {
	p, err := r.providers.Update(ctx, id, &in)
	if err != nil {
		logger.Error(ctx, "failed to update provider", err, "provider_id", id)
		return nil, err
	}

	r.mu.Lock()
	if i := r.indexLocked(id); i >= 0 {
		r.cache[i] = p
	} else {
		r.cache = append(r.cache, p)
	}
	r.mu.Unlock()

	cp := *p
	return &cp, nil
}

// DeleteProvider 删除服务商及其模型缓存
func (r *Registry) DeleteProvider(ctx context.Context, id int64) error {
	if err := r.providers.Delete(ctx, id); err != nil {
		logger.Error(ctx, "failed to delete provider", err, "provider_id", id)
		return err
	}

	r.mu.Lock()
	r.cache = slices.DeleteFunc(r.cache, func(p *entity.Provider) bool { return p.ID == id })
	delete(r.modelsByParent, id)
	r.mu.Unlock()
	return nil
}

// Reorder 持久化服务商顺序；重复提交相同顺序结果不变
func (r *Registry) Reorder(ctx context.Context, providerIDs []int64) error {
	if err := r.providers.Reorder(ctx, providerIDs); err != nil {
		logger.Error(ctx, "failed to reorder providers", err)
		return err
	}

	rank := make(map[int64]int, len(providerIDs))
	for i, id := range providerIDs {
		if _, dup := rank[id]; !dup {
			rank[id] = i
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]*entity.Provider, 0, len(r.cache))
	for _, p := range r.cache {
		cp := *p
		if i, ok := rank[p.ID]; ok {
			cp.DisplayOrder = i
		}
		next = append(next, &cp)
	}
	sortByDisplayOrder(next)
	r.cache = next
	return nil
}

// ListModels 获取服务商下的模型
func (r *Registry) ListModels(ctx context.Context, providerID int64) ([]entity.Model, error) {
	list, err := r.models.ListByProvider(ctx, providerID)
	if err != nil {
		logger.Error(ctx, "failed to list models", err, "provider_id", providerID)
		return nil, err
	}

	snapshot := copyModels(list)
	r.mu.Lock()
	r.modelsByParent[providerID] = list
	r.mu.Unlock()
	return snapshot, nil
}

// CreateModel 在服务商下创建模型
func (r *Registry) CreateModel(ctx context.Context, providerID int64, in entity.ModelInput) (*entity.Model, error) {
	m, err := r.models.Create(ctx, providerID, &in)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.modelsByParent[providerID] = append(r.modelsByParent[providerID], m)
	r.mu.Unlock()

	cp := *m
	return &cp, nil
}

// UpdateModel 更新模型
func (r *Registry) UpdateModel(ctx context.Context, id int64, in entity.ModelInput) (*entity.Model, error) {
	m, err := r.models.Update(ctx, id, &in)
	if err != nil {
		logger.Error(ctx, "failed to update model", err, "model_id", id)
		return nil, err
	}

	r.mu.Lock()
	list := r.modelsByParent[m.ProviderID]
	if i := slices.IndexFunc(list, func(x *entity.Model) bool { return x.ID == id }); i >= 0 {
		list[i] = m
	} else {
		r.modelsByParent[m.ProviderID] = append(list, m)
	}
	r.mu.Unlock()

	cp := *m
	return &cp, nil
}

// DeleteModel 删除模型
func (r *Registry) DeleteModel(ctx context.Context, id int64) error {
	if err := r.models.Delete(ctx, id); err != nil {
		logger.Error(ctx, "failed to delete model", err, "model_id", id)
		return err
	}

	r.mu.Lock()
	for pid, list := range r.modelsByParent {
		r.modelsByParent[pid] = slices.DeleteFunc(list, func(m *entity.Model) bool { return m.ID == id })
	}
	r.mu.Unlock()
	return nil
}

// DefaultModel 返回服务商缓存模型中第一个默认模型
func (r *Registry) DefaultModel(providerID int64) (entity.Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.modelsByParent[providerID] {
		if m.IsDefault {
			return *m, true
		}
	}
	return entity.Model{}, false
}

func (r *Registry) indexLocked(id int64) int {
	return slices.IndexFunc(r.cache, func(p *entity.Provider) bool { return p.ID == id })
}

func sortByDisplayOrder(list []*entity.Provider) {
	slices.SortStableFunc(list, func(a, b *entity.Provider) int {
		return a.DisplayOrder - b.DisplayOrder
	})
}

func copyProviders(list []*entity.Provider) []entity.Provider {
	out := make([]entity.Provider, 0, len(list))
	for _, p := range list {
		out = append(out, *p)
	}
	return out
}

func copyModels(list []*entity.Model) []entity.Model {
	out := make([]entity.Model, 0, len(list))
	for _, m := range list {
		out = append(out, *m)
	}
	return out
}
