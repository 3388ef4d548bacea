// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// ProviderRepository AI 服务商远端仓储
type ProviderRepository interface {
	List(ctx context.Context) ([]*entity.Provider, error)
	Create(ctx context.Context, in *entity.ProviderInput) (*entity.Provider, error)
	Update(ctx context.Context, id int64, in *entity.ProviderInput) (*entity.Provider, error)
	Delete(ctx context.Context, id int64) error
	// Reorder 按给定顺序持久化服务商排序
	Reorder(ctx context.Context, providerIDs []int64) error
}

// ModelRepository 模型远端仓储
type ModelRepository interface {
	ListByProvider(ctx context.Context, providerID int64) ([]*entity.Model, error)
	Create(ctx context.Context, providerID int64, in *entity.ModelInput) (*entity.Model, error)
	Update(ctx context.Context, id int64, in *entity.ModelInput) (*entity.Model, error)
	Delete(ctx context.Context, id int64) error
}
