// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// PromptTemplateRepository 提示词模板远端仓储
type PromptTemplateRepository interface {
	ListByProject(ctx context.Context, projectID int64) ([]*entity.PromptTemplate, error)
	Create(ctx context.Context, projectID int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error)
	Update(ctx context.Context, id int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error)
	Delete(ctx context.Context, id int64) error
}
