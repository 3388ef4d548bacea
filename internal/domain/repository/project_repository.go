// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// ProjectRepository 项目远端仓储
type ProjectRepository interface {
	List(ctx context.Context) ([]*entity.Project, error)
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	// Update 提交局部更新，返回后端保存后的完整项目
	Update(ctx context.Context, id int64, patch *entity.ProjectPatch) (*entity.Project, error)
	Delete(ctx context.Context, id int64) error
}
