// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// ChapterRepository 章节远端仓储
type ChapterRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Chapter, error)
	Update(ctx context.Context, chapter *entity.Chapter) (*entity.Chapter, error)
}
