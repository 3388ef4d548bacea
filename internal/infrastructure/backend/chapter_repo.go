package backend

import (
	"context"
	"fmt"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
)

// ChapterRepository 章节仓储的 REST 实现
type ChapterRepository struct {
	client *Client
}

// NewChapterRepository 创建章节仓储
func NewChapterRepository(client *Client) repository.ChapterRepository {
	return &ChapterRepository{client: client}
}

func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*entity.Chapter, error) {
	var out entity.Chapter
	path := fmt.Sprintf("/api/chapters/%d", id)
	if err := r.client.do(ctx, http.MethodGet, "/api/chapters/:id", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ChapterRepository) Update(ctx context.Context, chapter *entity.Chapter) (*entity.Chapter, error) {
	var out entity.Chapter
	path := fmt.Sprintf("/api/chapters/%d", chapter.ID)
	if err := r.client.do(ctx, http.MethodPut, "/api/chapters/:id", path, chapter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
