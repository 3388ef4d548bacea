package backend

import (
	"context"
	"fmt"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
)

// ProjectRepository 项目仓储的 REST 实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) repository.ProjectRepository {
	return &ProjectRepository{client: client}
}

func (r *ProjectRepository) List(ctx context.Context) ([]*entity.Project, error) {
	var out []*entity.Project
	if err := r.client.do(ctx, http.MethodGet, "/api/projects", "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	var out entity.Project
	path := fmt.Sprintf("/api/projects/%d", id)
	if err := r.client.do(ctx, http.MethodGet, "/api/projects/:id", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id int64, patch *entity.ProjectPatch) (*entity.Project, error) {
	var out entity.Project
	path := fmt.Sprintf("/api/projects/%d", id)
	if err := r.client.do(ctx, http.MethodPut, "/api/projects/:id", path, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/projects/%d", id)
	return r.client.do(ctx, http.MethodDelete, "/api/projects/:id", path, nil, nil)
}
