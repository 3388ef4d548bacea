package backend

import (
	"context"
	"fmt"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
)

// PromptTemplateRepository 提示词模板仓储的 REST 实现
type PromptTemplateRepository struct {
	client *Client
}

// NewPromptTemplateRepository 创建提示词模板仓储
func NewPromptTemplateRepository(client *Client) repository.PromptTemplateRepository {
	return &PromptTemplateRepository{client: client}
}

func (r *PromptTemplateRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.PromptTemplate, error) {
	var out []*entity.PromptTemplate
	path := fmt.Sprintf("/api/projects/%d/prompt-templates", projectID)
	if err := r.client.do(ctx, http.MethodGet, "/api/projects/:id/prompt-templates", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PromptTemplateRepository) Create(ctx context.Context, projectID int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	var out entity.PromptTemplate
	path := fmt.Sprintf("/api/projects/%d/prompt-templates", projectID)
	if err := r.client.do(ctx, http.MethodPost, "/api/projects/:id/prompt-templates", path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PromptTemplateRepository) Update(ctx context.Context, id int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	var out entity.PromptTemplate
	path := fmt.Sprintf("/api/prompt-templates/%d", id)
	if err := r.client.do(ctx, http.MethodPut, "/api/prompt-templates/:id", path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PromptTemplateRepository) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/prompt-templates/%d", id)
	return r.client.do(ctx, http.MethodDelete, "/api/prompt-templates/:id", path, nil, nil)
}
