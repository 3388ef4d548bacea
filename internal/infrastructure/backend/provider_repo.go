package backend

import (
	"context"
	"fmt"
	"net/http"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
)

// ProviderRepository 服务商仓储的 REST 实现
type ProviderRepository struct {
	client *Client
}

// NewProviderRepository 创建服务商仓储
func NewProviderRepository(client *Client) repository.ProviderRepository {
	return &ProviderRepository{client: client}
}

func (r *ProviderRepository) List(ctx context.Context) ([]*entity.Provider, error) {
	var out []*entity.Provider
	if err := r.client.do(ctx, http.MethodGet, "/api/ai-providers", "/api/ai-providers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProviderRepository) Create(ctx context.Context, in *entity.ProviderInput) (*entity.Provider, error) {
	var out entity.Provider
	if err := r.client.do(ctx, http.MethodPost, "/api/ai-providers", "/api/ai-providers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProviderRepository) Update(ctx context.Context, id int64, in *entity.ProviderInput) (*entity.Provider, error) {
	var out entity.Provider
	path := fmt.Sprintf("/api/ai-providers/%d", id)
	if err := r.client.do(ctx, http.MethodPut, "/api/ai-providers/:id", path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProviderRepository) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/ai-providers/%d", id)
	return r.client.do(ctx, http.MethodDelete, "/api/ai-providers/:id", path, nil, nil)
}

type reorderRequest struct {
	ProviderIDs []int64 `json:"provider_ids"`
}

func (r *ProviderRepository) Reorder(ctx context.Context, providerIDs []int64) error {
	if providerIDs == nil {
		providerIDs = []int64{}
	}
	return r.client.do(ctx, http.MethodPut, "/api/ai-providers/reorder", "/api/ai-providers/reorder",
		&reorderRequest{ProviderIDs: providerIDs}, nil)
}

// ModelRepository 模型仓储的 REST 实现
type ModelRepository struct {
	client *Client
}

// NewModelRepository 创建模型仓储
func NewModelRepository(client *Client) repository.ModelRepository {
	return &ModelRepository{client: client}
}

func (r *ModelRepository) ListByProvider(ctx context.Context, providerID int64) ([]*entity.Model, error) {
	var out []*entity.Model
	path := fmt.Sprintf("/api/ai-providers/%d/ai-models", providerID)
	if err := r.client.do(ctx, http.MethodGet, "/api/ai-providers/:id/ai-models", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ModelRepository) Create(ctx context.Context, providerID int64, in *entity.ModelInput) (*entity.Model, error) {
	var out entity.Model
	path := fmt.Sprintf("/api/ai-providers/%d/ai-models", providerID)
	if err := r.client.do(ctx, http.MethodPost, "/api/ai-providers/:id/ai-models", path, in, &out); err != nil {
		return nil, err
	}
	if out.ProviderID == 0 {
		out.ProviderID = providerID
	}
	return &out, nil
}

func (r *ModelRepository) Update(ctx context.Context, id int64, in *entity.ModelInput) (*entity.Model, error) {
	var out entity.Model
	path := fmt.Sprintf("/api/ai-models/%d", id)
	if err := r.client.do(ctx, http.MethodPut, "/api/ai-models/:id", path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ModelRepository) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/ai-models/%d", id)
	return r.client.do(ctx, http.MethodDelete, "/api/ai-models/:id", path, nil, nil)
}
