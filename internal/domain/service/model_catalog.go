// Package service 定义领域服务端口
package service

import (
	"context"

	"z-novel-workspace/internal/domain/entity"
)

// ModelCatalog 第三方 OpenAI 兼容服务商访问能力
type ModelCatalog interface {
	// ListModels 调用模型列表端点
	ListModels(ctx context.Context, modelsEndpoint, apiKey string) ([]entity.DiscoveredModel, error)
	// Probe 以凭证访问任意端点，仅判断是否可达且被授权
	Probe(ctx context.Context, endpoint, apiKey string) error
}
