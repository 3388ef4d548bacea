// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"z-novel-workspace/internal/domain/entity"
)

// ProviderRequest 创建/更新服务商请求
type ProviderRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key"`
}

// ToInput 转换为服务商输入
func (r *ProviderRequest) ToInput() entity.ProviderInput {
	return entity.ProviderInput{
		Name:    r.Name,
		BaseURL: r.BaseURL,
		APIKey:  r.APIKey,
	}
}

// CheckKeyRequest 校验未保存服务商的凭证
type CheckKeyRequest struct {
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key"`
}

// ReorderProvidersRequest 服务商排序请求
type ReorderProvidersRequest struct {
	ProviderIDs []int64 `json:"provider_ids" binding:"required"`
}

// ModelRequest 创建/更新模型请求
type ModelRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	ModelIdentifier string `json:"model_identifier" binding:"required,max=200"`
	Enabled         bool   `json:"enabled"`
	IsDefault       bool   `json:"is_default"`
}

// ToInput 转换为模型输入
func (r *ModelRequest) ToInput() entity.ModelInput {
	return entity.ModelInput{
		Name:            r.Name,
		ModelIdentifier: r.ModelIdentifier,
		Enabled:         r.Enabled,
		IsDefault:       r.IsDefault,
	}
}

// ProviderListResponse 服务商列表响应
type ProviderListResponse struct {
	Providers []entity.Provider `json:"providers"`
}

// ModelListResponse 模型列表响应
type ModelListResponse struct {
	Models       []entity.Model `json:"models"`
	DefaultModel *entity.Model  `json:"default_model,omitempty"`
}
