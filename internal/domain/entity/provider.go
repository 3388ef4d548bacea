// Package entity 定义领域实体
package entity

// Provider AI 服务商（OpenAI 兼容端点 + 凭证）
type Provider struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BaseURL      string `json:"base_url"`
	APIKey       string `json:"api_key"`
	DisplayOrder int    `json:"display_order"`
}

// ProviderInput 创建/更新服务商的请求体
type ProviderInput struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

// Model 注册在服务商下的具体模型
// 同一 Provider 下至多一个 IsDefault=true，由调用方保证
type Model struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"provider_id"`
	Name            string `json:"name"`
	ModelIdentifier string `json:"model_identifier"`
	Enabled         bool   `json:"enabled"`
	IsDefault       bool   `json:"is_default"`
}

// ModelInput 创建/更新模型的请求体
type ModelInput struct {
	Name            string `json:"name"`
	ModelIdentifier string `json:"model_identifier"`
	Enabled         bool   `json:"enabled"`
	IsDefault       bool   `json:"is_default"`
}

// DiscoveredModel 服务商模型列表接口返回的条目
type DiscoveredModel struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
	Created int64  `json:"created,omitempty"`
}
