// Package entity 定义领域实体
package entity

// GenerationDefaults 对话/助手面板的默认生成参数
type GenerationDefaults struct {
	AIModelID        *int64  `json:"aiModelId"`
	PromptTemplateID *int64  `json:"promptTemplateId"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	MemoryRounds     int     `json:"memoryRounds"`
}

// Settings 进程级系统设置（单条记录）
type Settings struct {
	ProxyURL          string             `json:"proxyUrl"`
	ChatDefaults      GenerationDefaults `json:"chatDefaults"`
	AssistantDefaults GenerationDefaults `json:"assistantDefaults"`
}

// SettingsPatch 设置的浅合并补丁，非 nil 字段整体替换
type SettingsPatch struct {
	ProxyURL          *string             `json:"proxyUrl,omitempty"`
	ChatDefaults      *GenerationDefaults `json:"chatDefaults,omitempty"`
	AssistantDefaults *GenerationDefaults `json:"assistantDefaults,omitempty"`
}

// DefaultGenerationDefaults 默认生成参数
func DefaultGenerationDefaults() GenerationDefaults {
	return GenerationDefaults{
		Temperature:  0.7,
		MaxTokens:    2000,
		MemoryRounds: 10,
	}
}

// DefaultSettings 未找到持久化记录时使用的默认设置
func DefaultSettings() Settings {
	return Settings{
		ProxyURL:          "",
		ChatDefaults:      DefaultGenerationDefaults(),
		AssistantDefaults: DefaultGenerationDefaults(),
	}
}

// Merge 浅合并补丁，返回新的设置记录
func (s Settings) Merge(p SettingsPatch) Settings {
	if p.ProxyURL != nil {
		s.ProxyURL = *p.ProxyURL
	}
	if p.ChatDefaults != nil {
		s.ChatDefaults = *p.ChatDefaults
	}
	if p.AssistantDefaults != nil {
		s.AssistantDefaults = *p.AssistantDefaults
	}
	return s
}
