//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"z-novel-workspace/internal/application/project"
	"z-novel-workspace/internal/application/prompt"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/config"
	"z-novel-workspace/internal/infrastructure/backend"
	"z-novel-workspace/internal/interfaces/http/handler"
	"z-novel-workspace/internal/interfaces/http/router"
)

// InitializeApp 初始化整个网关（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		StateSet,
		BackendSet,
		WorkspaceSet,
		RouterSet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}

// InitializeProviderTools 初始化命令行使用的服务商管理依赖
func InitializeProviderTools(ctx context.Context, cfg *config.Config) (*ProviderTools, func(), error) {
	wire.Build(
		StateSet,
		BackendSet,
		settings.NewStore,
		ProvideCatalog,
		provider.NewRegistry,
		wire.Struct(new(ProviderTools), "*"),
	)
	return nil, nil, nil
}

// StateSet 本地状态存储提供者集合
var StateSet = wire.NewSet(
	ProvideStateStore,
)

// BackendSet 持久化后端提供者集合
var BackendSet = wire.NewSet(
	ProvideBackendClient,
	backend.NewChatBackend,
	backend.NewProjectRepository,
	backend.NewChapterRepository,
	backend.NewConversationRepository,
	backend.NewProviderRepository,
	backend.NewModelRepository,
	backend.NewPromptTemplateRepository,
)

// WorkspaceSet 工作区状态提供者集合
var WorkspaceSet = wire.NewSet(
	settings.NewStore,
	project.NewStore,
	ProvideCatalog,
	provider.NewRegistry,
	prompt.NewStore,
	ProvideConversationStore,
	ProvideSessionManager,
	workspace.New,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewSettingsHandler,
	handler.NewProviderHandler,
	handler.NewProjectHandler,
	handler.NewPromptHandler,
	handler.NewConversationHandler,
	handler.NewStreamHandler,
	handler.NewChapterHandler,
	handler.NewEditorHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.New,
)
