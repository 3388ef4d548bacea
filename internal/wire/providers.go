// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"fmt"
	"strings"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/editor"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/config"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/internal/infrastructure/backend"
	"z-novel-workspace/internal/infrastructure/llm"
	"z-novel-workspace/internal/infrastructure/persistence/bolt"
	"z-novel-workspace/internal/infrastructure/persistence/redis"
	"z-novel-workspace/internal/interfaces/http/handler"
	"z-novel-workspace/internal/interfaces/http/router"
	"z-novel-workspace/pkg/logger"
)

// 本地状态后端
const (
	StateBackendBolt  = "bolt"
	StateBackendRedis = "redis"
)

// App 网关进程持有的顶层对象
type App struct {
	Router    *router.Router
	Workspace *workspace.Workspace
}

// ProviderTools 命令行管理服务商所需的依赖
type ProviderTools struct {
	Registry *provider.Registry
	Settings *settings.Store
}

// ProvideStateStore 按配置打开本地状态存储
func ProvideStateStore(ctx context.Context, cfg *config.Config) (repository.StateRepository, func(), error) {
	switch strings.ToLower(cfg.Workspace.StateBackend) {
	case "", StateBackendBolt:
		store, err := bolt.NewStore(cfg.Workspace.StatePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "state store opened", "backend", StateBackendBolt, "path", cfg.Workspace.StatePath)
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Error(ctx, "failed to close state store", err)
			}
		}
		return store, cleanup, nil

	case StateBackendRedis:
		client, err := redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "state store opened", "backend", StateBackendRedis, "prefix", cfg.Workspace.StateKeyPrefix)
		cleanup := func() {
			client.Close()
		}
		return redis.NewStateStore(client, cfg.Workspace.StateKeyPrefix), cleanup, nil

	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", cfg.Workspace.StateBackend)
	}
}

// ProvideBackendClient 提供持久化后端客户端
func ProvideBackendClient(cfg *config.Config) *backend.Client {
	return backend.NewClient(&cfg.Backend)
}

// ProvideCatalog 提供第三方服务商客户端，代理地址取自当前设置
func ProvideCatalog(cfg *config.Config, store *settings.Store) service.ModelCatalog {
	return llm.NewCatalog(&cfg.Providers, store)
}

// ProvideConversationStore 提供对话存储，默认生成参数取自当前设置
func ProvideConversationStore(repo repository.ConversationRepository, chat service.ChatBackend, store *settings.Store) *conversation.Store {
	return conversation.NewStore(repo, chat, store)
}

// ProvideSessionManager 提供编辑会话管理器
func ProvideSessionManager(cfg *config.Config) *editor.SessionManager {
	return editor.NewSessionManager(cfg.Workspace.MaxOpenChapters)
}

// ProvideHealthHandler 提供健康检查处理器，后端探测为可选项
func ProvideHealthHandler(cfg *config.Config, state repository.StateRepository, client *backend.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(state, client, cfg.App.Version)
}
