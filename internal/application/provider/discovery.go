package provider

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"z-novel-workspace/internal/application/endpoint"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
	"z-novel-workspace/pkg/metrics"
)

const (
	msgManualEntry = "该提供商不支持自动获取模型列表，请手动添加"
	msgNoModels    = "未找到可用模型"

	// discoveryConcurrency 自动发现时并发创建模型的上限
	discoveryConcurrency = 4
)

// KeyCheckResult 凭证检测结果，检测本身从不返回错误
type KeyCheckResult struct {
	Valid  bool                     `json:"valid"`
	Models []entity.DiscoveredModel `json:"models,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// ModelFailure 自动发现中单个模型创建失败
type ModelFailure struct {
	ModelID string `json:"model_id"`
	Error   string `json:"error"`
}

// DiscoveryResult 模型自动发现的汇总结果
type DiscoveryResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Attempted int            `json:"attempted"`
	Succeeded []string       `json:"succeeded"`
	Failed    []ModelFailure `json:"failed"`
}

// CheckAPIKey 用服务商凭证访问模型列表端点；需要手动添加模型的服务商改为探测对话端点
func (r *Registry) CheckAPIKey(ctx context.Context, p entity.Provider) KeyCheckResult {
	ep := endpoint.Resolve(p.BaseURL)

	if !ep.ManualModelEntryRequired && ep.Models != "" {
		models, err := r.catalog.ListModels(ctx, ep.Models, p.APIKey)
		if err != nil {
			metrics.ProviderProbeTotal.WithLabelValues("models", "error").Inc()
			logger.Warn(ctx, "api key check failed", "provider_id", p.ID, "error", err.Error())
			return KeyCheckResult{Valid: false, Error: upstreamMessage(err)}
		}
		metrics.ProviderProbeTotal.WithLabelValues("models", "success").Inc()
		if models == nil {
			models = []entity.DiscoveredModel{}
		}
		return KeyCheckResult{Valid: true, Models: models}
	}

	if err := r.catalog.Probe(ctx, ep.ChatCompletion, p.APIKey); err != nil {
		metrics.ProviderProbeTotal.WithLabelValues("chat", "error").Inc()
		logger.Warn(ctx, "api key check failed", "provider_id", p.ID, "error", err.Error())
		return KeyCheckResult{Valid: false, Error: upstreamMessage(err)}
	}
	metrics.ProviderProbeTotal.WithLabelValues("chat", "success").Inc()
	return KeyCheckResult{Valid: true, Models: []entity.DiscoveredModel{}}
}

// FetchAndAddModels 拉取服务商模型列表并逐个创建模型记录
// 单个模型创建失败不会中断批次，整体仍视为成功并给出部分计数
func (r *Registry) FetchAndAddModels(ctx context.Context, p entity.Provider) DiscoveryResult {
	ep := endpoint.Resolve(p.BaseURL)
	if ep.ManualModelEntryRequired || ep.Models == "" {
		metrics.ModelDiscoveryTotal.WithLabelValues("unsupported").Inc()
		return DiscoveryResult{Success: false, Message: msgManualEntry}
	}

	discovered, err := r.catalog.ListModels(ctx, ep.Models, p.APIKey)
	if err != nil {
		metrics.ModelDiscoveryTotal.WithLabelValues("error").Inc()
		logger.Error(ctx, "failed to fetch provider models", err, "provider_id", p.ID)
		return DiscoveryResult{Success: false, Message: upstreamMessage(err)}
	}
	if len(discovered) == 0 {
		metrics.ModelDiscoveryTotal.WithLabelValues("empty").Inc()
		return DiscoveryResult{Success: false, Message: msgNoModels}
	}

	errs := make([]error, len(discovered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(discoveryConcurrency)
	for i, dm := range discovered {
		g.Go(func() error {
			_, errs[i] = r.CreateModel(gctx, p.ID, entity.ModelInput{
				Name:            dm.ID,
				ModelIdentifier: dm.ID,
				Enabled:         true,
				IsDefault:       false,
			})
			return nil
		})
	}
	_ = g.Wait()

	res := DiscoveryResult{
		Success:   true,
		Attempted: len(discovered),
		Succeeded: []string{},
		Failed:    []ModelFailure{},
	}
	for i, dm := range discovered {
		if errs[i] != nil {
			logger.Error(ctx, "failed to add discovered model", errs[i], "provider_id", p.ID, "model", dm.ID)
			res.Failed = append(res.Failed, ModelFailure{ModelID: dm.ID, Error: upstreamMessage(errs[i])})
			continue
		}
		res.Succeeded = append(res.Succeeded, dm.ID)
	}
	res.Message = fmt.Sprintf("成功添加 %d 个模型", len(res.Succeeded))
	if len(res.Failed) > 0 {
		res.Message = fmt.Sprintf("成功添加 %d/%d 个模型", len(res.Succeeded), res.Attempted)
	}

	metrics.ModelDiscoveryTotal.WithLabelValues("created").Add(float64(len(res.Succeeded)))
	metrics.ModelDiscoveryTotal.WithLabelValues("failed").Add(float64(len(res.Failed)))
	logger.Info(ctx, "model discovery finished",
		"provider_id", p.ID,
		"attempted", res.Attempted,
		"succeeded", len(res.Succeeded),
	)
	return res
}

// upstreamMessage 优先使用上游返回的错误信息
func upstreamMessage(err error) string {
	if appErr, ok := asAppError(err); ok {
		if appErr.Detail != "" {
			return appErr.Detail
		}
		return appErr.Message
	}
	return err.Error()
}

func asAppError(err error) (*errors.AppError, bool) {
	if !errors.IsAppError(err) {
		return nil, false
	}
	return errors.AsAppError(err), true
}
