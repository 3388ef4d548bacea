// Package llm 提供第三方 OpenAI 兼容服务商的访问客户端
package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"z-novel-workspace/internal/config"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/logger"
)

var tracer = otel.Tracer("llm.openai_compat")

const maxErrorBody = 64 << 10

// ProxySource 提供当前代理地址，空串表示直连
type ProxySource interface {
	ProxyURL() string
}

// Catalog OpenAI 兼容的模型列表与凭证探测客户端
type Catalog struct {
	httpClient *http.Client
	proxy      ProxySource
}

// NewCatalog 创建客户端；每次请求都会重新读取代理设置
func NewCatalog(cfg *config.ProvidersConfig, proxy ProxySource) service.ModelCatalog {
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Catalog{proxy: proxy}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = c.proxyFor
	c.httpClient = &http.Client{Timeout: timeout, Transport: transport}
	return c
}

type modelsResponse struct {
	Data []entity.DiscoveredModel `json:"data"`
}

// ListModels 调用模型列表端点，返回 data 字段中的模型
func (c *Catalog) ListModels(ctx context.Context, modelsEndpoint, apiKey string) ([]entity.DiscoveredModel, error) {
	resp, err := c.get(ctx, "models", modelsEndpoint, apiKey)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.CodeProviderError, "invalid models response")
	}
	if out.Data == nil {
		out.Data = []entity.DiscoveredModel{}
	}
	return out.Data, nil
}

// Probe 以 GET 访问端点，仅判断可达且被授权
func (c *Catalog) Probe(ctx context.Context, endpoint, apiKey string) error {
	resp, err := c.get(ctx, "chat", endpoint, apiKey)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *Catalog) get(ctx context.Context, kind, endpoint, apiKey string) (*http.Response, error) {
	ctx, span := tracer.Start(ctx, "provider."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("provider.endpoint", endpoint)))
	defer span.End()

	if endpoint == "" {
		return nil, errors.New(errors.CodeProviderError, "provider endpoint is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeProviderError, "invalid provider endpoint").WithDetail(err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		logger.Debug(ctx, "provider request failed", "endpoint", endpoint, "error", err.Error())
		return nil, errors.Wrap(err, errors.CodeProviderError, "provider unreachable").WithDetail(err.Error())
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := upstreamError(raw)
		if msg == "" {
			msg = "Request failed with status code " + strconv.Itoa(resp.StatusCode)
		}
		span.SetStatus(codes.Error, msg)
		return nil, errors.New(errors.CodeProviderError, "provider request failed").WithDetail(msg)
	}
	return resp, nil
}

// proxyFor 按设置中的代理地址路由请求；未配置时回退到环境变量代理
func (c *Catalog) proxyFor(req *http.Request) (*url.URL, error) {
	if c.proxy != nil {
		if raw := strings.TrimSpace(c.proxy.ProxyURL()); raw != "" {
			return url.Parse(raw)
		}
	}
	return http.ProxyFromEnvironment(req)
}

// upstreamError 提取 OpenAI 风格的 error.message
func upstreamError(raw []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Error) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	var s string
	if json.Unmarshal(body.Error, &s) == nil {
		return s
	}
	return ""
}
