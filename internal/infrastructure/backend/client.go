// Package backend 提供持久化 REST 后端客户端及仓储实现
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"z-novel-workspace/internal/config"
	"z-novel-workspace/pkg/errors"
	"z-novel-workspace/pkg/metrics"
)

var tracer = otel.Tracer("backend")

// maxErrorBody 读取错误响应体的上限
const maxErrorBody = 64 << 10

// Client 后端 REST 客户端
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient 创建后端客户端
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{Timeout: cfg.StreamTimeout},
	}
}

// BaseURL 后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping 检查后端是否可达
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/projects", "/api/projects", nil, nil)
}

// do 发送 JSON 请求并将 2xx 响应解码到 out
// route 为不含具体 ID 的路由模板，用于指标与 span 名称
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	resp, err := c.send(ctx, c.httpClient, method, route, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.CodeBackendError, "failed to decode backend response")
	}
	return nil
}

// openStream 发送请求并返回未读取的 2xx 响应体
func (c *Client) openStream(ctx context.Context, route, path string, body any) (io.ReadCloser, error) {
	resp, err := c.send(ctx, c.streamClient, http.MethodPost, route, path, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, route, path string, body any) (*http.Response, error) {
	ctx, span := tracer.Start(ctx, "backend."+method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		))
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.BackendCallTotal.WithLabelValues(method, route, status).Inc()
		metrics.BackendCallDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternalError, "failed to marshal backend request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "failed to create backend request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := hc.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, errors.Wrap(err, errors.CodeBackendError, "backend unreachable")
	}

	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		appErr := responseError(resp)
		span.SetStatus(codes.Error, appErr.Detail)
		return nil, appErr
	}
	return resp, nil
}

// responseError 将非 2xx 响应转换为应用错误，尽量携带后端给出的错误信息
func responseError(resp *http.Response) *errors.AppError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := extractMessage(raw)
	if msg == "" {
		msg = fmt.Sprintf("status %d", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNotFound {
		return errors.ErrNotFound.WithDetail(msg)
	}
	return errors.New(errors.CodeBackendError, "backend request failed").WithDetail(msg)
}

// extractMessage 依次尝试 detail、error.message、error、message 字段
func extractMessage(raw []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}

	if s := rawString(body.Detail); s != "" {
		return s
	}
	if len(body.Detail) > 0 && string(body.Detail) != "null" {
		// FastAPI 校验错误: [{"loc":[...],"msg":"..."}]
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(body.Detail, &items) == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(body.Error) > 0 && json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	if s := rawString(body.Error); s != "" {
		return s
	}
	return body.Message
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
