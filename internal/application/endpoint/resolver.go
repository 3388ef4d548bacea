// Package endpoint 将用户填写的 OpenAI 兼容地址规范化为具体端点
package endpoint

import "strings"

const (
	// Terminator 以 # 结尾表示地址已是完整的对话端点，不再补全路径
	Terminator = "#"

	apiRoot        = "/v1"
	chatPath       = "/chat/completions"
	modelsPath     = "/models"
	chatSegment    = "/chat"
	schemeSplitter = "://"
)

// Endpoints 解析结果
type Endpoints struct {
	ChatCompletion           string `json:"chat_completion_endpoint"`
	Models                   string `json:"models_endpoint"`
	ManualModelEntryRequired bool   `json:"manual_model_entry_required"`
}

// Resolve 解析服务商 base URL
// 纯字符串处理，不做 URL 校验，对任意输入都不会 panic：
//  1. 空串（含纯空白）返回全空结果
//  2. 以 # 结尾：去掉 # 后直接作为对话端点，/chat 段之前的部分拼接 /models 作为模型端点，
//     找不到 /chat 段时需要手动添加模型
//  3. 去掉末尾 / 后以 /v1 结尾：直接追加 /chat/completions 与 /models
//  4. 其余情况追加 /v1/chat/completions 与 /v1/models
func Resolve(baseURL string) Endpoints {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return Endpoints{}
	}

	if strings.HasSuffix(raw, Terminator) {
		chat := strings.TrimSuffix(raw, Terminator)
		models := ""
		if idx := chatSegmentIndex(chat); idx >= 0 {
			models = chat[:idx] + modelsPath
		}
		return Endpoints{
			ChatCompletion:           chat,
			Models:                   models,
			ManualModelEntryRequired: models == "",
		}
	}

	root := strings.TrimRight(raw, "/")
	if !strings.HasSuffix(root, apiRoot) {
		root += apiRoot
	}
	return Endpoints{
		ChatCompletion: root + chatPath,
		Models:         root + modelsPath,
	}
}

// chatSegmentIndex 返回路径部分第一个 /chat 段的下标，跳过协议与主机名
// 避免 https://chat.example.com 这类主机名被误判
func chatSegmentIndex(u string) int {
	start := 0
	if i := strings.Index(u, schemeSplitter); i >= 0 {
		start = i + len(schemeSplitter)
		if slash := strings.Index(u[start:], "/"); slash >= 0 {
			start += slash
		} else {
			return -1
		}
	}
	if idx := strings.Index(u[start:], chatSegment); idx >= 0 {
		return start + idx
	}
	return -1
}
