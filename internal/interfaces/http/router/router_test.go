package router

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/editor"
	"z-novel-workspace/internal/application/project"
	"z-novel-workspace/internal/application/prompt"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/application/workspace"
	"z-novel-workspace/internal/config"
	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/service"
	"z-novel-workspace/internal/interfaces/http/handler"
	"z-novel-workspace/pkg/errors"
)

type memState struct {
	data    map[string][]byte
	pingErr error
}

func (m *memState) Load(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memState) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memState) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memState) Ping(context.Context) error { return m.pingErr }

type stubProjects struct{}

func (stubProjects) List(context.Context) ([]*entity.Project, error) {
	return []*entity.Project{{ID: 1, Title: "长夜"}}, nil
}

func (stubProjects) GetByID(_ context.Context, id int64) (*entity.Project, error) {
	if id != 1 {
		return nil, errors.ErrNotFound
	}
	return &entity.Project{ID: 1, Title: "长夜"}, nil
}

func (stubProjects) Update(_ context.Context, id int64, patch *entity.ProjectPatch) (*entity.Project, error) {
	p := patch.Apply(entity.Project{ID: id})
	return &p, nil
}

func (stubProjects) Delete(context.Context, int64) error { return nil }

type stubTemplates struct{}

func (stubTemplates) ListByProject(_ context.Context, projectID int64) ([]*entity.PromptTemplate, error) {
	return []*entity.PromptTemplate{
		{ID: 1, ProjectID: projectID, Name: "续写", Category: "写作", Content: "继续"},
		{ID: 2, ProjectID: projectID, Name: "润色", Category: "写作", Content: "润色", IsDefault: true},
		{ID: 3, ProjectID: projectID, Name: "角色卡", Category: "设定", Content: "角色"},
	}, nil
}

func (stubTemplates) Create(_ context.Context, projectID int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	return &entity.PromptTemplate{ID: 9, ProjectID: projectID, Name: in.Name, Category: in.Category, Content: in.Content}, nil
}

func (stubTemplates) Update(_ context.Context, id int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	return &entity.PromptTemplate{ID: id, ProjectID: 1, Name: in.Name, Category: in.Category, Content: in.Content}, nil
}

func (stubTemplates) Delete(context.Context, int64) error { return nil }

type stubChapters struct{}

func (stubChapters) GetByID(_ context.Context, id int64) (*entity.Chapter, error) {
	if id > 10 {
		return nil, errors.ErrNotFound
	}
	return &entity.Chapter{ID: id, Title: "章节", Content: "<p>开头</p>"}, nil
}

func (stubChapters) Update(_ context.Context, ch *entity.Chapter) (*entity.Chapter, error) {
	out := *ch
	return &out, nil
}

type stubChat struct {
	reply  string
	stream string
	err    error
}

func (s *stubChat) RenderPrompt(_ context.Context, req *service.RenderRequest) (string, error) {
	return req.Content, nil
}

func (s *stubChat) Chat(context.Context, *service.ChatRequest) (*service.ChatResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	id := int64(42)
	return &service.ChatResponse{Response: s.reply, ConversationID: &id, Title: "新对话"}, nil
}

func (s *stubChat) ChatStream(context.Context, *service.ChatRequest) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.stream)), nil
}

// streamRecorder 支持 gin 流式响应所需的 CloseNotify
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

type testEnv struct {
	engine *gin.Engine
	ws     *workspace.Workspace
	state  *memState
	chat   *stubChat
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	state := &memState{data: map[string][]byte{}}
	settingsStore, err := settings.NewStore(ctx, state)
	require.NoError(t, err)
	projectStore, err := project.NewStore(ctx, state, stubProjects{})
	require.NoError(t, err)

	chat := &stubChat{reply: "好的", stream: "夜色深沉"}
	ws := workspace.New(
		settingsStore,
		projectStore,
		provider.NewRegistry(nil, nil, nil),
		prompt.NewStore(stubTemplates{}),
		conversation.NewStore(nil, chat, settingsStore),
		editor.NewSessionManager(2),
		stubChapters{},
		state,
	)

	cfg := &config.Config{}
	cfg.App.Name = "z-novel-workspace"
	r := New(cfg, &RouterHandlers{
		Health:       handler.NewHealthHandler(state, nil, "test"),
		Settings:     handler.NewSettingsHandler(settingsStore),
		Provider:     handler.NewProviderHandler(ws.Providers),
		Project:      handler.NewProjectHandler(ws),
		Prompt:       handler.NewPromptHandler(ws),
		Conversation: handler.NewConversationHandler(ws),
		Stream:       handler.NewStreamHandler(ws),
		Chapter:      handler.NewChapterHandler(ws),
		Editor:       handler.NewEditorHandler(ws),
	})
	return &testEnv{engine: r.Engine(), ws: ws, state: state, chat: chat}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Code  int `json:"code"`
	Error struct {
		ErrorCode string `json:"error_code"`
		Details   string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = env.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	env.state.pingErr = stderrors.New("bolt closed")
	w = env.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")
}

func TestSettingsRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPatch, "/workspace/settings", `{"proxyUrl":"http://127.0.0.1:7890"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/workspace/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "127.0.0.1:7890")
	assert.Contains(t, string(env.state.data["systemSettings"]), "127.0.0.1:7890")
}

func TestChatRoute(t *testing.T) {
	env := newTestEnv(t)

	t.Run("blank content rejected", func(t *testing.T) {
		w := env.do(http.MethodPost, "/workspace/chat", `{"content":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(errors.CodeEmptyMessage), decodeError(t, w).Error.ErrorCode)
	})

	t.Run("reply applied to current conversation", func(t *testing.T) {
		w := env.do(http.MethodPost, "/workspace/chat", `{"content":"你好"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"applied":true`)

		msgs := env.ws.Conversations.Messages()
		require.NotEmpty(t, msgs)
		assert.Equal(t, "好的", msgs[len(msgs)-1].Content)
		id := env.ws.Conversations.CurrentConversationID()
		require.NotNil(t, id)
		assert.Equal(t, int64(42), *id)
	})

	t.Run("upstream error surfaces detail", func(t *testing.T) {
		env.chat.err = errors.New(errors.CodeBackendError, "backend request failed").WithDetail("model offline")
		defer func() { env.chat.err = nil }()

		w := env.do(http.MethodPost, "/workspace/chat", `{"content":"再来"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "model offline", decodeError(t, w).Error.Details)
	})
}

func TestChatStreamRoute(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/workspace/chat/stream", strings.NewReader(`{"content":"写一段"}`))
	req.Header.Set("Content-Type", "application/json")
	w := newStreamRecorder()
	env.engine.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	assert.Contains(t, body, "event:content")
	assert.Contains(t, body, "event:done")

	msgs := env.ws.Conversations.Messages()
	require.NotEmpty(t, msgs)
	last := msgs[len(msgs)-1]
	assert.Equal(t, entity.RoleAssistant, last.Role)
	assert.Equal(t, "夜色深沉", last.Content)
}

func TestChapterRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"1", "2"} {
		w := env.do(http.MethodPost, "/workspace/chapters/open", `{"id":`+id+`}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(http.MethodPost, "/workspace/chapters/open", `{"id":3}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(errors.CodeCapacityExceeded), decodeError(t, w).Error.ErrorCode)

	w = env.do(http.MethodPost, "/workspace/chapters/abc/activate", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/workspace/chapters/9/activate", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPatch, "/workspace/chapters/1?persist=false", `{"title":"改名"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "改名")

	w = env.do(http.MethodDelete, "/workspace/chapters/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.ws.Editor.IsChapterOpen(2))

	w = env.do(http.MethodDelete, "/workspace/chapters", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.ws.Editor.OpenChapters())
}

func TestEditorRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/workspace/editor/events", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(errors.CodeNoActiveChapter), decodeError(t, w).Error.ErrorCode)

	w = env.do(http.MethodPost, "/workspace/editor/insert", `{"content":"<p>插入</p>"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(errors.CodeNoActiveEditor), decodeError(t, w).Error.ErrorCode)

	w = env.do(http.MethodPut, "/workspace/editor/content", `{"session_id":"unknown","content":"x"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPut, "/workspace/editor/selection", `{"text":"选中的句子"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, "/workspace/editor/selection", "")
	assert.Contains(t, w.Body.String(), "选中的句子")

	w = env.do(http.MethodDelete, "/workspace/editor/selection", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, env.ws.Editor.GetSelectedText())
}

func TestAssistantToggle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/workspace/assistant/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"visible":true`)

	w = env.do(http.MethodGet, "/workspace/assistant", "")
	assert.Contains(t, w.Body.String(), `"visible":true`)
}

func TestProjectRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/workspace/project", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"has_project":false`)

	w = env.do(http.MethodPut, "/workspace/project", `{"id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "长夜")

	w = env.do(http.MethodPut, "/workspace/project", `{"id":7}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, env.ws.Project.HasProject())

	w = env.do(http.MethodDelete, "/workspace/project", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, env.ws.Project.HasProject())
}

func TestPromptTemplateRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/workspace/prompt-templates", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(errors.CodeNoCurrentProject), decodeError(t, w).Error.ErrorCode)

	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/workspace/project", `{"id":1}`).Code)

	w = env.do(http.MethodGet, "/workspace/prompt-templates?refresh=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "角色卡")

	w = env.do(http.MethodGet, "/workspace/prompt-templates/default", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "润色")

	w = env.do(http.MethodGet, "/workspace/prompt-templates/by-category", "")
	require.Equal(t, http.StatusOK, w.Code)
	var groups struct {
		Data struct {
			Categories map[string][]entity.PromptTemplate `json:"categories"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &groups))
	assert.Len(t, groups.Data.Categories["写作"], 2)
	assert.Len(t, groups.Data.Categories["设定"], 1)

	w = env.do(http.MethodPost, "/workspace/prompt-templates", `{"name":"扩写","category":"写作","content":"扩写这段"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, env.ws.Prompts.Templates(), 4)

	w = env.do(http.MethodPost, "/workspace/prompt-templates", `{"name":"缺内容"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, "/workspace/prompt-templates/9", `{"name":"扩写二","category":"改写","content":"再扩写"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got, ok := env.ws.Prompts.Template(9)
	require.True(t, ok)
	assert.Equal(t, "改写", got.Category)

	w = env.do(http.MethodDelete, "/workspace/prompt-templates/9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodDelete, "/workspace/prompt-templates/404", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(errors.CodeTemplateNotFound), decodeError(t, w).Error.ErrorCode)

	require.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/workspace/project", "").Code)
	assert.Empty(t, env.ws.Prompts.Templates())
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/workspace/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "1004", body.Error.ErrorCode)
	assert.Equal(t, "/workspace/nope", body.Error.Details)

	w = env.do(http.MethodPost, "/workspace/settings", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
