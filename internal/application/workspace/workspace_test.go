package workspace

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-workspace/internal/application/conversation"
	"z-novel-workspace/internal/application/editor"
	"z-novel-workspace/internal/application/project"
	"z-novel-workspace/internal/application/prompt"
	"z-novel-workspace/internal/application/provider"
	"z-novel-workspace/internal/application/settings"
	"z-novel-workspace/internal/domain/entity"
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

type fakeProjects struct {
	items map[int64]entity.Project
}

func (f *fakeProjects) List(context.Context) ([]*entity.Project, error) { return nil, nil }

func (f *fakeProjects) GetByID(_ context.Context, id int64) (*entity.Project, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &p, nil
}

func (f *fakeProjects) Update(_ context.Context, id int64, patch *entity.ProjectPatch) (*entity.Project, error) {
	p := patch.Apply(f.items[id])
	return &p, nil
}

func (f *fakeProjects) Delete(context.Context, int64) error { return nil }

type fakeTemplates struct {
	items map[int64][]*entity.PromptTemplate
	lists int
}

func (f *fakeTemplates) ListByProject(_ context.Context, projectID int64) ([]*entity.PromptTemplate, error) {
	f.lists++
	return f.items[projectID], nil
}

func (f *fakeTemplates) Create(_ context.Context, projectID int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	return &entity.PromptTemplate{ID: 99, ProjectID: projectID, Name: in.Name, Content: in.Content}, nil
}

func (f *fakeTemplates) Update(_ context.Context, id int64, in *entity.PromptTemplateInput) (*entity.PromptTemplate, error) {
	return &entity.PromptTemplate{ID: id, Name: in.Name, Content: in.Content}, nil
}

func (f *fakeTemplates) Delete(context.Context, int64) error { return nil }

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{items: map[int64][]*entity.PromptTemplate{
		1: {
			{ID: 11, ProjectID: 1, Name: "续写", Category: "写作"},
			{ID: 12, ProjectID: 1, Name: "润色", Category: "写作", IsDefault: true},
		},
		2: {
			{ID: 21, ProjectID: 2, Name: "大纲", Category: "规划"},
		},
	}}
}

type fakeChapters struct {
	items   map[int64]entity.Chapter
	gets    int
	saved   []entity.Chapter
	saveErr error
}

func (f *fakeChapters) GetByID(_ context.Context, id int64) (*entity.Chapter, error) {
	f.gets++
	ch, ok := f.items[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return &ch, nil
}

func (f *fakeChapters) Update(_ context.Context, ch *entity.Chapter) (*entity.Chapter, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, *ch)
	out := *ch
	out.WordCount = entity.CountWords(out.Content)
	return &out, nil
}

func newTestWorkspace(t *testing.T, chapters *fakeChapters) (*Workspace, *memState) {
	t.Helper()
	w, state, _ := newTestWorkspaceWithTemplates(t, chapters)
	return w, state
}

func newTestWorkspaceWithTemplates(t *testing.T, chapters *fakeChapters) (*Workspace, *memState, *fakeTemplates) {
	t.Helper()
	ctx := context.Background()
	state := &memState{data: map[string][]byte{}}

	settingsStore, err := settings.NewStore(ctx, state)
	require.NoError(t, err)
	projects := &fakeProjects{items: map[int64]entity.Project{
		1: {ID: 1, Title: "长夜"},
		2: {ID: 2, Title: "北境"},
	}}
	projectStore, err := project.NewStore(ctx, state, projects)
	require.NoError(t, err)
	templates := newFakeTemplates()

	w := New(
		settingsStore,
		projectStore,
		provider.NewRegistry(nil, nil, nil),
		prompt.NewStore(templates),
		conversation.NewStore(nil, nil, settingsStore),
		editor.NewSessionManager(2),
		chapters,
		state,
	)
	return w, state, templates
}

func TestTurnOptions_UsesCurrentProject(t *testing.T) {
	w, _ := newTestWorkspace(t, &fakeChapters{})

	opts := w.TurnOptions("", nil, nil)
	assert.Nil(t, opts.ProjectID)
	assert.Equal(t, conversation.ScopeChat, opts.Scope)

	_, err := w.SelectProject(context.Background(), 2)
	require.NoError(t, err)

	opts = w.TurnOptions(conversation.ScopeAssistant, nil, nil)
	require.NotNil(t, opts.ProjectID)
	assert.Equal(t, int64(2), *opts.ProjectID)
	assert.Equal(t, conversation.ScopeAssistant, opts.Scope)
}

func TestPromptTemplates_RequireCurrentProject(t *testing.T) {
	ctx := context.Background()
	w, _, templates := newTestWorkspaceWithTemplates(t, &fakeChapters{})

	_, err := w.PromptTemplates(ctx, false)
	assert.ErrorIs(t, err, errors.ErrNoCurrentProject)

	_, err = w.SelectProject(ctx, 1)
	require.NoError(t, err)
	list, err := w.PromptTemplates(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = w.PromptTemplates(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, templates.lists)

	_, err = w.PromptTemplates(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, templates.lists)
}

func TestPromptTemplates_ResetOnProjectSwitch(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWorkspaceWithTemplates(t, &fakeChapters{})

	_, err := w.SelectProject(ctx, 1)
	require.NoError(t, err)
	_, err = w.PromptTemplates(ctx, false)
	require.NoError(t, err)

	_, err = w.SelectProject(ctx, 2)
	require.NoError(t, err)
	assert.False(t, w.Prompts.Loaded(1))
	assert.Empty(t, w.Prompts.Templates())

	list, err := w.PromptTemplates(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(21), list[0].ID)

	require.NoError(t, w.ClearProject(ctx))
	assert.Empty(t, w.Prompts.Templates())
}

func TestTurnOptions_FallsBackToProjectDefaultTemplate(t *testing.T) {
	ctx := context.Background()
	w, _, _ := newTestWorkspaceWithTemplates(t, &fakeChapters{})

	_, err := w.SelectProject(ctx, 1)
	require.NoError(t, err)
	opts := w.TurnOptions(conversation.ScopeChat, nil, nil)
	assert.Nil(t, opts.PromptTemplateID, "templates not loaded yet")

	_, err = w.PromptTemplates(ctx, false)
	require.NoError(t, err)
	opts = w.TurnOptions(conversation.ScopeChat, nil, nil)
	require.NotNil(t, opts.PromptTemplateID)
	assert.Equal(t, int64(12), *opts.PromptTemplateID)

	explicit := int64(11)
	opts = w.TurnOptions(conversation.ScopeChat, &explicit, nil)
	assert.Equal(t, int64(11), *opts.PromptTemplateID)

	fromSettings := int64(7)
	defaults := w.Settings.ChatDefaults()
	defaults.PromptTemplateID = &fromSettings
	_, err = w.Settings.Update(ctx, entity.SettingsPatch{ChatDefaults: &defaults})
	require.NoError(t, err)
	opts = w.TurnOptions(conversation.ScopeChat, nil, nil)
	assert.Nil(t, opts.PromptTemplateID, "settings default is applied when the payload is built")

	opts = w.TurnOptions(conversation.ScopeAssistant, nil, nil)
	require.NotNil(t, opts.PromptTemplateID)
	assert.Equal(t, int64(12), *opts.PromptTemplateID)
}

func TestSelectProject_ClosesChaptersOnSwitch(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t, &fakeChapters{items: map[int64]entity.Chapter{7: {ID: 7}}})

	_, err := w.SelectProject(ctx, 1)
	require.NoError(t, err)
	_, err = w.OpenChapter(ctx, 7)
	require.NoError(t, err)

	_, err = w.SelectProject(ctx, 1)
	require.NoError(t, err)
	assert.True(t, w.Editor.IsChapterOpen(7))

	_, err = w.SelectProject(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, w.Editor.OpenChapters())
}

func TestOpenChapter(t *testing.T) {
	ctx := context.Background()
	chapters := &fakeChapters{items: map[int64]entity.Chapter{
		1: {ID: 1, Title: "第一章"},
		2: {ID: 2, Title: "第二章"},
		3: {ID: 3, Title: "第三章"},
	}}
	w, _ := newTestWorkspace(t, chapters)

	ch, err := w.OpenChapter(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "第一章", ch.Title)
	_, err = w.OpenChapter(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, chapters.gets)

	t.Run("already open only activates", func(t *testing.T) {
		ch, err := w.OpenChapter(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "第一章", ch.Title)
		assert.Equal(t, 2, chapters.gets)
		id, _ := w.Editor.ActiveChapterID()
		assert.Equal(t, int64(1), id)
	})

	t.Run("capacity rejects before fetching", func(t *testing.T) {
		_, err := w.OpenChapter(ctx, 3)
		assert.True(t, errors.HasCode(err, errors.CodeCapacityExceeded))
		assert.Equal(t, 2, chapters.gets)
		assert.False(t, w.Editor.IsChapterOpen(3))
	})

	t.Run("fetch failure leaves session unchanged", func(t *testing.T) {
		w.Editor.CloseChapter(ctx, 2)
		_, err := w.OpenChapter(ctx, 99)
		assert.True(t, errors.HasCode(err, errors.CodeNotFound))
		assert.Len(t, w.Editor.OpenChapters(), 1)
	})
}

func TestSaveChapter(t *testing.T) {
	ctx := context.Background()
	chapters := &fakeChapters{items: map[int64]entity.Chapter{5: {ID: 5, Title: "旧题", Content: "旧"}}}
	w, _ := newTestWorkspace(t, chapters)

	_, err := w.SaveChapter(ctx, 5, entity.ChapterPatch{})
	assert.True(t, errors.HasCode(err, errors.CodeChapterNotOpen))

	_, err = w.OpenChapter(ctx, 5)
	require.NoError(t, err)

	content := "夜色 深沉"
	ch, err := w.SaveChapter(ctx, 5, entity.ChapterPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "旧题", ch.Title)
	assert.Equal(t, content, ch.Content)
	assert.Equal(t, 4, ch.WordCount)
	require.Len(t, chapters.saved, 1)
	assert.Equal(t, content, chapters.saved[0].Content)

	chapters.saveErr = errors.New(errors.CodeBackendError, "backend request failed")
	other := "不会保存"
	_, err = w.SaveChapter(ctx, 5, entity.ChapterPatch{Content: &other})
	require.Error(t, err)
	active, _ := w.Editor.ActiveChapter()
	assert.Equal(t, content, active.Content)
}

func TestReady(t *testing.T) {
	w, state := newTestWorkspace(t, &fakeChapters{})
	assert.NoError(t, w.Ready(context.Background()))

	state.pingErr = stderrors.New("disk gone")
	err := w.Ready(context.Background())
	assert.True(t, errors.HasCode(err, errors.CodeStateStoreError))
}

func TestClearProject_ClosesChapters(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t, &fakeChapters{items: map[int64]entity.Chapter{1: {ID: 1}}})

	_, err := w.SelectProject(ctx, 1)
	require.NoError(t, err)
	_, err = w.OpenChapter(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, w.ClearProject(ctx))
	assert.False(t, w.Project.HasProject())
	assert.Empty(t, w.Editor.OpenChapters())
}

func TestDeleteProject_CurrentClosesChapters(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t, &fakeChapters{items: map[int64]entity.Chapter{1: {ID: 1}}})

	_, err := w.SelectProject(ctx, 1)
	require.NoError(t, err)
	_, err = w.OpenChapter(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, w.DeleteProject(ctx, 2))
	assert.True(t, w.Editor.IsChapterOpen(1))

	require.NoError(t, w.DeleteProject(ctx, 1))
	assert.False(t, w.Project.HasProject())
	assert.Empty(t, w.Editor.OpenChapters())
}
