package editor

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/pkg/errors"
)

type fakeEditor struct {
	content  string
	inserted []string
	failWith error
}

func (f *fakeEditor) Ready() bool { return true }

func (f *fakeEditor) Content() string { return f.content }

func (f *fakeEditor) SetContent(s string) error {
	f.content = s
	return nil
}

func (f *fakeEditor) Destroy() {}

func (f *fakeEditor) InsertHTML(s string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.inserted = append(f.inserted, s)
	return nil
}

// readOnlyEditor 没有插入能力
type readOnlyEditor struct{}

func (readOnlyEditor) Ready() bool { return true }

func (readOnlyEditor) Content() string { return "" }

func (readOnlyEditor) SetContent(string) error { return nil }

func (readOnlyEditor) Destroy() {}

func chapter(id int64) entity.Chapter {
	return entity.Chapter{ID: id, Title: fmt.Sprintf("第%d章", id)}
}

func openIDs(m *SessionManager) []int64 {
	var ids []int64
	for _, c := range m.OpenChapters() {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestOpenChapter_CapacityIsHardGate(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)

	for id := int64(1); id <= 3; id++ {
		require.NoError(t, m.OpenChapter(ctx, chapter(id)))
	}

	for id := int64(4); id <= 10; id++ {
		before := m.Snapshot()
		err := m.OpenChapter(ctx, chapter(id))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeCapacityExceeded))
		assert.Contains(t, err.Error(), "3")
		assert.Equal(t, before, m.Snapshot(), "rejected open must not change state")
		assert.LessOrEqual(t, len(m.OpenChapters()), 3)
	}

	assert.Equal(t, []int64{1, 2, 3}, openIDs(m))
	assert.False(t, m.CanOpenMoreChapters())
}

func TestOpenChapter_AlreadyOpenOnlyActivates(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(2)

	require.NoError(t, m.OpenChapter(ctx, chapter(1)))
	require.NoError(t, m.OpenChapter(ctx, chapter(2)))
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))

	id, ok := m.ActiveChapterID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, []int64{1, 2}, openIDs(m))
}

func TestNewSessionManager_DefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultMaxOpenChapters, NewSessionManager(0).MaxOpenChapters())
}

func TestCloseChapter_PromotesLastOpened(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))
	require.NoError(t, m.OpenChapter(ctx, chapter(2)))

	m.CloseChapter(ctx, 2)

	id, ok := m.ActiveChapterID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestCloseChapter_LastClearsEditorAndSelection(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))
	require.NoError(t, m.SetActiveEditorInstance(&fakeEditor{}))
	m.UpdateCachedSelectedText("选中的文字")

	m.CloseChapter(ctx, 1)

	_, ok := m.ActiveChapterID()
	assert.False(t, ok)
	assert.False(t, m.HasActiveEditor())
	assert.Empty(t, m.GetSelectedText())
	assert.Empty(t, m.OpenChapters())
}

func TestCloseChapter_NonActiveKeepsActive(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	for id := int64(1); id <= 3; id++ {
		require.NoError(t, m.OpenChapter(ctx, chapter(id)))
	}

	m.CloseChapter(ctx, 1)
	m.CloseChapter(ctx, 42)

	id, _ := m.ActiveChapterID()
	assert.Equal(t, int64(3), id)
	assert.Equal(t, []int64{2, 3}, openIDs(m))
}

func TestCloseChapter_ReleasesEditorOwnedByClosedChapter(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))
	require.NoError(t, m.SetActiveEditorInstance(&fakeEditor{}))
	require.NoError(t, m.OpenChapter(ctx, chapter(2)))
	assert.False(t, m.HasActiveEditor(), "editor belongs to chapter 1, not the active one")

	m.CloseChapter(ctx, 1)
	require.NoError(t, m.SetActiveChapter(2))
	assert.False(t, m.HasActiveEditor())
}

func TestCloseChapter_OwnerClosedKeepsSelectionWhileChaptersRemain(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, m.OpenChapter(ctx, chapter(id)))
	}
	require.NoError(t, m.SetActiveChapter(2))
	require.NoError(t, m.SetActiveEditorInstance(&fakeEditor{}))
	m.UpdateCachedSelectedText("夜色")

	m.CloseChapter(ctx, 2)

	assert.False(t, m.HasActiveEditor())
	assert.Equal(t, "夜色", m.GetSelectedText())
	id, ok := m.ActiveChapterID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestBindEditor_ReturnsOwnerChapter(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)

	_, err := m.BindEditor(&fakeEditor{})
	assert.ErrorIs(t, err, errors.ErrNoActiveChapter)

	require.NoError(t, m.OpenChapter(ctx, entity.Chapter{ID: 1, Content: "<p>一</p>"}))
	require.NoError(t, m.OpenChapter(ctx, entity.Chapter{ID: 2, Content: "<p>二</p>"}))

	ed := &fakeEditor{}
	owner, err := m.BindEditor(ed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), owner.ID)
	assert.Equal(t, "<p>二</p>", owner.Content)
	assert.True(t, m.IsBound(ed))

	_, err = m.BindEditor(nil)
	assert.ErrorIs(t, err, errors.ErrNoActiveEditor)
}

func TestCloseAllChapters(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))
	require.NoError(t, m.OpenChapter(ctx, chapter(2)))
	require.NoError(t, m.SetActiveEditorInstance(&fakeEditor{}))

	m.CloseAllChapters(ctx)

	snap := m.Snapshot()
	assert.Empty(t, snap.OpenChapters)
	assert.Nil(t, snap.ActiveChapterID)
	assert.False(t, snap.EditorBound)
	assert.True(t, m.CanOpenMoreChapters())
}

func TestInsertContent(t *testing.T) {
	ctx := context.Background()

	t.Run("no bound editor fails without mutation", func(t *testing.T) {
		m := NewSessionManager(3)
		require.NoError(t, m.OpenChapter(ctx, chapter(1)))
		m.UpdateCachedSelectedText("abc")
		before := m.Snapshot()

		err := m.InsertContent(ctx, "<p>hi</p>")
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.CodeNoActiveEditor))
		assert.Equal(t, before, m.Snapshot())
	})

	t.Run("no chapters at all", func(t *testing.T) {
		m := NewSessionManager(3)
		err := m.InsertContent(ctx, "x")
		assert.True(t, errors.HasCode(err, errors.CodeNoActiveEditor))
	})

	t.Run("editor without insert capability", func(t *testing.T) {
		m := NewSessionManager(3)
		require.NoError(t, m.OpenChapter(ctx, chapter(1)))
		require.NoError(t, m.SetActiveEditorInstance(readOnlyEditor{}))

		err := m.InsertContent(ctx, "x")
		assert.True(t, errors.HasCode(err, errors.CodeNoActiveEditor))
	})

	t.Run("delegates to bound editor", func(t *testing.T) {
		m := NewSessionManager(3)
		ed := &fakeEditor{}
		require.NoError(t, m.OpenChapter(ctx, chapter(1)))
		require.NoError(t, m.SetActiveEditorInstance(ed))

		require.NoError(t, m.InsertContent(ctx, "<p>续写</p>"))
		assert.Equal(t, []string{"<p>续写</p>"}, ed.inserted)
	})

	t.Run("editor error is surfaced", func(t *testing.T) {
		m := NewSessionManager(3)
		ed := &fakeEditor{failWith: stderrors.New("boom")}
		require.NoError(t, m.OpenChapter(ctx, chapter(1)))
		require.NoError(t, m.SetActiveEditorInstance(ed))

		err := m.InsertContent(ctx, "x")
		require.Error(t, err)
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("background chapter editor is not written", func(t *testing.T) {
		m := NewSessionManager(3)
		ed := &fakeEditor{}
		require.NoError(t, m.OpenChapter(ctx, chapter(1)))
		require.NoError(t, m.SetActiveEditorInstance(ed))
		require.NoError(t, m.OpenChapter(ctx, chapter(2)))

		assert.Error(t, m.InsertContent(ctx, "x"))
		assert.Empty(t, ed.inserted)

		require.NoError(t, m.SetActiveChapter(1))
		assert.NoError(t, m.InsertContent(ctx, "x"))
	})
}

func TestSetActiveEditorInstance_RequiresActiveChapter(t *testing.T) {
	m := NewSessionManager(3)
	err := m.SetActiveEditorInstance(&fakeEditor{})
	assert.True(t, errors.HasCode(err, errors.CodeNoActiveChapter))
}

func TestReleaseEditorInstance_OnlyCurrent(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))

	first, second := &fakeEditor{}, &fakeEditor{}
	require.NoError(t, m.SetActiveEditorInstance(first))
	require.NoError(t, m.SetActiveEditorInstance(second))

	assert.False(t, m.ReleaseEditorInstance(first))
	assert.True(t, m.HasActiveEditor())
	assert.True(t, m.ReleaseEditorInstance(second))
	assert.False(t, m.HasActiveEditor())
}

func TestIsBound(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))

	ed := &fakeEditor{}
	assert.False(t, m.IsBound(ed))
	assert.False(t, m.IsBound(nil))

	require.NoError(t, m.SetActiveEditorInstance(ed))
	assert.True(t, m.IsBound(ed))

	m.ClearActiveEditorInstance()
	assert.False(t, m.IsBound(ed))
}

func TestSetActiveChapter_MustBeOpen(t *testing.T) {
	m := NewSessionManager(3)
	assert.ErrorIs(t, m.SetActiveChapter(9), errors.ErrChapterNotOpen)
}

func TestUpdateChapter(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(3)
	require.NoError(t, m.OpenChapter(ctx, chapter(1)))

	content := "天色 已晚"
	updated, err := m.UpdateChapter(1, entity.ChapterPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)
	assert.Equal(t, 4, updated.WordCount)
	assert.Equal(t, "第1章", updated.Title)

	_, err = m.UpdateChapter(7, entity.ChapterPatch{})
	assert.ErrorIs(t, err, errors.ErrChapterNotOpen)
}

func TestSelectionCacheAndAssistantToggle(t *testing.T) {
	m := NewSessionManager(3)

	m.UpdateCachedSelectedText("片段")
	assert.Equal(t, "片段", m.GetSelectedText())
	m.ClearCachedSelectedText()
	assert.Empty(t, m.GetSelectedText())

	assert.True(t, m.ToggleCreativeAssistant())
	assert.True(t, m.AssistantVisible())
	assert.False(t, m.ToggleCreativeAssistant())
	assert.Empty(t, m.OpenChapters())
}
