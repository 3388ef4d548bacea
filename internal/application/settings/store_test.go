package settings

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-novel-workspace/internal/domain/entity"
	"z-novel-workspace/internal/domain/repository"
	"z-novel-workspace/pkg/errors"
)

// memState 以 JSON 保存记录，模拟真实存储的序列化往返
type memState struct {
	data    map[string][]byte
	saveErr error
	loadErr error
}

func newMemState() *memState {
	return &memState{data: map[string][]byte{}}
}

func (m *memState) Load(_ context.Context, key string, dst any) (bool, error) {
	if m.loadErr != nil {
		return false, m.loadErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memState) Save(_ context.Context, key string, value any) error {
	if m.saveErr != nil {
		return m.saveErr
	}
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

func (m *memState) Ping(context.Context) error { return nil }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestNewStore_DefaultsWhenAbsent(t *testing.T) {
	s, err := NewStore(context.Background(), newMemState())
	require.NoError(t, err)

	got := s.Get()
	assert.Equal(t, entity.DefaultSettings(), got)
	assert.Equal(t, "", got.ProxyURL)
	assert.Equal(t, 0.7, got.ChatDefaults.Temperature)
	assert.Equal(t, 2000, got.ChatDefaults.MaxTokens)
	assert.Equal(t, 10, got.AssistantDefaults.MemoryRounds)
	assert.Nil(t, got.ChatDefaults.AIModelID)
}

func TestNewStore_LoadError(t *testing.T) {
	repo := newMemState()
	repo.loadErr = stderrors.New("disk gone")

	_, err := NewStore(context.Background(), repo)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeStateStoreError))
}

func TestUpdate_RoundTripIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	repo := newMemState()

	s, err := NewStore(ctx, repo)
	require.NoError(t, err)

	chat := entity.GenerationDefaults{
		AIModelID:    int64Ptr(5),
		Temperature:  0.2,
		MaxTokens:    512,
		MemoryRounds: 4,
	}
	_, err = s.Update(ctx, entity.SettingsPatch{ChatDefaults: &chat})
	require.NoError(t, err)

	_, err = s.Update(ctx, entity.SettingsPatch{ProxyURL: strPtr("p")})
	require.NoError(t, err)

	reloaded, err := NewStore(ctx, repo)
	require.NoError(t, err)

	got := reloaded.Get()
	assert.Equal(t, "p", got.ProxyURL)
	assert.Equal(t, chat, got.ChatDefaults)
	assert.Equal(t, entity.DefaultGenerationDefaults(), got.AssistantDefaults)
}

func TestUpdate_AcceptsUnvalidatedValues(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(ctx, newMemState())
	require.NoError(t, err)

	bad := entity.GenerationDefaults{MaxTokens: -1, Temperature: 9}
	got, err := s.Update(ctx, entity.SettingsPatch{AssistantDefaults: &bad})
	require.NoError(t, err)
	assert.Equal(t, -1, got.AssistantDefaults.MaxTokens)
}

func TestUpdate_PersistFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	repo := newMemState()
	s, err := NewStore(ctx, repo)
	require.NoError(t, err)

	repo.saveErr = stderrors.New("read-only")
	_, err = s.Update(ctx, entity.SettingsPatch{ProxyURL: strPtr("http://proxy:8080")})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeStateStoreError))

	assert.Equal(t, "", s.ProxyURL())
	_, ok := repo.data[repository.StateKeySettings]
	assert.False(t, ok)
}

func TestLoad_PartialRecordKeepsDefaults(t *testing.T) {
	repo := newMemState()
	repo.data[repository.StateKeySettings] = []byte(`{"proxyUrl":"socks5://127.0.0.1:1080"}`)

	s, err := NewStore(context.Background(), repo)
	require.NoError(t, err)

	assert.Equal(t, "socks5://127.0.0.1:1080", s.ProxyURL())
	assert.Equal(t, entity.DefaultGenerationDefaults(), s.ChatDefaults())
}
