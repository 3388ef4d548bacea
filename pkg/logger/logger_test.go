package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "****cdef", Mask("sk-abcdef"))
	assert.Equal(t, "***", Mask("abc"))
	assert.Equal(t, "", Mask(""))
}

func TestFromContext_FieldsAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { defaultLogger.Store(nil) })

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, ChapterIDKey, int64(7))
	Info(ctx, "provider checked", "api_key", "sk-secret-9876", "model", "m1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "provider checked", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, float64(7), rec["chapter_id"])
	assert.Equal(t, "****9876", rec["api_key"])
	assert.Equal(t, "m1", rec["model"])
}

func TestDefault_ConcurrentFirstUse(t *testing.T) {
	var wg sync.WaitGroup
	loggers := make([]*slog.Logger, 16)
	for i := range loggers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loggers[i] = Default()
			Debug(context.Background(), "first use")
		}()
	}
	wg.Wait()

	for _, l := range loggers {
		assert.NotNil(t, l)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("warning").String())
	assert.Equal(t, "INFO", parseLevel("bogus").String())
}
