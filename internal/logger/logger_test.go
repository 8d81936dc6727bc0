package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/dataprep/internal/dataset"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestGetBeforeInitIsNop(t *testing.T) {
	mu.Lock()
	prev := globalLogger
	globalLogger = nil
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		globalLogger = prev
		mu.Unlock()
	})

	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestWithDatasetAddsIdentity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := dataset.New([]string{"a"}, []dataset.Row{{"a": 1.0}})
	child := root.Derive(root.Columns, root.Rows, "step")

	WithDataset(zap.New(core), child).Info("hello")

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, child.ID, ctx["dataset_id"])
	assert.Equal(t, root.ID, ctx["parent_id"])
}
