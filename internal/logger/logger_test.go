package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/streamrail/ua-classifier/internal/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := logger.New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = logger.New("warn", "console")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := logger.New("loud", "json")
	assert.Error(t, err)

	_, err = logger.New("info", "xml")
	assert.Error(t, err)

	assert.Panics(t, func() { logger.Must("info", "xml") })
	assert.NotPanics(t, func() { logger.Sync(nil) })
}
