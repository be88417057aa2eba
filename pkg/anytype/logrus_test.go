package anytype_test

import (
	"testing"

	"github.com/fivetwenty-io/anytype-client/pkg/anytype"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrusLogger(t *testing.T) {
	t.Parallel()

	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)

	var logger anytype.Logger = anytype.NewLogrusLogger(base).WithField("component", "client")

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
	logger.Warn("retrying request", map[string]interface{}{"attempt": 1})
	logger.Error("giving up", nil)

	entries := hook.AllEntries()
	require.Len(t, entries, 3)

	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "HTTP Request", entries[0].Message)
	assert.Equal(t, "GET", entries[0].Data["method"])
	assert.Equal(t, "client", entries[0].Data["component"])

	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, 1, entries[1].Data["attempt"])

	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestLogrusLogger_RespectsLevel(t *testing.T) {
	t.Parallel()

	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)

	logger := anytype.NewLogrusLogger(base)
	logger.Debug("hidden", nil)
	logger.Info("shown", nil)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "shown", hook.LastEntry().Message)
}

func TestNoopLogger(t *testing.T) {
	t.Parallel()

	var logger anytype.Logger = anytype.NoopLogger{}

	assert.NotPanics(t, func() {
		logger.Debug("x", nil)
		logger.Info("x", nil)
		logger.Warn("x", nil)
		logger.Error("x", nil)
	})
}
