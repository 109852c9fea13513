package logging

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("INFO"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("nonsense"))
}

func TestTeeWriter_Write(t *testing.T) {
	sb1 := &strings.Builder{}
	sb1.WriteString("already-here")
	sb2 := &strings.Builder{}

	tw := NewTeeWriter(sb1, sb2)
	require.NotNil(t, tw)

	n, err := tw.Write([]byte("a message"))
	require.NoError(t, err)
	assert.Equal(t, 2*len("a message"), n)

	assert.Equal(t, "already-herea message", sb1.String())
	assert.Equal(t, "a message", sb2.String())
}

func TestTeeWriter_Write_WithError(t *testing.T) {
	sb := &strings.Builder{}
	tw := NewTeeWriter(&faultyWriter{}, sb, &faultyWriter{})

	n, err := tw.Write([]byte("a message"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, len("a message"), n)
	assert.Equal(t, "a message", sb.String())
}

type faultyWriter struct{}

func (fw *faultyWriter) Write(_ []byte) (n int, err error) {
	return 0, errors.New("disk full")
}

func TestSentryHook_Fire(t *testing.T) {
	var captured []*sentry.Event
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.capture = func(event *sentry.Event) *sentry.EventID {
		captured = append(captured, event)
		return nil
	}
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	entry := &logrus.Entry{
		Message: "get activity details",
		Level:   logrus.ErrorLevel,
		Time:    time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC),
		Data: logrus.Fields{
			"activity": 42,
			"error":    errors.New("connection refused"),
		},
	}
	require.NoError(t, hook.Fire(entry))

	require.Len(t, captured, 1)
	assert.Equal(t, "get activity details", captured[0].Message)
	assert.Equal(t, sentry.LevelError, captured[0].Level)
	assert.Equal(t, 42, captured[0].Extra["activity"])
	assert.Equal(t, "connection refused", captured[0].Extra["error"])
}
