package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func selectQuery() (string, int64) {
	return "SELECT * FROM orders WHERE id = $1", 1
}

func TestNewGormLogger(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, defaultSlowQueryThreshold, l.slowThreshold)
	assert.True(t, l.skipNotFound)
}

func TestGormLogger_Options(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Warn,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, time.Second, l.slowThreshold)
	assert.False(t, l.skipNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info)

	clone, ok := l.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Silent, clone.level)
	// The receiver keeps its level.
	assert.Equal(t, gormlogger.Info, l.level)
}

func TestGormLogger_LevelGating(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Silent)

	l.Info(context.Background(), "migration %s applied", "001")
	l.Warn(context.Background(), "pool saturated")
	l.Error(context.Background(), "connection lost")
	l.Trace(context.Background(), time.Now(), selectQuery, nil)

	assert.Empty(t, logs.All())
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()

	t.Run("normal query logs at debug", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Info)

		l.Trace(ctx, time.Now(), selectQuery, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "query", entries[0].Message)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "SELECT * FROM orders WHERE id = $1", entries[0].ContextMap()["sql"])
	})

	t.Run("failed query logs the error", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), selectQuery, errors.New("connection reset"))

		entries := logs.FilterMessage("query failed").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	})

	t.Run("record-not-found is dropped by default", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Error)

		l.Trace(ctx, time.Now(), selectQuery, gormlogger.ErrRecordNotFound)

		assert.Empty(t, logs.All())
	})

	t.Run("record-not-found surfaces when configured", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		l.Trace(ctx, time.Now(), selectQuery, gormlogger.ErrRecordNotFound)

		assert.Len(t, logs.All(), 1)
	})

	t.Run("slow query warns", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

		l.Trace(ctx, time.Now().Add(-time.Second), selectQuery, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Contains(t, entries[0].Message, "slow query")
	})

	t.Run("carries the request id from the context", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Info)
		ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")

		l.Trace(ctx, time.Now(), selectQuery, nil)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"trace", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
