package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestGormLogger_TraceError(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	l := NewGormLogger(log, gormlogger.Warn, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "UPDATE products SET stock = stock - 1", 0
	}, errors.New("database is locked"))

	entries := logs.FilterMessage("database operation failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "UPDATE products SET stock = stock - 1", entries[0].ContextMap()["sql"])
	}
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	l := NewGormLogger(log, gormlogger.Info, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM orders", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestGormLogger_SlowQuery(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	l := NewGormLogger(log, gormlogger.Warn, time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM products", 3
	}, nil)

	entries := logs.FilterMessage("slow SQL query").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.EqualValues(t, 3, entries[0].ContextMap()["rows"])
	}
}

func TestGormLogger_SilentAndLogMode(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)
	l := NewGormLogger(log, gormlogger.Silent, 0)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Zero(t, logs.Len())

	verbose := l.LogMode(gormlogger.Info)
	verbose.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 1, logs.FilterMessage("SQL query executed").Len())

	verbose.Info(context.Background(), "migrated %d tables", 6)
	assert.Equal(t, 1, logs.FilterMessage("migrated 6 tables").Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}
