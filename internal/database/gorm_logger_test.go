package database

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func bufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestSlogLogger_ReportsFailuresOnly(t *testing.T) {
	log, buf := bufferLogger(slog.LevelInfo)
	l := newSlogLogger(log)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sqlFn, nil)
	l.Trace(ctx, time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sqlFn, errors.New("connection reset"))
	assert.Contains(t, buf.String(), `"msg":"query failed"`)
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)
	assert.Contains(t, buf.String(), `"error":"connection reset"`)
}

func TestSlogLogger_SlowQuery(t *testing.T) {
	log, buf := bufferLogger(slog.LevelInfo)
	l := newSlogLogger(log)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), `"msg":"slow query"`)
}

func TestSlogLogger_DebugLogsEveryQuery(t *testing.T) {
	log, buf := bufferLogger(slog.LevelDebug)
	l := newSlogLogger(log)

	l.Trace(context.Background(), time.Now(), sqlFn, nil)
	assert.Contains(t, buf.String(), `"msg":"query"`)
}

func TestConfig_UsesServiceLogger(t *testing.T) {
	log, _ := bufferLogger(slog.LevelInfo)
	cfg := Config(log)

	assert.True(t, cfg.TranslateError)
	assert.IsType(t, &slogLogger{}, cfg.Logger)
}
