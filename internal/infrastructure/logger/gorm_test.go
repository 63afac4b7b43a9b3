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
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	stmt := func() (string, int64) { return "SELECT * FROM produccion_inventory", 3 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"error is logged", gormlogger.Warn, time.Now(), errors.New("boom"), "SQL error"},
		{"record not found is ignored", gormlogger.Warn, time.Now(), gorm.ErrRecordNotFound, ""},
		{"slow query warns", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL"},
		{"fast query hidden at warn", gormlogger.Warn, time.Now(), nil, ""},
		{"fast query shown at info", gormlogger.Info, time.Now(), nil, "SQL"},
		{"silent logs nothing", gormlogger.Silent, time.Now(), errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.level, 200*time.Millisecond)

			ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-7")
			l.Trace(ctx, tt.begin, stmt, tt.err)

			if tt.wantMsg == "" {
				assert.Zero(t, recorded.Len())
				return
			}
			entries := recorded.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantMsg, entries[0].Message)
				assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
			}
		})
	}
}

func TestGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(zap.NewNop(), gormlogger.Warn, 0)
	quiet := l.LogMode(gormlogger.Silent).(*GormLogger)
	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Warn, l.level)
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
}
