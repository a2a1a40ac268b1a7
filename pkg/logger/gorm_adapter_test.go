package logger

import (
	"context"
	"testing"
	"time"

	"fulfillment/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func TestGormLoggerAdapter(t *testing.T) {
	testCases := []struct {
		name         string
		logLevel     logger.LogLevel
		expectInfo   bool
		expectTraced bool
	}{
		{"Warn Level", logger.Warn, false, false},
		{"Info Level", logger.Info, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			restore := Replace(zap.New(core))
			defer restore()

			adapter := NewGormLoggerAdapter(tc.logLevel)
			if adapter.LogMode(logger.Info) == nil {
				t.Fatal("LogMode should return a new adapter")
			}

			ctx := context.Background()
			adapter.Info(ctx, "test info message")
			adapter.Warn(ctx, "test warn message")
			adapter.Error(ctx, "test error message")
			adapter.Trace(ctx, time.Now(), func() (string, int64) {
				return "SELECT * FROM orders", 1
			}, nil)

			if got := logs.FilterMessage("test info message").Len() == 1; got != tc.expectInfo {
				t.Errorf("info logged = %v, want %v", got, tc.expectInfo)
			}
			if logs.FilterMessage("test warn message").Len() != 1 {
				t.Error("warn message not found in logs")
			}
			if logs.FilterMessage("test error message").Len() != 1 {
				t.Error("error message not found in logs")
			}
			traced := logs.FilterMessage("SQL query executed")
			if (traced.Len() == 1) != tc.expectTraced {
				t.Errorf("trace logged = %v, want %v", traced.Len() == 1, tc.expectTraced)
			}
			if tc.expectTraced {
				if _, ok := traced.All()[0].ContextMap()["sql"]; !ok {
					t.Error("SQL query not found in trace log fields")
				}
			}
		})
	}
}

func TestGormLoggerAdapterSlowQueryCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	defer restore()

	adapter := NewGormLoggerAdapterWithConfig(logger.Info, &GormLoggerConfig{
		SlowThreshold:             10 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	})

	ctx := persistence.ContextWithRequestID(context.Background(), "test-request-123")

	adapter.Trace(ctx, time.Now().Add(-20*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM products FOR UPDATE", 1
	}, nil)
	adapter.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM orders WHERE id = 'missing'", 0
	}, logger.ErrRecordNotFound)

	slow := logs.FilterMessage("Slow SQL query").All()
	if len(slow) != 1 {
		t.Fatalf("expected one slow query entry, got %d", len(slow))
	}
	if got := slow[0].ContextMap()["request_id"]; got != "test-request-123" {
		t.Errorf("request_id = %v, want test-request-123", got)
	}
	if logs.FilterMessage("Database operation failed").Len() != 0 {
		t.Error("record not found should be ignored")
	}
}

func TestParseGormLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"debug":  logger.Info,
		"info":   logger.Info,
		"warn":   logger.Warn,
		"error":  logger.Error,
		"silent": logger.Silent,
		"":       logger.Warn,
	}
	for in, want := range cases {
		if got := ParseGormLevel(in); got != want {
			t.Errorf("ParseGormLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
