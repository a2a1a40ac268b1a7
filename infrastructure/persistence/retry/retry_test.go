package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fulfillment/domain/order"
	"fulfillment/domain/shared"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func fastConfig() Config {
	c := DefaultConfig
	c.InitialDelay = time.Millisecond
	c.MaxDelay = time.Millisecond
	return c
}

func TestIsRetryableError(t *testing.T) {
	cfg := fastConfig()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"stale order version", order.NewConcurrentModificationError("o-1"), true},
		{"deadlock", &mysqlDriver.MySQLError{Number: 1213, Message: "Deadlock found"}, true},
		{"lock timeout", fmt.Errorf("save: %w", &mysqlDriver.MySQLError{Number: 1205}), true},
		{"duplicate key", gorm.ErrDuplicatedKey, false},
		{"validation", shared.NewValidationError("order", "items", "empty"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err, cfg); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExecuteWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := ExecuteWithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 2 {
			return order.NewConcurrentModificationError("o-1")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}

func TestExecuteWithRetryGivesUp(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := ExecuteWithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("err=%v calls=%d", err, calls)
	}

	calls = 0
	err = ExecuteWithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return order.NewConcurrentModificationError("o-1")
	})
	if !errors.Is(err, shared.ErrConcurrentModification) || calls != DefaultConfig.MaxAttempts {
		t.Errorf("err=%v calls=%d", err, calls)
	}
}
